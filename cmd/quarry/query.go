package main

import (
	"context"
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"
	"github.com/hupe1980/quarry"
	"github.com/spf13/cobra"
)

type queryFlags struct {
	data       string
	mode       string
	offset     int
	maxResults int
	explain    bool
}

func newQueryCmd() *cobra.Command {
	var f queryFlags

	cmd := &cobra.Command{
		Use:   "query [flags] <SELECT ...>",
		Short: "Run a query and print the tuples as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx, configPath, appOptions{data: f.data})
			if err != nil {
				return err
			}
			defer a.Close()

			return runQuery(ctx, a.db, cmd.OutOrStdout(), args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.data, "data", "d", "", "NDJSON dataset to load (overrides the data setting)")
	cmd.Flags().StringVarP(&f.mode, "mode", "m", quarry.ModeList, "execution mode: list or iterator")
	cmd.Flags().IntVar(&f.offset, "offset", 0, "skip the first n matches")
	cmd.Flags().IntVar(&f.maxResults, "max-results", 0, "stop after n tuples (0 means all)")
	cmd.Flags().BoolVar(&f.explain, "explain", false, "print the plan instead of running it")
	return cmd
}

func runQuery(ctx context.Context, db *quarry.DB, w io.Writer, text string, f queryFlags) error {
	q, err := db.Query(text)
	if err != nil {
		return err
	}
	if f.explain {
		_, err := fmt.Fprint(w, q.Plan().Explain())
		return err
	}

	enc := gojson.NewEncoder(w)
	opts := []quarry.RunOption{quarry.WithOffset(f.offset), quarry.WithMaxResults(f.maxResults)}

	switch f.mode {
	case quarry.ModeList:
		tuples, err := q.List(ctx, opts...)
		if err != nil {
			return err
		}
		for _, t := range tuples {
			if err := enc.Encode(t); err != nil {
				return err
			}
		}
		return nil
	case quarry.ModeIterator:
		it, err := q.Iterator(ctx, opts...)
		if err != nil {
			return err
		}
		defer it.Close()

		for it.HasNext() {
			t, err := it.Next()
			if err != nil {
				return err
			}
			if err := enc.Encode(t); err != nil {
				return err
			}
		}
		return it.Err()
	default:
		return fmt.Errorf("unknown mode %q (want list or iterator)", f.mode)
	}
}
