package main

import (
	"fmt"

	"github.com/hupe1980/quarry"
	"github.com/hupe1980/quarry/snapshot"
	"github.com/spf13/cobra"
)

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save, load, list and delete snapshots",
	}

	var data string
	save := &cobra.Command{
		Use:   "save <name>",
		Short: "Load the dataset and save it as a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx, configPath, appOptions{data: data})
			if err != nil {
				return err
			}
			defer a.Close()

			m, err := a.db.SaveSnapshot(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%s): %d records in %d segments\n",
				m.Name, m.ID, m.Records(), len(m.Segments))
			return nil
		},
	}
	save.Flags().StringVarP(&data, "data", "d", "", "NDJSON dataset to load (overrides the data setting)")

	load := &cobra.Command{
		Use:   "load [name]",
		Short: "Load a snapshot (the current one by default) and report its contents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx, configPath, appOptions{skipLoad: true})
			if err != nil {
				return err
			}
			defer a.Close()

			if len(args) == 1 {
				err = a.db.LoadSnapshot(ctx, args[0])
			} else {
				err = a.db.LoadLatestSnapshot(ctx)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, typ := range a.db.Catalog().Types() {
				fmt.Fprintf(out, "%s\t%d\n", typ, a.db.Len(typ))
			}
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx, configPath, appOptions{skipLoad: true})
			if err != nil {
				return err
			}
			defer a.Close()

			store := a.db.BlobStore()
			if store == nil {
				return quarry.ErrNoBlobStore
			}
			names, err := snapshot.List(ctx, store)
			if err != nil {
				return err
			}
			current, _ := snapshot.Current(ctx, store)
			for _, name := range names {
				marker := " "
				if name == current {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
			}
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a snapshot that is not the current one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx, configPath, appOptions{skipLoad: true})
			if err != nil {
				return err
			}
			defer a.Close()

			store := a.db.BlobStore()
			if store == nil {
				return quarry.ErrNoBlobStore
			}
			if current, _ := snapshot.Current(ctx, store); current == args[0] {
				return fmt.Errorf("snapshot %q is current", args[0])
			}
			if err := snapshot.Delete(ctx, store, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(save, load, list, del)
	return cmd
}
