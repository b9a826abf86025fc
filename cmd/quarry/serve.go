package main

import (
	"os/signal"
	"syscall"

	"github.com/hupe1980/quarry/metric"
	"github.com/hupe1980/quarry/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		data string
		addr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve queries over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()
			a, err := openApp(ctx, configPath, appOptions{
				data:    data,
				metrics: metric.NewPrometheusCollector(reg),
			})
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			srv := server.New(a.db,
				server.WithAddr(addr),
				server.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
			)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "NDJSON dataset to load (overrides the data setting)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
