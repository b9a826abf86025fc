// Package metric exports quarry operations as Prometheus metrics.
//
//	reg := prometheus.NewRegistry()
//	db, _ := quarry.New(quarry.WithMetricsCollector(metric.NewPrometheusCollector(reg)))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package metric
