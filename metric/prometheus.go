package metric

import (
	"time"

	"github.com/hupe1980/quarry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "quarry"

// PrometheusCollector implements quarry.MetricsCollector on Prometheus vectors.
type PrometheusCollector struct {
	compileTotal    *prometheus.CounterVec
	compileDuration prometheus.Histogram
	queryTotal      *prometheus.CounterVec
	queryDuration   *prometheus.HistogramVec
	tuplesTotal     *prometheus.CounterVec
	putTotal        *prometheus.CounterVec
	putDuration     prometheus.Histogram
	deleteTotal     *prometheus.CounterVec
	openCursors     *prometheus.GaugeVec
	cursorsTotal    *prometheus.CounterVec
}

var _ quarry.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheusCollector creates the collector and registers its metrics with
// reg. A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &PrometheusCollector{
		compileTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "compile_total",
			Help:      "Total number of query compilations",
		}, []string{"status"}),
		compileDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "compile_duration_seconds",
			Help:      "Query compilation latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		queryTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "queries_total",
			Help:      "Total number of query invocations",
		}, []string{"mode", "status"}),
		queryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "query_duration_seconds",
			Help:      "Query latency in seconds, from compile to release",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
		tuplesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "tuples_total",
			Help:      "Total number of tuples handed out",
		}, []string{"mode"}),
		putTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "puts_total",
			Help:      "Total number of index puts",
		}, []string{"status"}),
		putDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "put_duration_seconds",
			Help:      "Index put latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		deleteTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "deletes_total",
			Help:      "Total number of index deletes",
		}, []string{"found"}),
		openCursors: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "open_cursors",
			Help:      "Number of cursors currently open",
		}, []string{"type"}),
		cursorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cursors_opened_total",
			Help:      "Total number of cursors opened",
		}, []string{"type"}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordCompile implements quarry.MetricsCollector.
func (p *PrometheusCollector) RecordCompile(d time.Duration, err error) {
	p.compileTotal.WithLabelValues(status(err)).Inc()
	p.compileDuration.Observe(d.Seconds())
}

// RecordQuery implements quarry.MetricsCollector.
func (p *PrometheusCollector) RecordQuery(mode string, tuples int, d time.Duration, err error) {
	p.queryTotal.WithLabelValues(mode, status(err)).Inc()
	p.queryDuration.WithLabelValues(mode).Observe(d.Seconds())
	p.tuplesTotal.WithLabelValues(mode).Add(float64(tuples))
}

// RecordPut implements quarry.MetricsCollector.
func (p *PrometheusCollector) RecordPut(d time.Duration, err error) {
	p.putTotal.WithLabelValues(status(err)).Inc()
	p.putDuration.Observe(d.Seconds())
}

// RecordDelete implements quarry.MetricsCollector.
func (p *PrometheusCollector) RecordDelete(_ time.Duration, found bool) {
	label := "false"
	if found {
		label = "true"
	}
	p.deleteTotal.WithLabelValues(label).Inc()
}

// RecordCursorOpen implements quarry.MetricsCollector.
func (p *PrometheusCollector) RecordCursorOpen(typ string) {
	p.openCursors.WithLabelValues(typ).Inc()
	p.cursorsTotal.WithLabelValues(typ).Inc()
}

// RecordCursorClose implements quarry.MetricsCollector.
func (p *PrometheusCollector) RecordCursorClose(typ string) {
	p.openCursors.WithLabelValues(typ).Dec()
}
