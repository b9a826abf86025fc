package quarry

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/quarry/executor"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; package metric
// provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordCompile is called after each compilation of query text.
	RecordCompile(duration time.Duration, err error)

	// RecordQuery is called when a query invocation finishes. mode is "list",
	// "iterator" or "stream"; tuples is the number of tuples handed out.
	RecordQuery(mode string, tuples int, duration time.Duration, err error)

	// RecordPut is called after each put.
	RecordPut(duration time.Duration, err error)

	// RecordDelete is called after each delete.
	RecordDelete(duration time.Duration, found bool)

	// RecordCursorOpen is called when a cursor over typ is opened.
	RecordCursorOpen(typ string)

	// RecordCursorClose is called when a cursor over typ is released.
	RecordCursorClose(typ string)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCompile(time.Duration, error)            {}
func (NoopMetricsCollector) RecordQuery(string, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordPut(time.Duration, error)                {}
func (NoopMetricsCollector) RecordDelete(time.Duration, bool)              {}
func (NoopMetricsCollector) RecordCursorOpen(string)                       {}
func (NoopMetricsCollector) RecordCursorClose(string)                      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	CompileCount    atomic.Int64
	CompileErrors   atomic.Int64
	QueryCount      atomic.Int64
	QueryErrors     atomic.Int64
	QueryTotalNanos atomic.Int64
	TuplesReturned  atomic.Int64
	PutCount        atomic.Int64
	PutErrors       atomic.Int64
	DeleteCount     atomic.Int64
	DeleteMisses    atomic.Int64
	CursorsOpened   atomic.Int64
	CursorsClosed   atomic.Int64
}

// RecordCompile implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompile(_ time.Duration, err error) {
	b.CompileCount.Add(1)
	if err != nil {
		b.CompileErrors.Add(1)
	}
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(_ string, tuples int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	b.TuplesReturned.Add(int64(tuples))
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// RecordPut implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPut(_ time.Duration, err error) {
	b.PutCount.Add(1)
	if err != nil {
		b.PutErrors.Add(1)
	}
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(_ time.Duration, found bool) {
	b.DeleteCount.Add(1)
	if !found {
		b.DeleteMisses.Add(1)
	}
}

// RecordCursorOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCursorOpen(string) { b.CursorsOpened.Add(1) }

// RecordCursorClose implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCursorClose(string) { b.CursorsClosed.Add(1) }

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		CompileCount:   b.CompileCount.Load(),
		CompileErrors:  b.CompileErrors.Load(),
		QueryCount:     b.QueryCount.Load(),
		QueryErrors:    b.QueryErrors.Load(),
		QueryAvgNanos:  b.getAvgQueryNanos(),
		TuplesReturned: b.TuplesReturned.Load(),
		PutCount:       b.PutCount.Load(),
		PutErrors:      b.PutErrors.Load(),
		DeleteCount:    b.DeleteCount.Load(),
		DeleteMisses:   b.DeleteMisses.Load(),
		CursorsOpened:  b.CursorsOpened.Load(),
		CursorsClosed:  b.CursorsClosed.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgQueryNanos() int64 {
	count := b.QueryCount.Load()
	if count == 0 {
		return 0
	}
	return b.QueryTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	CompileCount   int64
	CompileErrors  int64
	QueryCount     int64
	QueryErrors    int64
	QueryAvgNanos  int64
	TuplesReturned int64
	PutCount       int64
	PutErrors      int64
	DeleteCount    int64
	DeleteMisses   int64
	CursorsOpened  int64
	CursorsClosed  int64
}

// cursorObserver forwards executor cursor events to a MetricsCollector.
type cursorObserver struct {
	mc MetricsCollector
}

var _ executor.Observer = cursorObserver{}

func (o cursorObserver) CursorOpened(typ string) { o.mc.RecordCursorOpen(typ) }
func (o cursorObserver) CursorClosed(typ string) { o.mc.RecordCursorClose(typ) }
