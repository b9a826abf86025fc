// Package resource admits queries and bounds the resources they hold.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MaxOpenCursors bounds the number of cursors held at once, by List calls and
	// by unreleased iterators together.
	// If 0, cursors are only counted.
	MaxOpenCursors int64

	// QueriesPerSecond limits how fast query executions are admitted.
	// If 0, unlimited.
	QueriesPerSecond float64

	// QueryBurst is the burst size of the query limiter. If 0, defaults to 1.
	QueryBurst int

	// MaxBackgroundWorkers is the maximum number of concurrent snapshot segment jobs.
	// If 0, defaults to 1.
	MaxBackgroundWorkers int64

	// IOLimitBytesPerSec is the maximum IO throughput of snapshot segments, dataset
	// loads and streamed query responses.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages shared resources (cursors, admission, background work, IO).
//
// A nil *Controller admits everything.
type Controller struct {
	cfg Config

	// Cursors
	cursorSem  *semaphore.Weighted // nil if unlimited
	cursorsOut atomic.Int64

	// Admission
	queryLimiter *rate.Limiter

	// Concurrency
	bgSem *semaphore.Weighted

	// IO
	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxBackgroundWorkers <= 0 {
		cfg.MaxBackgroundWorkers = 1
	}
	if cfg.QueryBurst <= 0 {
		cfg.QueryBurst = 1
	}

	c := &Controller{
		cfg:   cfg,
		bgSem: semaphore.NewWeighted(cfg.MaxBackgroundWorkers),
	}

	if cfg.MaxOpenCursors > 0 {
		c.cursorSem = semaphore.NewWeighted(cfg.MaxOpenCursors)
	}

	if cfg.QueriesPerSecond > 0 {
		c.queryLimiter = rate.NewLimiter(rate.Limit(cfg.QueriesPerSecond), cfg.QueryBurst)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// Config returns the effective configuration.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// WaitQuery blocks until the query limiter admits one execution or ctx is done.
func (c *Controller) WaitQuery(ctx context.Context) error {
	if c == nil || c.queryLimiter == nil {
		return nil
	}
	return c.queryLimiter.Wait(ctx)
}

// AcquireCursor reserves a cursor slot.
// If a limit is configured and all slots are held,
// this blocks until one is released or ctx is canceled.
func (c *Controller) AcquireCursor(ctx context.Context) error {
	if c == nil {
		return nil
	}

	if c.cursorSem != nil {
		if err := c.cursorSem.Acquire(ctx, 1); err != nil {
			return err
		}
	}

	c.cursorsOut.Add(1)
	return nil
}

// TryAcquireCursor attempts to reserve a cursor slot without blocking.
func (c *Controller) TryAcquireCursor() bool {
	if c == nil {
		return true
	}

	if c.cursorSem != nil {
		if !c.cursorSem.TryAcquire(1) {
			return false
		}
	}

	c.cursorsOut.Add(1)
	return true
}

// ReleaseCursor releases a cursor slot.
func (c *Controller) ReleaseCursor() {
	if c == nil {
		return
	}

	if c.cursorSem != nil {
		c.cursorSem.Release(1)
	}
	c.cursorsOut.Add(-1)
}

// OpenCursors returns the number of held cursor slots.
func (c *Controller) OpenCursors() int64 {
	if c == nil {
		return 0
	}
	return c.cursorsOut.Load()
}

// AcquireBackground attempts to reserve a background worker slot.
// Blocks if all slots are busy.
func (c *Controller) AcquireBackground(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.bgSem.Acquire(ctx, 1)
}

// ReleaseBackground releases a background worker slot.
func (c *Controller) ReleaseBackground() {
	if c == nil {
		return
	}
	c.bgSem.Release(1)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
// Requests larger than the burst are split.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
