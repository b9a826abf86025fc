package executor

import "github.com/hupe1980/quarry/resource"

// Observer is notified when executions acquire and release cursors.
type Observer interface {
	CursorOpened(typ string)
	CursorClosed(typ string)
}

// Option configures an Executor.
type Option func(*Executor)

// WithController admits executions through rc.
func WithController(rc *resource.Controller) Option {
	return func(e *Executor) {
		e.rc = rc
	}
}

// WithObserver registers o for cursor notifications.
func WithObserver(o Observer) Option {
	return func(e *Executor) {
		if o != nil {
			e.observer = o
		}
	}
}

// RunOption configures a single execution.
type RunOption func(*runOptions)

type runOptions struct {
	offset     int
	maxResults int
}

// WithOffset skips the first n matches. Skipped matches are not extracted.
func WithOffset(n int) RunOption {
	return func(o *runOptions) {
		o.offset = max(n, 0)
	}
}

// WithMaxResults caps the number of tuples produced. n <= 0 means unlimited.
func WithMaxResults(n int) RunOption {
	return func(o *runOptions) {
		o.maxResults = n
	}
}

func applyRunOptions(opts []RunOption) runOptions {
	var o runOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

type noopObserver struct{}

func (noopObserver) CursorOpened(string) {}
func (noopObserver) CursorClosed(string) {}
