package executor

import (
	"context"
	"errors"
	"iter"

	"github.com/hupe1980/quarry/index"
	"github.com/hupe1980/quarry/projection"
	"github.com/hupe1980/quarry/query"
	"github.com/hupe1980/quarry/resource"
)

var (
	// ErrNoSuchElement is returned by Iterator.Next when no tuple is left.
	ErrNoSuchElement = errors.New("no such element")

	// ErrNilPlan is returned when executing a nil plan.
	ErrNilPlan = errors.New("nil query plan")
)

// Executor runs plans against a matcher. It is safe for concurrent use; each
// execution is single-threaded.
type Executor struct {
	matcher  index.Matcher
	rc       *resource.Controller
	observer Observer
}

// New creates an executor over m.
func New(m index.Matcher, opts ...Option) *Executor {
	e := &Executor{
		matcher:  m,
		observer: noopObserver{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// List executes plan and returns every tuple. The result is never nil; on error
// no tuples are returned. The underlying cursor is always released.
func (e *Executor) List(ctx context.Context, plan *query.Plan, opts ...RunOption) ([]projection.Tuple, error) {
	it, err := e.Iterator(ctx, plan, opts...)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	tuples := []projection.Tuple{}
	for it.HasNext() {
		t, err := it.Next()
		if err != nil {
			return nil, err
		}
		tuples = append(tuples, t)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return tuples, nil
}

// Iterator executes plan lazily. The caller must Close the iterator unless it
// is drained or fails.
func (e *Executor) Iterator(ctx context.Context, plan *query.Plan, opts ...RunOption) (*Iterator, error) {
	if plan == nil {
		return nil, ErrNilPlan
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o := applyRunOptions(opts)

	if err := e.rc.WaitQuery(ctx); err != nil {
		return nil, err
	}
	if err := e.rc.AcquireCursor(ctx); err != nil {
		return nil, err
	}

	cur, err := e.matcher.Match(ctx, plan.Type(), plan.Predicate())
	if err != nil {
		e.rc.ReleaseCursor()
		return nil, err
	}
	e.observer.CursorOpened(plan.Type())

	remaining := -1
	if o.maxResults > 0 {
		remaining = o.maxResults
	}

	return &Iterator{
		ctx:       ctx,
		cur:       cur,
		typ:       plan.Type(),
		fields:    plan.Fields(),
		skip:      o.offset,
		remaining: remaining,
		exec:      e,
	}, nil
}

// Stream executes plan and yields tuples as they are extracted. A failure is
// yielded once as the final element. Breaking out of the loop releases the cursor.
//
//	for t, err := range exec.Stream(ctx, plan) {
//	    if err != nil {
//	        return err
//	    }
//	    process(t)
//	}
func (e *Executor) Stream(ctx context.Context, plan *query.Plan, opts ...RunOption) iter.Seq2[projection.Tuple, error] {
	return func(yield func(projection.Tuple, error) bool) {
		it, err := e.Iterator(ctx, plan, opts...)
		if err != nil {
			yield(nil, err)
			return
		}
		defer it.Close()

		for it.HasNext() {
			t, err := it.Next()
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(t, nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield(nil, err)
		}
	}
}

func (e *Executor) release(typ string, cur index.Cursor) error {
	err := cur.Close()
	e.rc.ReleaseCursor()
	e.observer.CursorClosed(typ)
	return err
}
