package quarry

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/quarry/executor"
	"github.com/hupe1980/quarry/projection"
	"github.com/hupe1980/quarry/query"
)

// Execution modes as reported to loggers and metrics collectors.
const (
	ModeList     = "list"
	ModeIterator = "iterator"
	ModeStream   = "stream"
)

// RunOption configures a single query execution.
type RunOption = executor.RunOption

// WithOffset skips the first n matches.
func WithOffset(n int) RunOption { return executor.WithOffset(n) }

// WithMaxResults caps the number of tuples produced. n <= 0 means unlimited.
func WithMaxResults(n int) RunOption { return executor.WithMaxResults(n) }

// Tuple is one projected result row.
type Tuple = projection.Tuple

// Query is compiled query text bound to a DB. It is immutable and may be run
// any number of times, concurrently.
type Query struct {
	db   *DB
	text string
	plan *query.Plan
}

// Query compiles text. Compile failures are returned as *CompileError.
func (db *DB) Query(text string) (*Query, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}

	plan, err := db.compile(context.Background(), text)
	if err != nil {
		return nil, err
	}
	return &Query{db: db, text: text, plan: plan}, nil
}

func (db *DB) compile(ctx context.Context, text string) (*query.Plan, error) {
	start := time.Now()
	plan, err := db.compiler.Compile(text)
	db.metrics.RecordCompile(time.Since(start), err)
	db.logger.LogCompile(ctx, text, err)
	if err != nil {
		return nil, translateCompileError(text, err)
	}
	return plan, nil
}

// Text returns the query text.
func (q *Query) Text() string { return q.text }

// Plan returns the plan compiled when the query was created.
func (q *Query) Plan() *query.Plan { return q.plan }

// Fields returns the projected field names in projection order.
func (q *Query) Fields() []string { return q.plan.FieldNames() }

// run is the per-invocation state shared by the three modes.
type run struct {
	db     *DB
	ctx    context.Context
	logger *Logger
	mode   string
	start  time.Time
}

func (q *Query) begin(ctx context.Context, mode string) (*run, *query.Plan, error) {
	if q.db.closed.Load() {
		return nil, nil, ErrClosed
	}

	r := &run{
		db:     q.db,
		ctx:    ctx,
		logger: q.db.logger.WithQueryID(uuid.NewString()),
		mode:   mode,
		start:  time.Now(),
	}

	// Every invocation compiles its own plan.
	plan, err := q.db.compile(ctx, q.text)
	if err != nil {
		r.finish(0, err)
		return nil, nil, err
	}
	return r, plan, nil
}

func (r *run) finish(tuples int, err error) {
	d := time.Since(r.start)
	r.db.metrics.RecordQuery(r.mode, tuples, d, err)
	r.logger.LogQuery(r.ctx, r.mode, tuples, d, err)
}

// List runs the query and returns every tuple in match order. On failure no
// tuples are returned. The result is never nil on success.
func (q *Query) List(ctx context.Context, opts ...RunOption) ([]Tuple, error) {
	r, plan, err := q.begin(ctx, ModeList)
	if err != nil {
		return nil, err
	}

	tuples, err := q.db.exec.List(ctx, plan, opts...)
	r.finish(len(tuples), err)
	return tuples, err
}

// Iterator runs the query lazily. The caller must Close the iterator unless it
// is drained.
func (q *Query) Iterator(ctx context.Context, opts ...RunOption) (*Iterator, error) {
	r, plan, err := q.begin(ctx, ModeIterator)
	if err != nil {
		return nil, err
	}

	it, err := q.db.exec.Iterator(ctx, plan, opts...)
	if err != nil {
		r.finish(0, err)
		return nil, err
	}
	return &Iterator{it: it, run: r}, nil
}

// Stream runs the query as a range-over-func sequence. A failure is yielded
// once as the final element; breaking out of the loop releases the cursor.
func (q *Query) Stream(ctx context.Context, opts ...RunOption) iter.Seq2[Tuple, error] {
	return func(yield func(Tuple, error) bool) {
		r, plan, err := q.begin(ctx, ModeStream)
		if err != nil {
			yield(nil, err)
			return
		}

		var (
			n       int
			lastErr error
		)
		defer func() { r.finish(n, lastErr) }()

		for t, err := range q.db.exec.Stream(ctx, plan, opts...) {
			if err != nil {
				lastErr = err
				yield(nil, err)
				return
			}
			n++
			if !yield(t, nil) {
				return
			}
		}
	}
}

// Iterator is a lazy, forward-only sequence of tuples.
// It is not safe for concurrent use.
type Iterator struct {
	it   *executor.Iterator
	run  *run
	n    int
	done bool
}

// HasNext reports whether Next will return a tuple.
func (it *Iterator) HasNext() bool {
	ok := it.it.HasNext()
	if !ok {
		it.end(it.it.Err())
	}
	return ok
}

// Next returns the next tuple, the failure that ended the sequence, or
// ErrNoSuchElement once the sequence is exhausted or closed.
func (it *Iterator) Next() (Tuple, error) {
	t, err := it.it.Next()
	if err != nil {
		if errors.Is(err, ErrNoSuchElement) {
			it.end(nil)
		} else {
			it.end(err)
		}
		return nil, err
	}
	it.n++
	return t, nil
}

// Err returns the failure that ended the sequence, if any.
func (it *Iterator) Err() error {
	return it.it.Err()
}

// Close releases the cursor. Calling Close more than once is a no-op.
func (it *Iterator) Close() error {
	err := it.it.Close()
	it.end(nil)
	return err
}

func (it *Iterator) end(err error) {
	if it.done {
		return
	}
	it.done = true
	it.run.finish(it.n, err)
}
