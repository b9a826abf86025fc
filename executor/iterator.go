package executor

import (
	"context"

	"github.com/hupe1980/quarry/catalog"
	"github.com/hupe1980/quarry/index"
	"github.com/hupe1980/quarry/projection"
)

// Iterator is a lazy, single-pass, forward-only sequence of tuples.
// It is not safe for concurrent use.
type Iterator struct {
	ctx    context.Context
	cur    index.Cursor
	typ    string
	fields []catalog.FieldDescriptor
	exec   *Executor

	skip      int
	remaining int // -1 means unlimited

	next    projection.Tuple
	fetched bool
	err     error

	released bool
	closed   bool
}

// HasNext reports whether Next will return a tuple. It returns false once the
// sequence is exhausted, after Close, and after a failure; Err distinguishes
// the last case.
func (it *Iterator) HasNext() bool {
	if it.closed {
		return false
	}
	if !it.fetched {
		it.fetch()
	}
	return it.next != nil
}

// Next returns the next tuple. It returns the pending failure if the sequence
// failed and ErrNoSuchElement once it is exhausted or closed.
func (it *Iterator) Next() (projection.Tuple, error) {
	if !it.HasNext() {
		if it.err != nil && !it.closed {
			return nil, it.err
		}
		return nil, ErrNoSuchElement
	}
	t := it.next
	it.next, it.fetched = nil, false
	return t, nil
}

// Err returns the failure that ended the sequence, if any.
func (it *Iterator) Err() error {
	return it.err
}

// Close releases the underlying cursor. Calling Close more than once is a no-op.
// Tuples already returned stay valid.
func (it *Iterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	it.next = nil
	return it.release()
}

func (it *Iterator) fetch() {
	it.fetched = true
	if it.released {
		return
	}

	for {
		if it.remaining == 0 {
			it.fail(nil)
			return
		}
		if err := it.ctx.Err(); err != nil {
			it.fail(err)
			return
		}

		h, ok, err := it.cur.Next(it.ctx)
		if err != nil || !ok {
			it.fail(err)
			return
		}
		if it.skip > 0 {
			it.skip--
			continue
		}

		t, err := projection.Extract(h.Entity, projection.EntityRef{Type: h.Type, Key: h.Key}, it.fields)
		if err != nil {
			it.fail(err)
			return
		}
		if it.remaining > 0 {
			it.remaining--
		}
		it.next = t
		return
	}
}

// fail ends the sequence, recording err if non-nil, and releases the cursor.
func (it *Iterator) fail(err error) {
	if err != nil {
		it.err = err
	}
	if rerr := it.release(); rerr != nil && it.err == nil {
		it.err = rerr
	}
}

func (it *Iterator) release() error {
	if it.released {
		return nil
	}
	it.released = true
	return it.exec.release(it.typ, it.cur)
}
