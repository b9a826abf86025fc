package inverted

import (
	"context"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/quarry/index"
)

// cursor walks a private result bitmap. Records are re-read on every advance so
// entities deleted after Match are skipped.
type cursor struct {
	ix     *Index
	ti     *typeIndex
	typ    string
	it     roaring.IntPeekable
	closed atomic.Bool
}

func (c *cursor) Next(ctx context.Context) (index.Handle, bool, error) {
	if c.closed.Load() {
		return index.Handle{}, false, index.ErrCursorClosed
	}
	if err := ctx.Err(); err != nil {
		return index.Handle{}, false, err
	}

	for c.it.HasNext() {
		id := c.it.Next()

		c.ix.mu.RLock()
		rec := c.ti.records[id]
		c.ix.mu.RUnlock()

		if rec == nil {
			continue
		}
		return index.Handle{ID: id, Type: c.typ, Key: rec.key, Entity: rec.entity}, true, nil
	}
	return index.Handle{}, false, nil
}

func (c *cursor) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		c.ix.open.Add(-1)
	}
	return nil
}
