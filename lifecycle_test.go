package quarry_test

import (
	"bytes"
	"context"
	"log/slog"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/hupe1980/quarry"
	"github.com/hupe1980/quarry/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNoGoroutineLeaks verifies that abandoned streams and closed iterators do
// not leave goroutines behind.
func TestNoGoroutineLeaks(t *testing.T) {
	ctx := context.Background()
	db := newFooDB(t, testutil.NewRNG(5).Foos(100))
	q := mustQuery(t, db, "SELECT bar,baz FROM Foo")

	runtime.GC()
	before := runtime.NumGoroutine()

	for range 50 {
		for range q.Stream(ctx) {
			break
		}
		it, err := q.Iterator(ctx)
		require.NoError(t, err)
		require.NoError(t, it.Close())
	}

	time.Sleep(20 * time.Millisecond)
	runtime.GC()
	assert.LessOrEqual(t, runtime.NumGoroutine(), before+2)
	assert.Zero(t, db.OpenCursors())
}

// TestConcurrentQueriesAndWrites runs readers against a writer; every query
// must complete and release its cursor.
func TestConcurrentQueriesAndWrites(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(9)
	db := newFooDB(t, rng.Foos(200))
	q := mustQuery(t, db, "SELECT baz FROM Foo WHERE bar:ba*")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				tuples, err := q.List(ctx)
				assert.NoError(t, err)
				for _, tup := range tuples {
					assert.Equal(t, 1, tup.Len())
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i, foo := range rng.Foos(200) {
			assert.NoError(t, db.Put(ctx, testutil.FooType, string(rune('a'+i%26)), foo))
		}
	}()

	wg.Wait()
	assert.Zero(t, db.OpenCursors())
}

// TestCloseReportsLeakedCursors verifies Close logs cursors that were never released.
func TestCloseReportsLeakedCursors(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	logger := quarry.NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	db, err := quarry.New(quarry.WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, testutil.RegisterFoo(db.Catalog()))
	require.NoError(t, db.Put(ctx, testutil.FooType, "1", testutil.Foo{Bar: "bar1", Baz: "baz1"}))

	it, err := mustQuery(t, db, "SELECT bar FROM Foo").Iterator(ctx)
	require.NoError(t, err)

	require.NoError(t, db.Close())
	assert.Contains(t, buf.String(), "closing with open cursors")
	assert.Contains(t, buf.String(), "open_cursors=1")

	// The leaked iterator still works and can be released after Close.
	assert.True(t, it.HasNext())
	require.NoError(t, it.Close())
	assert.Zero(t, db.OpenCursors())
}

// TestQueryLogging verifies every invocation is tagged with a query id.
func TestQueryLogging(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	logger := quarry.NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	db := newFooDB(t, []testutil.Foo{{Bar: "bar1", Baz: "baz1"}}, quarry.WithLogger(logger))

	_, err := mustQuery(t, db, "SELECT bar FROM Foo").List(ctx)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"query completed"`)
	assert.Contains(t, out, `"query_id":`)
	assert.Contains(t, out, `"mode":"list"`)
	assert.Contains(t, out, `"tuples":1`)
}
