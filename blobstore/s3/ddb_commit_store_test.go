package s3

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/hupe1980/quarry/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDDBCommitStore(ddb *mockDDBClient, baseURI string) *DDBCommitStore {
	return NewDDBCommitStore(blobstore.NewMemoryStore(), ddb, "quarry-commits", baseURI)
}

func TestDDBCommitStore_FirstCommit(t *testing.T) {
	ctx := context.Background()
	store := newTestDDBCommitStore(newMockDDBClient(), "s3://test-bucket/test/")

	require.NoError(t, store.Put(ctx, CurrentName, []byte("nightly")))

	data, err := blobstore.Get(ctx, store, CurrentName)
	require.NoError(t, err)
	assert.Equal(t, "nightly", string(data))

	v, err := store.Version(ctx, CurrentName)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)
}

func TestDDBCommitStore_MultipleCommits(t *testing.T) {
	ctx := context.Background()
	store := newTestDDBCommitStore(newMockDDBClient(), "s3://test-bucket/test/")

	for i := 1; i <= 11; i++ {
		require.NoError(t, store.Put(ctx, CurrentName, []byte(fmt.Sprintf("snap-%02d", i))))
	}

	data, err := blobstore.Get(ctx, store, CurrentName)
	require.NoError(t, err)
	assert.Equal(t, "snap-11", string(data))
}

func TestDDBCommitStore_ConcurrentCommits(t *testing.T) {
	ctx := context.Background()
	store := newTestDDBCommitStore(newMockDDBClient(), "s3://test-bucket/test/")

	require.NoError(t, store.Put(ctx, CurrentName, []byte("snap-1")))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			err := store.Put(ctx, CurrentName, []byte(fmt.Sprintf("snap-%d", id+2)))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrConcurrentModification):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Greater(t, successes, 0, "at least one writer should succeed")

	v, err := store.Version(ctx, CurrentName)
	require.NoError(t, err)
	assert.Equal(t, uint64(1+successes), v)
}

func TestDDBCommitStore_NotFoundBeforeCommit(t *testing.T) {
	store := newTestDDBCommitStore(newMockDDBClient(), "s3://test-bucket/test/")

	_, err := store.Open(context.Background(), CurrentName)
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestDDBCommitStore_IsolatedNamespaces(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()

	store1 := newTestDDBCommitStore(ddb, "s3://bucket-a/path/")
	store2 := newTestDDBCommitStore(ddb, "s3://bucket-b/path/")

	require.NoError(t, store1.Put(ctx, CurrentName, []byte("A")))
	require.NoError(t, store2.Put(ctx, CurrentName, []byte("B")))

	a, err := blobstore.Get(ctx, store1, CurrentName)
	require.NoError(t, err)
	assert.Equal(t, "A", string(a))

	b, err := blobstore.Get(ctx, store2, CurrentName)
	require.NoError(t, err)
	assert.Equal(t, "B", string(b))
}

func TestDDBCommitStore_PassThrough(t *testing.T) {
	ctx := context.Background()
	store := newTestDDBCommitStore(newMockDDBClient(), "s3://test-bucket/test/")

	require.NoError(t, store.Put(ctx, "nightly/MANIFEST", []byte("{}")))

	names, err := store.List(ctx, "nightly/")
	require.NoError(t, err)
	assert.Equal(t, []string{"nightly/MANIFEST"}, names)

	require.NoError(t, store.Delete(ctx, "nightly/MANIFEST"))
	_, err = store.Open(ctx, "nightly/MANIFEST")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
