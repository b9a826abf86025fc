package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hupe1980/quarry/blobstore"
	"github.com/hupe1980/quarry/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSets() []Set {
	var foos []Record
	for i := 0; i < 50; i++ {
		foos = append(foos, Record{
			Key:     fmt.Sprintf("%d", i),
			Payload: []byte(fmt.Sprintf(`{"bar":"bar%d","baz":%d}`, i%3, i)),
		})
	}
	return []Set{
		{Type: "Foo", Codec: "go-json", Records: foos},
		{Type: "Bar", Records: []Record{{Key: "a", Payload: []byte(strings.Repeat("x", 4096))}}},
		{Type: "Empty"},
	}
}

func TestWriteRead(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			ctx := context.Background()
			store := blobstore.NewMemoryStore()
			now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

			m, err := Write(ctx, store, "nightly", testSets(), Options{
				Compression: c,
				Controller:  resource.NewController(resource.Config{MaxBackgroundWorkers: 2}),
				Now:         func() time.Time { return now },
			})
			require.NoError(t, err)
			assert.Equal(t, "nightly", m.Name)
			assert.Equal(t, now, m.CreatedAt)
			assert.Equal(t, c.String(), m.Compression)
			assert.Equal(t, 51, m.Records())
			require.Len(t, m.Segments, 3)
			assert.Equal(t, []string{"Bar", "Empty", "Foo"}, []string{m.Segments[0].Type, m.Segments[1].Type, m.Segments[2].Type})
			assert.Equal(t, "go-json", m.Segments[2].Codec)

			got, sets, err := ReadCurrent(ctx, store)
			require.NoError(t, err)
			assert.Equal(t, m.ID, got.ID)

			byType := map[string]Set{}
			for _, s := range sets {
				byType[s.Type] = s
			}
			for _, want := range testSets() {
				s, ok := byType[want.Type]
				require.True(t, ok, want.Type)
				assert.Equal(t, want.Codec, s.Codec)
				require.Len(t, s.Records, len(want.Records))
				for i := range want.Records {
					assert.Equal(t, want.Records[i].Key, s.Records[i].Key)
					assert.True(t, bytes.Equal(want.Records[i].Payload, s.Records[i].Payload))
				}
			}
		})
	}
}

func TestCompressionShrinksRepetitiveData(t *testing.T) {
	data := bytes.Repeat([]byte("quarry "), 1000)

	for _, c := range []Compression{CompressionLZ4, CompressionZSTD} {
		block, err := compressBlock(data, c)
		require.NoError(t, err)
		assert.Less(t, len(block), len(data)/2, c.String())

		out, err := decompressBlock(block, c)
		require.NoError(t, err)
		assert.Equal(t, data, out)
	}
}

func TestIncompressibleStoredRaw(t *testing.T) {
	data := []byte("abc")

	block, err := compressBlock(data, CompressionZSTD)
	require.NoError(t, err)
	assert.Len(t, block, blockHeaderSize+len(data))

	out, err := decompressBlock(block, CompressionZSTD)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestParseCompression(t *testing.T) {
	for in, want := range map[string]Compression{"": CompressionNone, "none": CompressionNone, "LZ4": CompressionLZ4, "zstd": CompressionZSTD} {
		got, err := ParseCompression(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseCompression("gzip")
	assert.Error(t, err)
}

func TestCurrentMissing(t *testing.T) {
	_, _, err := ReadCurrent(context.Background(), blobstore.NewMemoryStore())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestCorruptSegment(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	m, err := Write(ctx, store, "s1", testSets(), Options{})
	require.NoError(t, err)

	seg := m.Segments[2]
	data, err := blobstore.Get(ctx, store, seg.Path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xff
	require.NoError(t, store.Put(ctx, seg.Path, data))

	_, _, err = Read(ctx, store, "s1")
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestTruncatedRecords(t *testing.T) {
	body := encodeRecords([]Record{{Key: "k", Payload: []byte("v")}})

	_, err := decodeRecords(body[:len(body)-1])
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = decodeRecords(append(body, 0))
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestInvalidNames(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	for _, name := range []string{"", "a/b", "..", CurrentFileName} {
		_, err := Write(ctx, store, name, nil, Options{})
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}

	_, err := Write(ctx, store, "dup", []Set{{Type: "Foo"}, {Type: "Foo"}}, Options{})
	assert.Error(t, err)
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	_, err := Write(ctx, store, "a", testSets(), Options{})
	require.NoError(t, err)
	_, err = Write(ctx, store, "b", testSets(), Options{})
	require.NoError(t, err)

	names, err := List(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	name, err := Current(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "b", name)

	require.NoError(t, Delete(ctx, store, "a"))
	names, err = List(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names)

	left, err := store.List(ctx, "a/")
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestWriteCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Write(ctx, blobstore.NewLocalStore(t.TempDir()), "s", testSets(), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
