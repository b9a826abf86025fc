package inverted

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/quarry/catalog"
	"github.com/hupe1980/quarry/index"
	"github.com/hupe1980/quarry/predicate"
	"github.com/hupe1980/quarry/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocIndex(t *testing.T) *Index {
	t.Helper()

	cat := catalog.New()
	require.NoError(t, cat.Register("Doc", []catalog.FieldDescriptor{
		catalog.DocumentField("title", value.TypeString),
		catalog.DocumentField("count", value.TypeInt),
		catalog.DocumentField("price", value.TypeFloat),
		catalog.DocumentField("tags", value.TypeArray),
		catalog.DocumentField("secret", value.TypeString).WithStored(false),
	}))
	return New(cat)
}

func keys(t *testing.T, ix *Index, typ, expr string) []string {
	t.Helper()

	var pred index.Predicate
	if expr != "" {
		p, err := ix.ParsePredicate(typ, expr)
		require.NoError(t, err)
		pred = p
	}

	cur, err := ix.Match(context.Background(), typ, pred)
	require.NoError(t, err)
	defer cur.Close()

	out := []string{}
	for {
		h, ok, err := cur.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, h.Key)
	}
}

var docs = []struct {
	key string
	doc value.Document
}{
	{"a", value.Document{
		"title": value.String("The Quick Brown Fox"), "count": value.Int(1), "price": value.Float(1.5),
		"tags": value.Array([]value.Value{value.String("red"), value.String("green")}), "secret": value.String("s1"),
	}},
	{"b", value.Document{
		"title": value.String("Lazy Dog"), "count": value.Int(5), "price": value.Float(10),
		"tags": value.Array([]value.Value{value.String("blue")}), "secret": value.String("s2"),
	}},
	{"c", value.Document{
		"title": value.String("quick"), "count": value.Int(10), "price": value.Null(),
		"tags": value.Array(nil),
	}},
}

func loadDocs(t *testing.T, ix *Index) {
	t.Helper()
	for _, d := range docs {
		require.NoError(t, ix.Put(context.Background(), "Doc", d.key, d.doc))
	}
}

func TestMatch(t *testing.T) {
	ix := newDocIndex(t)
	loadDocs(t, ix)

	tests := []struct {
		expr string
		want []string
	}{
		{"", []string{"a", "b", "c"}},
		{"*", []string{"a", "b", "c"}},
		{"title:quick", []string{"a", "c"}},
		{"title:'Lazy Dog'", []string{"b"}},
		{"title:'dog lazy'", []string{"b"}},
		{"title:'quick cat'", []string{}},
		{"title:qu*", []string{"a", "c"}},
		{"count:5", []string{"b"}},
		{"count:>=5", []string{"b", "c"}},
		{"count:[2 TO 10}", []string{"b"}},
		{"price:10", []string{"b"}},
		{"price:*", []string{"a", "b"}},
		{"price:null", []string{"c"}},
		{"tags:green", []string{"a"}},
		{"tags:red OR tags:blue", []string{"a", "b"}},
		{"-tags:red", []string{"b", "c"}},
		{"title:quick AND NOT count:1", []string{"c"}},
		{"secret:s2", []string{"b"}},
		{"secret:null", []string{"c"}},
		{"count:99", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, keys(t, ix, "Doc", tt.expr))
		})
	}
}

func TestMatchAgreesWithEval(t *testing.T) {
	ix := newDocIndex(t)
	loadDocs(t, ix)

	exprs := []string{
		"title:quick", "title:brown*", "count:<10", "count:{1 TO 10]", "tags:red tags:green",
		"NOT title:fox", "price:[1 TO 2]", "(count:1 OR count:10) -title:fox", "tags:*",
	}
	for _, expr := range exprs {
		t.Run(expr, func(t *testing.T) {
			n := predicate.MustParse(expr)
			want := []string{}
			for _, d := range docs {
				get := func(f string) (value.Value, bool) {
					v, ok := d.doc[f]
					if !ok {
						return value.Null(), true
					}
					return v, true
				}
				if predicate.Eval(n, get) {
					want = append(want, d.key)
				}
			}
			assert.Equal(t, want, keys(t, ix, "Doc", expr))
		})
	}
}

func TestPutReplaceAndDelete(t *testing.T) {
	ctx := context.Background()
	ix := newDocIndex(t)
	loadDocs(t, ix)

	require.NoError(t, ix.Put(ctx, "Doc", "a", value.Document{"title": value.String("Renamed"), "count": value.Int(7)}))
	assert.Equal(t, 3, ix.Len("Doc"))
	assert.Equal(t, []string{"c"}, keys(t, ix, "Doc", "title:quick"))
	assert.Equal(t, []string{"b", "c", "a"}, keys(t, ix, "Doc", ""))

	e, ok := ix.Get("Doc", "a")
	require.True(t, ok)
	assert.Equal(t, "Renamed", e.(value.Document)["title"].StringValue())

	assert.True(t, ix.Delete("Doc", "b"))
	assert.False(t, ix.Delete("Doc", "b"))
	assert.False(t, ix.Delete("Nope", "b"))
	assert.Equal(t, []string{"c", "a"}, keys(t, ix, "Doc", ""))
	assert.Empty(t, keys(t, ix, "Doc", "tags:blue"))

	_, ok = ix.Get("Doc", "b")
	assert.False(t, ok)
}

func TestPutErrors(t *testing.T) {
	ctx := context.Background()
	ix := newDocIndex(t)

	err := ix.Put(ctx, "Doc", "x", value.Document{"count": value.String("many")})
	assert.ErrorIs(t, err, ErrFieldType)

	err = ix.Put(ctx, "Doc", "x", "not a document")
	assert.ErrorIs(t, err, catalog.ErrEntityType)

	err = ix.Put(ctx, "Nope", "x", value.Document{})
	assert.ErrorIs(t, err, catalog.ErrUnknownType)

	assert.Equal(t, 0, ix.Len("Doc"))
}

func TestParsePredicateErrors(t *testing.T) {
	ix := newDocIndex(t)

	_, err := ix.ParsePredicate("Doc", "missing:x")
	assert.ErrorIs(t, err, catalog.ErrUnknownField)

	_, err = ix.ParsePredicate("Nope", "title:x")
	assert.ErrorIs(t, err, catalog.ErrUnknownType)

	_, err = ix.ParsePredicate("Doc", "title:(")
	assert.ErrorIs(t, err, predicate.ErrSyntax)
}

type foreignPredicate struct{}

func (foreignPredicate) String() string { return "foreign" }

func TestCursorLifecycle(t *testing.T) {
	ctx := context.Background()
	ix := newDocIndex(t)
	loadDocs(t, ix)

	cur, err := ix.Match(ctx, "Doc", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ix.OpenCursors())

	h, ok, err := cur.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", h.Key)
	assert.Equal(t, "Doc", h.Type)

	// Deleted after the match started: skipped.
	ix.Delete("Doc", "b")

	h, ok, err = cur.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "c", h.Key)

	_, ok, err = cur.Next(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cur.Close())
	require.NoError(t, cur.Close())
	assert.Equal(t, int64(0), ix.OpenCursors())

	_, _, err = cur.Next(ctx)
	assert.ErrorIs(t, err, index.ErrCursorClosed)

	_, err = ix.Match(ctx, "Doc", foreignPredicate{})
	assert.ErrorIs(t, err, ErrUnsupportedPredicate)
	assert.Equal(t, int64(0), ix.OpenCursors())
}

func TestCursorContext(t *testing.T) {
	ix := newDocIndex(t)
	loadDocs(t, ix)

	ctx, cancel := context.WithCancel(context.Background())
	cur, err := ix.Match(ctx, "Doc", nil)
	require.NoError(t, err)
	defer cur.Close()

	cancel()
	_, _, err = cur.Next(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestScanReplaceStats(t *testing.T) {
	ix := newDocIndex(t)
	loadDocs(t, ix)

	var got []string
	for k, e := range ix.Scan("Doc") {
		got = append(got, k)
		assert.IsType(t, value.Document{}, e)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)

	for range ix.Scan("Nope") {
		t.Fatal("unexpected entity")
	}

	st := ix.Stats()
	assert.Equal(t, 1, st.Types)
	assert.Equal(t, 3, st.Entities)
	assert.Positive(t, st.Terms)

	cur, err := ix.Match(context.Background(), "Doc", nil)
	require.NoError(t, err)
	defer cur.Close()

	require.NoError(t, ix.Replace(context.Background(), []Entry{
		{Type: "Doc", Key: "z", Entity: value.Document{"title": value.String("zebra")}},
	}))
	assert.Equal(t, 1, ix.Len("Doc"))
	assert.Equal(t, []string{"z"}, keys(t, ix, "Doc", ""))

	require.NoError(t, ix.Replace(context.Background(), nil))
	assert.Equal(t, 0, ix.Len("Doc"))
	assert.Empty(t, keys(t, ix, "Doc", ""))

	// Cursors opened before Replace keep their matches.
	h, ok, err := cur.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", h.Key)
}

func TestReplaceIsAllOrNothing(t *testing.T) {
	ix := newDocIndex(t)
	loadDocs(t, ix)

	err := ix.Replace(context.Background(), []Entry{
		{Type: "Doc", Key: "x", Entity: value.Document{"title": value.String("ok")}},
		{Type: "Doc", Key: "y", Entity: value.Document{"count": value.String("three")}},
	})
	assert.ErrorIs(t, err, ErrFieldType)

	err = ix.Replace(context.Background(), []Entry{{Type: "Nope", Key: "x", Entity: value.Document{}}})
	assert.ErrorIs(t, err, catalog.ErrUnknownType)

	assert.Equal(t, []string{"a", "b", "c"}, keys(t, ix, "Doc", ""))
	_, ok := ix.Get("Doc", "x")
	assert.False(t, ok)
}
