package testutil

import (
	"context"
	"testing"

	"github.com/hupe1980/quarry/catalog"
	"github.com/hupe1980/quarry/predicate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReset(t *testing.T) {
	rng := NewRNG(42)
	first := rng.Foos(10)

	rng.Reset()
	assert.Equal(t, first, rng.Foos(10))
	assert.Equal(t, int64(42), rng.Seed())
}

func drain(t *testing.T, m *Matcher, pred predicate.Node) ([]string, error) {
	t.Helper()

	cur, err := m.Match(context.Background(), FooType, pred)
	require.NoError(t, err)
	defer cur.Close()

	var keys []string
	for {
		h, ok, err := cur.Next(context.Background())
		if err != nil {
			return keys, err
		}
		if !ok {
			return keys, nil
		}
		keys = append(keys, h.Key)
	}
}

func TestMatcher(t *testing.T) {
	cat := catalog.New()
	require.NoError(t, RegisterFoo(cat))

	m := &Matcher{
		Type:     FooType,
		Entities: Entities(Foo{"bar1", "baz1"}, Foo{"bar2", "baz2"}, Foo{"bar1", "baz3"}),
		Filter:   EvalFilter(cat, FooType),
	}

	keys, err := drain(t, m, predicate.MustParse("bar:bar1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "2"}, keys)

	keys, err = drain(t, m, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1", "2"}, keys)

	m.FailAt = 1
	keys, err = drain(t, m, nil)
	assert.ErrorIs(t, err, ErrInjected)
	assert.Equal(t, []string{"0"}, keys)

	assert.Equal(t, int64(0), m.OpenCursors())
	assert.Equal(t, int64(3), m.Opened())

	_, err = m.Match(context.Background(), "Other", nil)
	assert.ErrorIs(t, err, catalog.ErrUnknownType)
}
