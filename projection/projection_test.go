package projection

import (
	"errors"
	"testing"

	"github.com/hupe1980/quarry/catalog"
	"github.com/hupe1980/quarry/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type foo struct {
	bar, baz string
}

func TestExtract(t *testing.T) {
	calls := 0
	bar := catalog.StringField("bar", func(f foo) string {
		calls++
		return f.bar
	})
	baz := catalog.StringField("baz", func(f foo) string { return f.baz })

	entity := foo{bar: "bar1", baz: "baz1"}
	ref := EntityRef{Type: "Foo", Key: "1"}

	tests := []struct {
		name   string
		fields []catalog.FieldDescriptor
		want   []any
		calls  int
	}{
		{"Single", []catalog.FieldDescriptor{bar}, []any{"bar1"}, 1},
		{"Ordered", []catalog.FieldDescriptor{bar, baz}, []any{"bar1", "baz1"}, 1},
		{"Reversed", []catalog.FieldDescriptor{baz, bar}, []any{"baz1", "bar1"}, 1},
		{"Duplicate", []catalog.FieldDescriptor{bar, bar}, []any{"bar1", "bar1"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls = 0
			tuple, err := Extract(entity, ref, tt.fields)
			require.NoError(t, err)
			assert.Equal(t, len(tt.fields), tuple.Len())
			assert.Equal(t, tt.want, tuple.Interfaces())
			assert.Equal(t, tt.calls, calls)
		})
	}
}

func TestExtractErrors(t *testing.T) {
	ref := EntityRef{Type: "Doc", Key: "k1"}

	_, err := Extract(value.Document{"a": value.Int(1)}, ref, []catalog.FieldDescriptor{
		catalog.DocumentField("a", value.TypeInt),
		catalog.DocumentField("b", value.TypeInt),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtraction)
	assert.ErrorIs(t, err, catalog.ErrMissingValue)

	var ee *ExtractionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "b", ee.Field)
	assert.Equal(t, "k1", ee.Key)
	assert.Equal(t, "Doc", ee.Type)
	assert.Contains(t, err.Error(), `"b"`)

	tuple, err := Extract(value.Document{"a": value.String("x")}, ref, []catalog.FieldDescriptor{
		catalog.DocumentField("a", value.TypeInt),
	})
	assert.Nil(t, tuple)
	assert.ErrorIs(t, err, ErrExtraction)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestTuple(t *testing.T) {
	a := Tuple{value.String("bar1"), value.Int(3)}
	b := Tuple{value.String("bar1"), value.Float(3)}
	c := Tuple{value.String("bar1")}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, `["bar1", 3]`, a.String())
}
