package predicate

import (
	"testing"

	"github.com/hupe1980/quarry/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"bar:'bar1'", "bar:'bar1'"},
		{`bar:"bar 1"`, "bar:'bar 1'"},
		{"bar:bar1", "bar:'bar1'"},
		{"count:3", "count:3"},
		{"count:-3", "count:-3"},
		{"ok:true", "ok:true"},
		{"bar:ba*", "bar:ba*"},
		{"bar:BA*", "bar:ba*"},
		{"bar:*", "bar:*"},
		{"*", "*"},
		{"count:>3", "count:{3 TO *}"},
		{"count:>=3", "count:[3 TO *}"},
		{"count:<3", "count:{* TO 3}"},
		{"count:<=3.5", "count:{* TO 3.5]"},
		{"count:[1 TO 5]", "count:[1 TO 5]"},
		{"count:{1 TO *]", "count:{1 TO *]"},
		{"a:x b:y", "a:'x' AND b:'y'"},
		{"a:x AND b:y OR c:z", "(a:'x' AND b:'y') OR c:'z'"},
		{"a:x AND (b:y OR c:z)", "a:'x' AND (b:'y' OR c:'z')"},
		{"NOT a:x", "NOT a:'x'"},
		{"-a:x b:y", "NOT a:'x' AND b:'y'"},
		{"a:'it\\'s'", `a:'it\'s'`},
		{"org.Foo$bar:x", "org.Foo$bar:'x'"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			n, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.String())
		})
	}
}

func TestParseTypedLiterals(t *testing.T) {
	n := MustParse("count:3")
	term := n.(*Term)
	assert.Equal(t, value.KindInt, term.Value.Kind)

	n = MustParse("count:2.5")
	assert.Equal(t, value.KindFloat, n.(*Term).Value.Kind)

	n = MustParse("count:'3'")
	assert.Equal(t, value.KindString, n.(*Term).Value.Kind)

	n = MustParse("name:inf")
	assert.Equal(t, value.KindString, n.(*Term).Value.Kind)
}

func TestParseErrors(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"bar",
		"bar:",
		"bar:'open",
		"(bar:x",
		"bar:x)",
		"bar:[1 5]",
		"bar:[1 TO 5",
		"bar:>*",
		"bar:a*b",
		"AND bar:x",
		"bar:x OR",
		"bar=x",
		":x",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSyntax)
		})
	}
}

func TestFields(t *testing.T) {
	n := MustParse("a:x AND (b:y OR -a:z) c:[1 TO 2] *")
	assert.Equal(t, []string{"a", "b", "c"}, Fields(n))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"hello", "world", "42"}, Tokenize("Hello, World-42!"))
	assert.Empty(t, Tokenize("--"))
	assert.Equal(t, []string{"a", "b"}, Tokens(value.Array([]value.Value{value.String("A"), value.Int(1), value.String("b")})))
}

func TestEval(t *testing.T) {
	doc := value.Document{
		"bar":   value.String("bar1"),
		"title": value.String("The Quick Brown Fox"),
		"count": value.Int(5),
		"price": value.Float(2.5),
		"tags":  value.Array([]value.Value{value.String("red"), value.String("green")}),
		"ok":    value.Bool(true),
		"none":  value.Null(),
	}
	get := func(f string) (value.Value, bool) { return doc.Get(f) }

	tests := []struct {
		expr string
		want bool
	}{
		{"bar:'bar1'", true},
		{"bar:bar1", true},
		{"bar:BAR1", true},
		{"bar:bar2", false},
		{"title:'quick fox'", true},
		{"title:'quick cat'", false},
		{"title:qu*", true},
		{"title:z*", false},
		{"count:5", true},
		{"count:5.0", true},
		{"count:>4", true},
		{"count:>5", false},
		{"count:>=5", true},
		{"count:[1 TO 5]", true},
		{"count:[1 TO 5}", false},
		{"price:<3", true},
		{"tags:green", true},
		{"tags:blue", false},
		{"ok:true", true},
		{"ok:false", false},
		{"none:*", false},
		{"none:null", true},
		{"missing:null", true},
		{"bar:*", true},
		{"bar:['bar0' TO 'bar2']", true},
		{"bar:bar1 AND count:5", true},
		{"bar:bar1 AND count:6", false},
		{"bar:bar2 OR count:5", true},
		{"-bar:bar2", true},
		{"NOT (bar:bar1 OR count:6)", false},
		{"*", true},
		{"count:>'a'", false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, Eval(MustParse(tt.expr), get))
		})
	}

	assert.True(t, Eval(nil, get))
}
