package predicate

import (
	"strings"
	"unicode"

	"github.com/hupe1980/quarry/value"
)

// Tokenize lower-cases s and splits it on every rune that is not a letter or digit.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Tokens returns the analysed tokens of a field value. Only strings, directly or
// inside arrays, produce tokens.
func Tokens(v value.Value) []string {
	switch v.Kind {
	case value.KindString:
		return Tokenize(v.StringValue())
	case value.KindArray:
		var out []string
		for _, e := range v.A {
			out = append(out, Tokens(e)...)
		}
		return out
	default:
		return nil
	}
}

// Scalars returns v itself, or the elements of v when it is an array.
// Range and term matching consider every scalar.
func Scalars(v value.Value) []value.Value {
	if v.Kind == value.KindArray {
		return v.A
	}
	return []value.Value{v}
}
