package predicate

import (
	"slices"
	"strings"

	"github.com/hupe1980/quarry/value"
)

// Getter returns the value of a field. A missing field reports false.
type Getter func(field string) (value.Value, bool)

// Eval reports whether the field values exposed by get satisfy n.
// A nil node matches everything.
func Eval(n Node, get Getter) bool {
	switch x := n.(type) {
	case nil, MatchAll:
		return true
	case *Term:
		v, ok := get(x.Field)
		if !ok {
			return x.Value.IsNull()
		}
		return TermMatches(x, v)
	case *Prefix:
		v, ok := get(x.Field)
		if !ok {
			return false
		}
		for _, tok := range Tokens(v) {
			if strings.HasPrefix(tok, x.Prefix) {
				return true
			}
		}
		return false
	case *Exists:
		v, ok := get(x.Field)
		return ok && !v.IsNull()
	case *Range:
		v, ok := get(x.Field)
		if !ok {
			return false
		}
		for _, s := range Scalars(v) {
			if x.Contains(s) {
				return true
			}
		}
		return false
	case *And:
		for _, c := range x.Clauses {
			if !Eval(c, get) {
				return false
			}
		}
		return true
	case *Or:
		for _, c := range x.Clauses {
			if Eval(c, get) {
				return true
			}
		}
		return false
	case *Not:
		return !Eval(x.Clause, get)
	default:
		return false
	}
}

// TermMatches reports whether a field value satisfies a term. The term matches
// when the whole value (or one array element) equals it, or when every token of
// the raw term occurs among the value's tokens.
func TermMatches(t *Term, v value.Value) bool {
	if v.Key() == t.Value.Key() {
		return true
	}
	for _, s := range Scalars(v) {
		if s.Key() == t.Value.Key() {
			return true
		}
	}
	want := Tokenize(t.Raw)
	if len(want) == 0 {
		return false
	}
	have := Tokens(v)
	for _, w := range want {
		if !slices.Contains(have, w) {
			return false
		}
	}
	return true
}

// Contains reports whether the scalar s lies within the range. Values that do not
// compare with a bound never match.
func (r *Range) Contains(s value.Value) bool {
	if s.IsNull() {
		return false
	}
	if r.Lower != nil {
		c, ok := s.Compare(*r.Lower)
		if !ok || c < 0 || (c == 0 && !r.IncludeLower) {
			return false
		}
	}
	if r.Upper != nil {
		c, ok := s.Compare(*r.Upper)
		if !ok || c > 0 || (c == 0 && !r.IncludeUpper) {
			return false
		}
	}
	return true
}
