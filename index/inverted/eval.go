package inverted

import (
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/quarry/predicate"
)

// eval resolves n to a bitmap of candidate ids. The result may alias a posting
// list and must be treated as read-only. Caller must hold the read lock.
func (ti *typeIndex) eval(n predicate.Node) *roaring.Bitmap {
	switch x := n.(type) {
	case nil, predicate.MatchAll:
		return ti.live
	case *predicate.Term:
		return ti.evalTerm(x)
	case *predicate.Prefix:
		p, ok := ti.fields[x.Field]
		if !ok {
			return roaring.New()
		}
		var hits []*roaring.Bitmap
		for tok, bm := range p.tokens {
			if strings.HasPrefix(tok, x.Prefix) {
				hits = append(hits, bm)
			}
		}
		return roaring.FastOr(hits...)
	case *predicate.Exists:
		p, ok := ti.fields[x.Field]
		if !ok {
			return roaring.New()
		}
		return p.present
	case *predicate.Range:
		p, ok := ti.fields[x.Field]
		if !ok {
			return roaring.New()
		}
		var hits []*roaring.Bitmap
		for key, s := range p.scalars {
			if x.Contains(s) {
				hits = append(hits, p.exact[key])
			}
		}
		return roaring.FastOr(hits...)
	case *predicate.And:
		parts := make([]*roaring.Bitmap, len(x.Clauses))
		for i, c := range x.Clauses {
			parts[i] = ti.eval(c)
		}
		return roaring.FastAnd(parts...)
	case *predicate.Or:
		parts := make([]*roaring.Bitmap, len(x.Clauses))
		for i, c := range x.Clauses {
			parts[i] = ti.eval(c)
		}
		return roaring.FastOr(parts...)
	case *predicate.Not:
		return roaring.AndNot(ti.live, ti.eval(x.Clause))
	default:
		return roaring.New()
	}
}

// evalTerm matches the exact value key, or every token of the raw term.
func (ti *typeIndex) evalTerm(t *predicate.Term) *roaring.Bitmap {
	p, ok := ti.fields[t.Field]
	if !ok {
		return roaring.New()
	}

	exact, ok := p.exact[t.Value.Key()]
	if !ok {
		exact = roaring.New()
	}

	want := predicate.Tokenize(t.Raw)
	if len(want) == 0 {
		return exact
	}
	parts := make([]*roaring.Bitmap, 0, len(want))
	for _, w := range want {
		bm, ok := p.tokens[w]
		if !ok {
			return exact
		}
		parts = append(parts, bm)
	}
	return roaring.Or(exact, roaring.FastAnd(parts...))
}
