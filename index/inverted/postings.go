package inverted

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/quarry/predicate"
	"github.com/hupe1980/quarry/value"
)

// postings holds the posting lists of one field.
//
// Structure:
//   - exact: value key -> ids (whole values and array elements)
//   - scalars: value key -> representative scalar, used for range scans
//   - tokens: analysed token -> ids
//   - present: ids with a non-null value
//
// Bitmaps are only mutated under the index write lock. Readers combine them with
// allocating operations and never modify them.
type postings struct {
	exact   map[string]*roaring.Bitmap
	scalars map[string]value.Value
	tokens  map[string]*roaring.Bitmap
	present *roaring.Bitmap
}

func newPostings() *postings {
	return &postings{
		exact:   make(map[string]*roaring.Bitmap),
		scalars: make(map[string]value.Value),
		tokens:  make(map[string]*roaring.Bitmap),
		present: roaring.New(),
	}
}

func (p *postings) add(id uint32, v value.Value) {
	for key, s := range valueKeys(v) {
		bm, ok := p.exact[key]
		if !ok {
			bm = roaring.New()
			p.exact[key] = bm
		}
		bm.Add(id)
		if s != nil && !s.IsNull() {
			p.scalars[key] = *s
		}
	}

	for _, tok := range predicate.Tokens(v) {
		bm, ok := p.tokens[tok]
		if !ok {
			bm = roaring.New()
			p.tokens[tok] = bm
		}
		bm.Add(id)
	}

	if !v.IsNull() {
		p.present.Add(id)
	}
}

func (p *postings) remove(id uint32, v value.Value) {
	for key := range valueKeys(v) {
		bm, ok := p.exact[key]
		if !ok {
			continue
		}
		bm.Remove(id)
		if bm.IsEmpty() {
			delete(p.exact, key)
			delete(p.scalars, key)
		}
	}

	for _, tok := range predicate.Tokens(v) {
		bm, ok := p.tokens[tok]
		if !ok {
			continue
		}
		bm.Remove(id)
		if bm.IsEmpty() {
			delete(p.tokens, tok)
		}
	}

	p.present.Remove(id)
}

func (p *postings) terms() int {
	return len(p.exact) + len(p.tokens)
}

// valueKeys returns the exact keys under which v is indexed. Scalar keys map to
// their scalar; the whole-array key maps to nil.
func valueKeys(v value.Value) map[string]*value.Value {
	keys := make(map[string]*value.Value, 1)
	if v.Kind == value.KindArray {
		keys[v.Key()] = nil
	}
	scalars := predicate.Scalars(v)
	for i := range scalars {
		keys[scalars[i].Key()] = &scalars[i]
	}
	return keys
}
