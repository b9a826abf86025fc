// Package index defines the contracts between the query path and the engine that
// resolves predicates to entities.
//
// The query compiler turns predicate text into an opaque Predicate through a
// PredicateParser. The executor hands that predicate to a Matcher and pulls
// matching entities through the returned Cursor.
//
// # Cursors
//
// A Cursor is single-pass and forward-only. It owns whatever the engine needs to
// produce the next match and must be released with Close exactly once; Close is
// idempotent. Leaving a cursor open leaks it.
//
//	cur, err := m.Match(ctx, "Foo", pred)
//	if err != nil {
//	    return err
//	}
//	defer cur.Close()
//
//	for {
//	    h, ok, err := cur.Next(ctx)
//	    if err != nil || !ok {
//	        return err
//	    }
//	    use(h.Entity)
//	}
//
// # Match order
//
// Engines yield matches in an order that is stable for a given data snapshot but
// otherwise unspecified. Callers must not assume relevance or insertion order.
//
// # Subpackages
//
//   - inverted: in-memory engine with roaring-bitmap posting lists
package index
