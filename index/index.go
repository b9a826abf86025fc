package index

import (
	"context"
	"errors"
)

// ErrCursorClosed is returned by Next after Close.
var ErrCursorClosed = errors.New("cursor closed")

// Predicate is a compiled matching condition. Its structure is owned by the engine
// that parsed it; nil matches every entity of the target type.
type Predicate interface {
	String() string
}

// PredicateParser compiles predicate text for an entity type.
type PredicateParser interface {
	ParsePredicate(typ string, expr string) (Predicate, error)
}

// Handle identifies one matched entity.
type Handle struct {
	// ID is the engine's internal document id.
	ID uint32
	// Type is the entity type name.
	Type string
	// Key is the caller-assigned entity key.
	Key string
	// Entity is the stored entity instance.
	Entity any
}

// Cursor is a lazy, single-pass sequence of matches.
type Cursor interface {
	// Next returns the next match. ok is false once the sequence is exhausted.
	Next(ctx context.Context) (h Handle, ok bool, err error)
	// Close releases the cursor. Calling it more than once is a no-op.
	Close() error
}

// Matcher resolves predicates against stored entities.
type Matcher interface {
	Match(ctx context.Context, typ string, pred Predicate) (Cursor, error)
}
