package query

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax is matched by every SyntaxError.
	ErrSyntax = errors.New("query syntax error")

	// ErrEmptyProjection is returned when the select list names no field.
	ErrEmptyProjection = errors.New("empty projection")

	// ErrNotStored is matched by NotStoredError.
	ErrNotStored = errors.New("field is not stored")

	// ErrPredicateCompile is matched by PredicateCompileError.
	ErrPredicateCompile = errors.New("predicate compile error")
)

// SyntaxError reports malformed query text.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("query: %s at offset %d", e.Msg, e.Pos)
}

// Unwrap returns ErrSyntax.
func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// NotStoredError indicates a projection of a field that is indexed but not stored.
type NotStoredError struct {
	Type  string
	Field string
}

func (e *NotStoredError) Error() string {
	return fmt.Sprintf("field %q on type %q is not stored and cannot be projected", e.Field, e.Type)
}

// Unwrap returns ErrNotStored.
func (e *NotStoredError) Unwrap() error { return ErrNotStored }

// PredicateCompileError wraps a failure of the predicate parser.
//
// It matches ErrPredicateCompile; the parser's error can be accessed via errors.Unwrap.
type PredicateCompileError struct {
	Expr  string
	cause error
}

func (e *PredicateCompileError) Error() string {
	return fmt.Sprintf("cannot compile predicate %q: %v", e.Expr, e.cause)
}

func (e *PredicateCompileError) Unwrap() error { return e.cause }

// Is reports whether target is ErrPredicateCompile.
func (e *PredicateCompileError) Is(target error) bool { return target == ErrPredicateCompile }
