// Package projection extracts ordered field tuples from matched entities.
package projection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/quarry/catalog"
	"github.com/hupe1980/quarry/value"
)

var (
	// ErrExtraction is matched by every ExtractionError.
	ErrExtraction = errors.New("projection extraction failed")

	// ErrTypeMismatch is returned when an accessor yields a value its declared
	// field type does not accept.
	ErrTypeMismatch = errors.New("value does not match declared field type")
)

// EntityRef identifies the entity a tuple is extracted from.
type EntityRef struct {
	Type string
	Key  string
}

// ExtractionError reports a failed accessor on a matched entity.
//
// It matches ErrExtraction; the accessor's error can be accessed via errors.Unwrap.
type ExtractionError struct {
	Type  string
	Key   string
	Field string
	cause error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("cannot extract field %q of %s %q: %v", e.Field, e.Type, e.Key, e.cause)
}

func (e *ExtractionError) Unwrap() error { return e.cause }

// Is reports whether target is ErrExtraction.
func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

// Tuple is one projected row. Position i holds the value of projection field i.
type Tuple []value.Value

// Len returns the number of positions.
func (t Tuple) Len() int { return len(t) }

// Equal reports whether both tuples have the same length and equal values.
func (t Tuple) Equal(o Tuple) bool {
	if len(t) != len(o) {
		return false
	}
	for i := range t {
		if !t[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Interfaces returns the tuple as plain Go values.
func (t Tuple) Interfaces() []any {
	out := make([]any, len(t))
	for i, v := range t {
		out[i] = v.Interface()
	}
	return out
}

func (t Tuple) String() string {
	parts := make([]string, len(t))
	for i, v := range t {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Extract invokes the accessor of every field in order, once per occurrence,
// and returns the resulting tuple. No partial tuple is returned on failure.
func Extract(entity any, ref EntityRef, fields []catalog.FieldDescriptor) (Tuple, error) {
	tuple := make(Tuple, len(fields))
	for i, f := range fields {
		v, err := f.Read(entity)
		if err != nil {
			return nil, &ExtractionError{Type: ref.Type, Key: ref.Key, Field: f.Name, cause: err}
		}
		if !f.Type.Accepts(v.Kind) {
			return nil, &ExtractionError{
				Type:  ref.Type,
				Key:   ref.Key,
				Field: f.Name,
				cause: fmt.Errorf("%w: got %s, declared %s", ErrTypeMismatch, v.Kind, f.Type),
			}
		}
		tuple[i] = v
	}
	return tuple, nil
}
