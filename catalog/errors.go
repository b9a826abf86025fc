package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateRegistration is returned when a type is registered twice.
	ErrDuplicateRegistration = errors.New("type already registered")

	// ErrUnknownType is matched by UnknownTypeError.
	ErrUnknownType = errors.New("unknown entity type")

	// ErrUnknownField is matched by UnknownFieldError.
	ErrUnknownField = errors.New("unknown field")

	// ErrInvalidDescriptor is returned for malformed registrations.
	ErrInvalidDescriptor = errors.New("invalid field descriptor")

	// ErrMissingValue is returned by accessors when the entity has no value for the field.
	ErrMissingValue = errors.New("missing value")

	// ErrEntityType is returned by typed accessors when handed an entity of another Go type.
	ErrEntityType = errors.New("unexpected entity type")
)

// UnknownTypeError indicates that an entity type is not registered.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown entity type %q", e.Type)
}

func (e *UnknownTypeError) Unwrap() error { return ErrUnknownType }

// UnknownFieldError indicates that a type has no field with the given name.
type UnknownFieldError struct {
	Type  string
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q on type %q", e.Field, e.Type)
}

func (e *UnknownFieldError) Unwrap() error { return ErrUnknownField }
