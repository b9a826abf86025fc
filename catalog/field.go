package catalog

import (
	"fmt"

	"github.com/hupe1980/quarry/value"
)

// Accessor reads one field from an entity.
type Accessor func(entity any) (value.Value, error)

// FieldDescriptor describes one field of an entity type.
type FieldDescriptor struct {
	// Name is the case-sensitive field name used in queries.
	Name string
	// Type is the declared storage type. Accessor results must be accepted by it.
	Type value.Type
	// Stored marks the field as projectable. Unstored fields are searchable only.
	Stored bool
	// Accessor reads the field. It is invoked once per projected occurrence.
	Accessor Accessor
}

// WithStored returns a copy of the descriptor with the stored flag set.
func (d FieldDescriptor) WithStored(stored bool) FieldDescriptor {
	d.Stored = stored
	return d
}

// Read invokes the accessor.
func (d FieldDescriptor) Read(entity any) (value.Value, error) {
	return d.Accessor(entity)
}

func (d FieldDescriptor) validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: empty field name", ErrInvalidDescriptor)
	}
	if d.Accessor == nil {
		return fmt.Errorf("%w: field %q has no accessor", ErrInvalidDescriptor, d.Name)
	}
	return nil
}

// Field builds a stored descriptor whose accessor works on entities of Go type T.
func Field[T any](name string, typ value.Type, fn func(T) (value.Value, error)) FieldDescriptor {
	return FieldDescriptor{
		Name:   name,
		Type:   typ,
		Stored: true,
		Accessor: func(entity any) (value.Value, error) {
			e, ok := entity.(T)
			if !ok {
				var zero T
				return value.Value{}, fmt.Errorf("%w: want %T, got %T", ErrEntityType, zero, entity)
			}
			return fn(e)
		},
	}
}

// StringField builds a stored string descriptor from a plain getter.
func StringField[T any](name string, fn func(T) string) FieldDescriptor {
	return Field(name, value.TypeString, func(e T) (value.Value, error) {
		return value.String(fn(e)), nil
	})
}

// IntField builds a stored int descriptor from a plain getter.
func IntField[T any](name string, fn func(T) int64) FieldDescriptor {
	return Field(name, value.TypeInt, func(e T) (value.Value, error) {
		return value.Int(fn(e)), nil
	})
}

// DocumentField builds a stored descriptor reading key name from value.Document
// entities. The accessor fails with ErrMissingValue when the key is absent.
func DocumentField(name string, typ value.Type) FieldDescriptor {
	return FieldDescriptor{
		Name:   name,
		Type:   typ,
		Stored: true,
		Accessor: func(entity any) (value.Value, error) {
			doc, ok := entity.(value.Document)
			if !ok {
				return value.Value{}, fmt.Errorf("%w: want value.Document, got %T", ErrEntityType, entity)
			}
			v, ok := doc[name]
			if !ok {
				return value.Value{}, fmt.Errorf("%w: %q", ErrMissingValue, name)
			}
			return v, nil
		},
	}
}
