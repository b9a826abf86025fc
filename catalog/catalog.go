package catalog

import (
	"fmt"
	"sync"
)

// Catalog maps entity type names to their field descriptors.
//
// Registration is expected to happen before queries compile against a type;
// afterwards access is read-only and safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
}

type entry struct {
	fields []FieldDescriptor
	byName map[string]int
	codec  EntityCodec
}

// RegisterOption configures a registration.
type RegisterOption func(*entry)

// WithEntityCodec attaches the codec used to persist entities of the type.
func WithEntityCodec(c EntityCodec) RegisterOption {
	return func(e *entry) {
		e.codec = c
	}
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		entries: make(map[string]*entry),
	}
}

// Register declares an entity type with its ordered field descriptors.
func (c *Catalog) Register(typ string, fields []FieldDescriptor, opts ...RegisterOption) error {
	if typ == "" {
		return fmt.Errorf("%w: empty type name", ErrInvalidDescriptor)
	}
	if len(fields) == 0 {
		return fmt.Errorf("%w: type %q declares no fields", ErrInvalidDescriptor, typ)
	}

	e := &entry{
		fields: make([]FieldDescriptor, len(fields)),
		byName: make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if err := f.validate(); err != nil {
			return fmt.Errorf("type %q: %w", typ, err)
		}
		if _, dup := e.byName[f.Name]; dup {
			return fmt.Errorf("%w: type %q declares field %q twice", ErrInvalidDescriptor, typ, f.Name)
		}
		e.byName[f.Name] = i
		e.fields[i] = f
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[typ]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateRegistration, typ)
	}
	c.entries[typ] = e
	c.order = append(c.order, typ)
	return nil
}

// IsRegistered reports whether typ has been registered.
func (c *Catalog) IsRegistered(typ string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.entries[typ]
	return ok
}

// Lookup returns the descriptor of field on typ.
func (c *Catalog) Lookup(typ, field string) (FieldDescriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[typ]
	if !ok {
		return FieldDescriptor{}, &UnknownTypeError{Type: typ}
	}
	i, ok := e.byName[field]
	if !ok {
		return FieldDescriptor{}, &UnknownFieldError{Type: typ, Field: field}
	}
	return e.fields[i], nil
}

// Fields returns a copy of the descriptors of typ in declaration order.
func (c *Catalog) Fields(typ string) ([]FieldDescriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[typ]
	if !ok {
		return nil, &UnknownTypeError{Type: typ}
	}
	out := make([]FieldDescriptor, len(e.fields))
	copy(out, e.fields)
	return out, nil
}

// Types returns the registered type names in registration order.
func (c *Catalog) Types() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Codec returns the entity codec of typ, or nil if none was registered.
func (c *Catalog) Codec(typ string) (EntityCodec, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[typ]
	if !ok {
		return nil, &UnknownTypeError{Type: typ}
	}
	return e.codec, nil
}
