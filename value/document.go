package value

import "fmt"

// Document is a flat record of named values. It is the entity representation used
// by configuration-driven types, the loader and the HTTP server.
type Document map[string]Value

// Get returns the value stored under name.
func (d Document) Get(name string) (Value, bool) {
	v, ok := d[name]
	return v, ok
}

// Clone creates a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	clone := make(Document, len(d))
	for k, v := range d {
		clone[k] = v.Clone()
	}
	return clone
}

// DocumentFromAny converts a map[string]any (for example decoded JSON) to a Document.
func DocumentFromAny(m map[string]any) (Document, error) {
	d := make(Document, len(m))
	for k, v := range m {
		vv, err := FromAny(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		d[k] = vv
	}
	return d, nil
}
