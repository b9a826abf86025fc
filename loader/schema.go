package loader

import (
	"fmt"
	"sync"

	gojson "github.com/goccy/go-json"
	"github.com/hupe1980/quarry/catalog"
	"github.com/hupe1980/quarry/value"
	"github.com/xeipuuv/gojsonschema"
)

// Catalog is the registration table the loader derives schemas from.
type Catalog interface {
	Fields(typ string) ([]catalog.FieldDescriptor, error)
}

func jsonType(t value.Type) []string {
	switch t {
	case value.TypeInt:
		return []string{"integer", "null"}
	case value.TypeFloat:
		return []string{"number", "null"}
	case value.TypeString:
		return []string{"string", "null"}
	case value.TypeBool:
		return []string{"boolean", "null"}
	case value.TypeArray:
		return []string{"array", "null"}
	default:
		return nil
	}
}

// Schema returns the JSON Schema document for the fields object of typ.
// Stored fields are required; null is accepted for every field.
func Schema(cat Catalog, typ string) ([]byte, error) {
	fields, err := cat.Fields(typ)
	if err != nil {
		return nil, err
	}

	props := make(map[string]any, len(fields))
	required := make([]string, 0, len(fields))
	for _, f := range fields {
		prop := map[string]any{}
		if jt := jsonType(f.Type); jt != nil {
			prop["type"] = jt
		}
		props[f.Name] = prop
		if f.Stored {
			required = append(required, f.Name)
		}
	}

	doc := map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"title":      typ,
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return gojson.Marshal(doc)
}

// schemas compiles and caches one schema per type.
type schemas struct {
	cat Catalog
	mu  sync.Mutex
	m   map[string]*gojsonschema.Schema
}

func newSchemas(cat Catalog) *schemas {
	return &schemas{cat: cat, m: make(map[string]*gojsonschema.Schema)}
}

func (s *schemas) get(typ string) (*gojsonschema.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sc, ok := s.m[typ]; ok {
		return sc, nil
	}

	raw, err := Schema(s.cat, typ)
	if err != nil {
		return nil, err
	}
	sc, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("loader: compile schema for %s: %w", typ, err)
	}
	s.m[typ] = sc
	return sc, nil
}
