package config

import (
	"fmt"
	"maps"
	"slices"
	"sort"
)

// Indexing is an immutable indexing configuration. Obtain one from NewIndexing.
type Indexing struct {
	enabled    bool
	types      []string
	properties map[string]string
}

// NewIndexing validates and builds an Indexing value. Declaring indexed types while
// indexing is disabled fails with ErrIndexingDisabled.
func NewIndexing(enabled bool, types []string, properties map[string]string) (Indexing, error) {
	if !enabled && len(types) > 0 {
		return Indexing{}, fmt.Errorf("%w: %v", ErrIndexingDisabled, types)
	}

	seen := make(map[string]struct{}, len(types))
	for _, t := range types {
		if t == "" {
			return Indexing{}, fmt.Errorf("%w: empty indexed type name", ErrInvalid)
		}
		if _, dup := seen[t]; dup {
			return Indexing{}, fmt.Errorf("%w: indexed type %q listed twice", ErrInvalid, t)
		}
		seen[t] = struct{}{}
	}

	sorted := slices.Clone(types)
	sort.Strings(sorted)

	return Indexing{
		enabled:    enabled,
		types:      sorted,
		properties: maps.Clone(properties),
	}, nil
}

// Enabled reports whether indexing is on.
func (i Indexing) Enabled() bool { return i.enabled }

// IndexedTypes returns the declared indexed types, sorted.
// An empty result with indexing enabled means every registered type is indexed.
func (i Indexing) IndexedTypes() []string { return slices.Clone(i.types) }

// Indexes reports whether typ is indexed.
func (i Indexing) Indexes(typ string) bool {
	if !i.enabled {
		return false
	}
	if len(i.types) == 0 {
		return true
	}
	_, found := slices.BinarySearch(i.types, typ)
	return found
}

// Property returns a free-form indexing property.
func (i Indexing) Property(key string) (string, bool) {
	v, ok := i.properties[key]
	return v, ok
}

// Properties returns a copy of all properties.
func (i Indexing) Properties() map[string]string { return maps.Clone(i.properties) }
