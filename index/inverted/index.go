package inverted

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"
	"sync"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/quarry/catalog"
	"github.com/hupe1980/quarry/index"
	"github.com/hupe1980/quarry/predicate"
	"github.com/hupe1980/quarry/value"
)

var (
	// ErrFieldType is returned by Put when an accessor result does not match the
	// declared field type.
	ErrFieldType = errors.New("field value does not match declared type")

	// ErrUnsupportedPredicate is returned by Match for predicates it did not parse.
	ErrUnsupportedPredicate = errors.New("unsupported predicate")

	// ErrIDSpaceExhausted is returned when no document id is left.
	ErrIDSpaceExhausted = errors.New("document id space exhausted")
)

// Catalog is the part of catalog.Catalog the index depends on.
type Catalog interface {
	Fields(typ string) ([]catalog.FieldDescriptor, error)
	Lookup(typ, field string) (catalog.FieldDescriptor, error)
}

// Stats is a point-in-time view of the index.
type Stats struct {
	Types       int
	Entities    int
	Terms       int
	OpenCursors int64
}

// Index is an in-memory inverted index over catalog entities.
// It is safe for concurrent use.
type Index struct {
	mu     sync.RWMutex
	cat    Catalog
	types  map[string]*typeIndex
	nextID uint32

	open atomic.Int64
}

type typeIndex struct {
	keys    map[string]uint32
	records map[uint32]*record
	live    *roaring.Bitmap
	fields  map[string]*postings
}

type record struct {
	key    string
	entity any
	values map[string]value.Value
}

var (
	_ index.Matcher         = (*Index)(nil)
	_ index.PredicateParser = (*Index)(nil)
)

// New creates an empty index over the types of cat.
func New(cat Catalog) *Index {
	return &Index{
		cat:   cat,
		types: make(map[string]*typeIndex),
	}
}

// Put indexes entity under key, replacing any previous entity with that key.
// All accessors are invoked once; a missing document value is indexed as null.
func (ix *Index) Put(ctx context.Context, typ, key string, entity any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	values, err := ix.readValues(typ, key, entity)
	if err != nil {
		return err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.nextID == math.MaxUint32 {
		return ErrIDSpaceExhausted
	}
	ix.insertLocked(typ, key, entity, values)
	return nil
}

// Entry is one entity handed to Replace.
type Entry struct {
	Type   string
	Key    string
	Entity any
}

// Replace swaps the whole content of the index for entries. Every entry is read
// and checked before anything changes, so on error the index is untouched.
// Later entries win over earlier ones with the same type and key.
func (ix *Index) Replace(ctx context.Context, entries []Entry) error {
	values := make([]map[string]value.Value, len(entries))
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		v, err := ix.readValues(e.Type, e.Key, e.Entity)
		if err != nil {
			return err
		}
		values[i] = v
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if uint64(ix.nextID)+uint64(len(entries)) >= math.MaxUint32 {
		return ErrIDSpaceExhausted
	}

	ix.types = make(map[string]*typeIndex)
	for i, e := range entries {
		ix.insertLocked(e.Type, e.Key, e.Entity, values[i])
	}
	return nil
}

func (ix *Index) readValues(typ, key string, entity any) (map[string]value.Value, error) {
	fields, err := ix.cat.Fields(typ)
	if err != nil {
		return nil, err
	}

	values := make(map[string]value.Value, len(fields))
	for _, f := range fields {
		v, err := f.Read(entity)
		if errors.Is(err, catalog.ErrMissingValue) {
			v, err = value.Null(), nil
		}
		if err != nil {
			return nil, fmt.Errorf("inverted: read %s.%s of %q: %w", typ, f.Name, key, err)
		}
		if !f.Type.Accepts(v.Kind) {
			return nil, fmt.Errorf("%w: %s.%s of %q is %s, declared %s", ErrFieldType, typ, f.Name, key, v.Kind, f.Type)
		}
		values[f.Name] = v
	}
	return values, nil
}

// insertLocked stores a checked entity. Caller must hold the write lock and
// have checked the id space.
func (ix *Index) insertLocked(typ, key string, entity any, values map[string]value.Value) {
	ti := ix.typeLocked(typ)
	if old, ok := ti.keys[key]; ok {
		ti.removeLocked(old)
	}

	id := ix.nextID
	ix.nextID++

	rec := &record{key: key, entity: entity, values: values}
	ti.keys[key] = id
	ti.records[id] = rec
	ti.live.Add(id)
	for name, v := range values {
		p, ok := ti.fields[name]
		if !ok {
			p = newPostings()
			ti.fields[name] = p
		}
		p.add(id, v)
	}
}

// Delete removes the entity stored under key. It reports whether one existed.
func (ix *Index) Delete(typ, key string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ti, ok := ix.types[typ]
	if !ok {
		return false
	}
	id, ok := ti.keys[key]
	if !ok {
		return false
	}
	ti.removeLocked(id)
	return true
}

// Get returns the entity stored under key.
func (ix *Index) Get(typ, key string) (any, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	ti, ok := ix.types[typ]
	if !ok {
		return nil, false
	}
	id, ok := ti.keys[key]
	if !ok {
		return nil, false
	}
	return ti.records[id].entity, true
}

// Len returns the number of entities of typ.
func (ix *Index) Len(typ string) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	ti, ok := ix.types[typ]
	if !ok {
		return 0
	}
	return len(ti.records)
}

// Scan yields the key and entity of every stored entity of typ in document id
// order. It iterates a copy taken when the sequence starts.
func (ix *Index) Scan(typ string) iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		type kv struct {
			key    string
			entity any
		}

		ix.mu.RLock()
		var items []kv
		if ti, ok := ix.types[typ]; ok {
			items = make([]kv, 0, len(ti.records))
			it := ti.live.Iterator()
			for it.HasNext() {
				rec := ti.records[it.Next()]
				items = append(items, kv{key: rec.key, entity: rec.entity})
			}
		}
		ix.mu.RUnlock()

		for _, item := range items {
			if !yield(item.key, item.entity) {
				return
			}
		}
	}
}

// OpenCursors returns the number of cursors that have not been closed.
func (ix *Index) OpenCursors() int64 {
	return ix.open.Load()
}

// Stats returns index statistics.
func (ix *Index) Stats() Stats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	s := Stats{Types: len(ix.types), OpenCursors: ix.open.Load()}
	for _, ti := range ix.types {
		s.Entities += len(ti.records)
		for _, p := range ti.fields {
			s.Terms += p.terms()
		}
	}
	return s
}

// ParsePredicate parses expr and checks that every referenced field exists on typ.
func (ix *Index) ParsePredicate(typ, expr string) (index.Predicate, error) {
	if _, err := ix.cat.Fields(typ); err != nil {
		return nil, err
	}

	n, err := predicate.Parse(expr)
	if err != nil {
		return nil, err
	}
	for _, f := range predicate.Fields(n) {
		if _, err := ix.cat.Lookup(typ, f); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// Match resolves pred against the entities of typ and returns a cursor over the
// matches. A nil predicate matches every entity.
func (ix *Index) Match(ctx context.Context, typ string, pred index.Predicate) (index.Cursor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := ix.cat.Fields(typ); err != nil {
		return nil, err
	}

	var node predicate.Node
	if pred != nil {
		n, ok := pred.(predicate.Node)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedPredicate, pred)
		}
		node = n
	}

	ix.mu.RLock()
	ti, ok := ix.types[typ]
	result := roaring.New()
	if ok {
		result = roaring.And(ti.eval(node), ti.live)
	}
	ix.mu.RUnlock()

	ix.open.Add(1)
	return &cursor{
		ix:  ix,
		ti:  ti,
		typ: typ,
		it:  result.Iterator(),
	}, nil
}

func (ix *Index) typeLocked(typ string) *typeIndex {
	ti, ok := ix.types[typ]
	if !ok {
		ti = &typeIndex{
			keys:    make(map[string]uint32),
			records: make(map[uint32]*record),
			live:    roaring.New(),
			fields:  make(map[string]*postings),
		}
		ix.types[typ] = ti
	}
	return ti
}

func (ti *typeIndex) removeLocked(id uint32) {
	rec, ok := ti.records[id]
	if !ok {
		return
	}
	for name, v := range rec.values {
		if p, ok := ti.fields[name]; ok {
			p.remove(id, v)
		}
	}
	delete(ti.records, id)
	delete(ti.keys, rec.key)
	ti.live.Remove(id)
}
