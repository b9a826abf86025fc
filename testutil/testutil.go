package testutil

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/quarry/catalog"
	"github.com/hupe1980/quarry/index"
	"github.com/hupe1980/quarry/predicate"
	"github.com/hupe1980/quarry/value"
)

// FooType is the registered type name of Foo.
const FooType = "Foo"

// Foo is the two-field entity used across the test suites.
type Foo struct {
	Bar string `json:"bar"`
	Baz string `json:"baz"`
}

// FooFields returns the descriptors of Foo in declaration order (bar, baz).
func FooFields() []catalog.FieldDescriptor {
	return []catalog.FieldDescriptor{
		catalog.StringField("bar", func(f Foo) string { return f.Bar }),
		catalog.StringField("baz", func(f Foo) string { return f.Baz }),
	}
}

// RegisterFoo registers Foo with a JSON entity codec.
func RegisterFoo(cat *catalog.Catalog) error {
	return cat.Register(FooType, FooFields(), catalog.WithEntityCodec(catalog.TypedCodec[Foo](nil)))
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewSource(r.seed))
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

var words = []string{"bar", "baz", "qux", "quux", "corge", "grault", "garply", "waldo"}

// Word returns a random word from a small vocabulary followed by a digit,
// e.g. "qux3". The small vocabulary makes predicates hit several entities.
func (r *RNG) Word() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fmt.Sprintf("%s%d", words[r.rand.Intn(len(words))], r.rand.Intn(3))
}

// Foos returns n random Foo entities.
func (r *RNG) Foos(n int) []Foo {
	out := make([]Foo, n)
	for i := range out {
		out[i] = Foo{Bar: r.Word(), Baz: r.Word()}
	}
	return out
}

// Entity is one keyed entity.
type Entity struct {
	Key    string
	Entity any
}

// Entities keys foos by their position ("0", "1", ...).
func Entities(foos ...Foo) []Entity {
	out := make([]Entity, len(foos))
	for i, f := range foos {
		out[i] = Entity{Key: fmt.Sprint(i), Entity: f}
	}
	return out
}

// ErrInjected is the default failure of Matcher.
var ErrInjected = errors.New("injected failure")

// Matcher is a scripted index.Matcher yielding Entities in order.
type Matcher struct {
	Type     string
	Entities []Entity

	// Filter selects matching entities. Nil matches everything.
	Filter func(pred index.Predicate, e Entity) bool

	// FailAt makes cursor advance number FailAt (0-based) fail. Zero disables
	// failure injection unless Fail is set; use FailAt with Fail to fail first.
	FailAt int
	Fail   bool
	// Err is the injected error (ErrInjected if nil).
	Err error
	// MatchErr makes Match itself fail.
	MatchErr error

	open   atomic.Int64
	opened atomic.Int64
}

var _ index.Matcher = (*Matcher)(nil)

// Match returns a cursor over the entities accepted by Filter.
func (m *Matcher) Match(ctx context.Context, typ string, pred index.Predicate) (index.Cursor, error) {
	if m.MatchErr != nil {
		return nil, m.MatchErr
	}
	if typ != m.Type {
		return nil, &catalog.UnknownTypeError{Type: typ}
	}

	var hits []Entity
	for _, e := range m.Entities {
		if m.Filter == nil || m.Filter(pred, e) {
			hits = append(hits, e)
		}
	}

	failAt := -1
	if m.Fail || m.FailAt > 0 {
		failAt = m.FailAt
	}
	err := m.Err
	if err == nil {
		err = ErrInjected
	}

	m.open.Add(1)
	m.opened.Add(1)
	return &cursor{m: m, typ: typ, hits: hits, failAt: failAt, err: err}, nil
}

// OpenCursors returns the number of cursors not yet closed.
func (m *Matcher) OpenCursors() int64 { return m.open.Load() }

// Opened returns the number of cursors handed out so far.
func (m *Matcher) Opened() int64 { return m.opened.Load() }

type cursor struct {
	m      *Matcher
	typ    string
	hits   []Entity
	pos    int
	calls  int
	failAt int
	err    error
	closed atomic.Bool
}

func (c *cursor) Next(ctx context.Context) (index.Handle, bool, error) {
	if c.closed.Load() {
		return index.Handle{}, false, index.ErrCursorClosed
	}
	if err := ctx.Err(); err != nil {
		return index.Handle{}, false, err
	}

	call := c.calls
	c.calls++
	if call == c.failAt {
		return index.Handle{}, false, c.err
	}
	if c.pos >= len(c.hits) {
		return index.Handle{}, false, nil
	}

	e := c.hits[c.pos]
	c.pos++
	return index.Handle{ID: uint32(c.pos - 1), Type: c.typ, Key: e.Key, Entity: e.Entity}, true, nil
}

func (c *cursor) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		c.m.open.Add(-1)
	}
	return nil
}

// EvalFilter returns a Matcher filter evaluating predicate.Node predicates with
// the accessors registered for typ. Missing document values evaluate as null.
func EvalFilter(cat *catalog.Catalog, typ string) func(index.Predicate, Entity) bool {
	return func(pred index.Predicate, e Entity) bool {
		if pred == nil {
			return true
		}
		n, ok := pred.(predicate.Node)
		if !ok {
			return false
		}
		return predicate.Eval(n, func(field string) (value.Value, bool) {
			d, err := cat.Lookup(typ, field)
			if err != nil {
				return value.Value{}, false
			}
			v, err := d.Read(e.Entity)
			if err != nil {
				return value.Null(), true
			}
			return v, true
		})
	}
}
