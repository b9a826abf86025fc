package query

import (
	"fmt"
	"strings"

	"github.com/hupe1980/quarry/catalog"
	"github.com/hupe1980/quarry/index"
)

// Plan is a compiled projection query. It is immutable.
type Plan struct {
	text   string
	typ    string
	pred   index.Predicate
	fields []catalog.FieldDescriptor
}

// Text returns the query text the plan was compiled from.
func (p *Plan) Text() string { return p.text }

// Type returns the target entity type.
func (p *Plan) Type() string { return p.typ }

// Predicate returns the compiled predicate, or nil when every entity matches.
func (p *Plan) Predicate() index.Predicate { return p.pred }

// Fields returns the resolved projection descriptors in select-list order.
func (p *Plan) Fields() []catalog.FieldDescriptor {
	out := make([]catalog.FieldDescriptor, len(p.fields))
	copy(out, p.fields)
	return out
}

// FieldNames returns the projection field names in select-list order.
func (p *Plan) FieldNames() []string {
	names := make([]string, len(p.fields))
	for i, f := range p.fields {
		names[i] = f.Name
	}
	return names
}

// Width returns the number of tuple positions.
func (p *Plan) Width() int { return len(p.fields) }

// AllowDuplicates is always true: a field may appear more than once in the
// projection and is evaluated once per occurrence.
func (p *Plan) AllowDuplicates() bool { return true }

// Explain renders a human-readable description of the plan.
func (p *Plan) Explain() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Project [%s]\n", strings.Join(p.FieldNames(), ", "))
	if p.pred == nil {
		fmt.Fprintf(&sb, "  Match %s (all)\n", p.typ)
	} else {
		fmt.Fprintf(&sb, "  Match %s where %s\n", p.typ, p.pred)
	}
	return sb.String()
}

func (p *Plan) String() string {
	return p.text
}
