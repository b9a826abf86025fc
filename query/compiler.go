package query

import (
	"errors"

	"github.com/hupe1980/quarry/catalog"
	"github.com/hupe1980/quarry/index"
)

var errEmptyPredicate = errors.New("empty predicate after WHERE")

var errNoPredicateParser = errors.New("no predicate parser configured")

// Catalog is the part of catalog.Catalog the compiler depends on.
type Catalog interface {
	IsRegistered(typ string) bool
	Lookup(typ, field string) (catalog.FieldDescriptor, error)
}

// Compiler turns query text into plans. It is safe for concurrent use.
type Compiler struct {
	cat    Catalog
	parser index.PredicateParser
}

// NewCompiler creates a compiler resolving names against cat and delegating
// predicates to parser. A nil parser rejects every query with a WHERE clause.
func NewCompiler(cat Catalog, parser index.PredicateParser) *Compiler {
	return &Compiler{cat: cat, parser: parser}
}

// Compile parses and resolves text. A failed compile never returns a plan.
func (c *Compiler) Compile(text string) (*Plan, error) {
	stmt, err := newParser(text).parse()
	if err != nil {
		return nil, err
	}

	if !c.cat.IsRegistered(stmt.typ) {
		return nil, &catalog.UnknownTypeError{Type: stmt.typ}
	}

	fields := make([]catalog.FieldDescriptor, 0, len(stmt.fields))
	for _, name := range stmt.fields {
		d, err := c.cat.Lookup(stmt.typ, name)
		if err != nil {
			return nil, err
		}
		if !d.Stored {
			return nil, &NotStoredError{Type: stmt.typ, Field: name}
		}
		fields = append(fields, d)
	}

	var pred index.Predicate
	if stmt.hasWhere {
		switch {
		case stmt.where == "":
			return nil, &PredicateCompileError{cause: errEmptyPredicate}
		case c.parser == nil:
			return nil, &PredicateCompileError{Expr: stmt.where, cause: errNoPredicateParser}
		}
		pred, err = c.parser.ParsePredicate(stmt.typ, stmt.where)
		if err != nil {
			return nil, &PredicateCompileError{Expr: stmt.where, cause: err}
		}
	}

	return &Plan{
		text:   text,
		typ:    stmt.typ,
		pred:   pred,
		fields: fields,
	}, nil
}
