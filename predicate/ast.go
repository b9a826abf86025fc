package predicate

import (
	"strconv"
	"strings"

	"github.com/hupe1980/quarry/value"
)

// Node is a node of the predicate AST.
type Node interface {
	String() string
	node()
}

// MatchAll matches every entity.
type MatchAll struct{}

// Term matches a field against a single value.
type Term struct {
	Field string
	// Value is the typed literal. Unquoted words that parse as numbers or bools
	// become Int, Float or Bool values.
	Value value.Value
	// Raw is the literal as written. Its tokens are matched against analysed
	// string fields.
	Raw string
}

// Prefix matches fields having a token that starts with Prefix.
type Prefix struct {
	Field  string
	Prefix string
}

// Exists matches fields holding a non-null value.
type Exists struct {
	Field string
}

// Range matches fields whose value lies between the bounds. A nil bound is open.
type Range struct {
	Field        string
	Lower, Upper *value.Value
	IncludeLower bool
	IncludeUpper bool
}

// And matches when every clause matches.
type And struct {
	Clauses []Node
}

// Or matches when any clause matches.
type Or struct {
	Clauses []Node
}

// Not inverts its clause.
type Not struct {
	Clause Node
}

func (MatchAll) node() {}
func (*Term) node()    {}
func (*Prefix) node()  {}
func (*Exists) node()  {}
func (*Range) node()   {}
func (*And) node()     {}
func (*Or) node()      {}
func (*Not) node()     {}

func (MatchAll) String() string { return "*" }

func (t *Term) String() string {
	if t.Value.Kind == value.KindString {
		return t.Field + ":" + quote(t.Raw)
	}
	return t.Field + ":" + t.Raw
}

func (p *Prefix) String() string { return p.Field + ":" + p.Prefix + "*" }

func (e *Exists) String() string { return e.Field + ":*" }

func (r *Range) String() string {
	var sb strings.Builder
	sb.WriteString(r.Field)
	sb.WriteByte(':')
	if r.IncludeLower {
		sb.WriteByte('[')
	} else {
		sb.WriteByte('{')
	}
	sb.WriteString(bound(r.Lower))
	sb.WriteString(" TO ")
	sb.WriteString(bound(r.Upper))
	if r.IncludeUpper {
		sb.WriteByte(']')
	} else {
		sb.WriteByte('}')
	}
	return sb.String()
}

func (a *And) String() string { return join(a.Clauses, " AND ") }

func (o *Or) String() string { return join(o.Clauses, " OR ") }

func (n *Not) String() string { return "NOT " + group(n.Clause) }

// Fields returns the distinct field names referenced by n in first-seen order.
func Fields(n Node) []string {
	var out []string
	seen := map[string]struct{}{}
	add := func(f string) {
		if _, ok := seen[f]; !ok {
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}

	var walk func(Node)
	walk = func(n Node) {
		switch x := n.(type) {
		case *Term:
			add(x.Field)
		case *Prefix:
			add(x.Field)
		case *Exists:
			add(x.Field)
		case *Range:
			add(x.Field)
		case *And:
			for _, c := range x.Clauses {
				walk(c)
			}
		case *Or:
			for _, c := range x.Clauses {
				walk(c)
			}
		case *Not:
			walk(x.Clause)
		}
	}
	walk(n)
	return out
}

func join(clauses []Node, sep string) string {
	parts := make([]string, len(clauses))
	for i, c := range clauses {
		parts[i] = group(c)
	}
	return strings.Join(parts, sep)
}

func group(n Node) string {
	switch n.(type) {
	case *And, *Or:
		return "(" + n.String() + ")"
	}
	return n.String()
}

func bound(v *value.Value) string {
	if v == nil {
		return "*"
	}
	if v.Kind == value.KindString {
		return quote(v.StringValue())
	}
	return v.String()
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), "'", `\'`) + "'"
}

// literal converts an unquoted word into a typed value.
func literal(word string) value.Value {
	switch word {
	case "true":
		return value.Bool(true)
	case "false":
		return value.Bool(false)
	case "null":
		return value.Null()
	}
	if i, err := strconv.ParseInt(word, 10, 64); err == nil {
		return value.Int(i)
	}
	if numeric(word) {
		if f, err := strconv.ParseFloat(word, 64); err == nil {
			return value.Float(f)
		}
	}
	return value.String(word)
}

func numeric(word string) bool {
	digits := false
	for _, r := range word {
		switch {
		case r >= '0' && r <= '9':
			digits = true
		case r == '.' || r == 'e' || r == 'E' || r == '+' || r == '-':
		default:
			return false
		}
	}
	return digits
}
