package predicate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/quarry/value"
)

// ErrSyntax is matched by every SyntaxError.
var ErrSyntax = errors.New("predicate syntax error")

// SyntaxError reports malformed predicate text.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("predicate: %s at offset %d", e.Msg, e.Pos)
}

// Unwrap returns ErrSyntax.
func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// Parse parses predicate text into an AST.
func Parse(input string) (Node, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &SyntaxError{Pos: 0, Msg: "empty predicate"}
	}

	p, err := newParser(newLexer(input))
	if err != nil {
		return nil, err
	}

	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur.typ != tokEOF {
		return nil, p.unexpected()
	}
	return n, nil
}

// MustParse is like Parse but panics on error.
func MustParse(input string) Node {
	n, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return n
}

type parser struct {
	lexer *lexer
	cur   token
	peek  token
}

func newParser(l *lexer) (*parser, error) {
	p := &parser{lexer: l}
	// Read two tokens to set up cur and peek.
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) advance() error {
	p.cur = p.peek
	t, err := p.lexer.next()
	if err != nil {
		return err
	}
	p.peek = t
	return nil
}

func (p *parser) expect(typ tokenType) (token, error) {
	if p.cur.typ != typ {
		return token{}, &SyntaxError{Pos: p.cur.pos, Msg: fmt.Sprintf("expected %s, got %s", typ, describe(p.cur))}
	}
	t := p.cur
	return t, p.advance()
}

func (p *parser) unexpected() error {
	return &SyntaxError{Pos: p.cur.pos, Msg: "unexpected " + describe(p.cur)}
}

func describe(t token) string {
	if t.typ == tokWord || t.typ == tokString {
		return fmt.Sprintf("%s %q", t.typ, t.val)
	}
	return t.typ.String()
}

// orExpr := andExpr (OR andExpr)*
func (p *parser) parseOr() (Node, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	clauses := []Node{first}
	for p.cur.is("OR") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		n, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, n)
	}
	if len(clauses) == 1 {
		return first, nil
	}
	return &Or{Clauses: clauses}, nil
}

// andExpr := unary ((AND)? unary)*
func (p *parser) parseAnd() (Node, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	clauses := []Node{first}
	for p.cur.typ != tokEOF && p.cur.typ != tokRParen && !p.cur.is("OR") {
		if p.cur.is("AND") {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		n, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, n)
	}
	if len(clauses) == 1 {
		return first, nil
	}
	return &And{Clauses: clauses}, nil
}

// unary := (NOT | '-') unary | primary
func (p *parser) parseUnary() (Node, error) {
	if p.cur.is("NOT") || p.cur.typ == tokMinus {
		if err := p.advance(); err != nil {
			return nil, err
		}
		n, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Not{Clause: n}, nil
	}
	return p.parsePrimary()
}

// primary := '(' orExpr ')' | '*' | field ':' value
func (p *parser) parsePrimary() (Node, error) {
	switch {
	case p.cur.typ == tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return n, nil
	case p.cur.is("*"):
		return MatchAll{}, p.advance()
	case p.cur.typ == tokWord && !isKeyword(p.cur.val):
		field := p.cur.val
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(tokColon); err != nil {
			return nil, err
		}
		return p.parseValue(field)
	default:
		return nil, p.unexpected()
	}
}

func (p *parser) parseValue(field string) (Node, error) {
	switch p.cur.typ {
	case tokString:
		t := p.cur
		return &Term{Field: field, Value: value.String(t.val), Raw: t.val}, p.advance()
	case tokWord:
		t := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		switch {
		case t.val == "*":
			return &Exists{Field: field}, nil
		case strings.HasSuffix(t.val, "*"):
			prefix := strings.TrimRight(t.val, "*")
			if strings.Contains(prefix, "*") {
				return nil, &SyntaxError{Pos: t.pos, Msg: "wildcard is only supported as a suffix"}
			}
			return &Prefix{Field: field, Prefix: strings.ToLower(prefix)}, nil
		case strings.Contains(t.val, "*"):
			return nil, &SyntaxError{Pos: t.pos, Msg: "wildcard is only supported as a suffix"}
		}
		return &Term{Field: field, Value: literal(t.val), Raw: t.val}, nil
	case tokGT, tokGTE, tokLT, tokLTE:
		op := p.cur.typ
		if err := p.advance(); err != nil {
			return nil, err
		}
		v, err := p.parseBound(false)
		if err != nil {
			return nil, err
		}
		r := &Range{Field: field}
		switch op {
		case tokGT:
			r.Lower = v
		case tokGTE:
			r.Lower, r.IncludeLower = v, true
		case tokLT:
			r.Upper = v
		case tokLTE:
			r.Upper, r.IncludeUpper = v, true
		}
		return r, nil
	case tokLBracket, tokLBrace:
		return p.parseRange(field)
	default:
		return nil, p.unexpected()
	}
}

// range := ('[' | '{') bound TO bound (']' | '}')
func (p *parser) parseRange(field string) (Node, error) {
	r := &Range{Field: field, IncludeLower: p.cur.typ == tokLBracket}
	if err := p.advance(); err != nil {
		return nil, err
	}

	lower, err := p.parseBound(true)
	if err != nil {
		return nil, err
	}
	if !p.cur.is("TO") {
		return nil, &SyntaxError{Pos: p.cur.pos, Msg: "expected TO, got " + describe(p.cur)}
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	upper, err := p.parseBound(true)
	if err != nil {
		return nil, err
	}

	switch p.cur.typ {
	case tokRBracket:
		r.IncludeUpper = true
	case tokRBrace:
	default:
		return nil, &SyntaxError{Pos: p.cur.pos, Msg: "expected ']' or '}', got " + describe(p.cur)}
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	r.Lower, r.Upper = lower, upper
	return r, nil
}

func (p *parser) parseBound(allowOpen bool) (*value.Value, error) {
	t := p.cur
	var v value.Value
	switch {
	case t.typ == tokString:
		v = value.String(t.val)
	case t.typ == tokWord && t.val == "*":
		if !allowOpen {
			return nil, &SyntaxError{Pos: t.pos, Msg: "open bound is only allowed inside a range"}
		}
		return nil, p.advance()
	case t.typ == tokWord && !isKeyword(t.val):
		v = literal(t.val)
	default:
		return nil, &SyntaxError{Pos: t.pos, Msg: "expected bound, got " + describe(t)}
	}
	if v.IsNull() {
		return nil, &SyntaxError{Pos: t.pos, Msg: "null is not a valid bound"}
	}
	return &v, p.advance()
}

func isKeyword(word string) bool {
	switch word {
	case "AND", "OR", "NOT", "TO":
		return true
	}
	return false
}
