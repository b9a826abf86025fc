package query

import "strings"

// statement is the parsed, unresolved form of a query.
type statement struct {
	fields   []string
	typ      string
	where    string
	hasWhere bool
}

type parser struct {
	input string
	lexer *lexer
	cur   token
	peek  token
}

func newParser(input string) *parser {
	p := &parser{input: input, lexer: newLexer(input)}
	// Read two tokens to set up cur and peek.
	p.advance()
	p.advance()
	return p
}

func (p *parser) advance() {
	p.cur = p.peek
	p.peek = p.lexer.next()
}

func (p *parser) expectKeyword(kw string) error {
	if p.cur.typ != tokenKeyword || p.cur.val != kw {
		return &SyntaxError{Pos: p.cur.pos, Msg: "expected " + kw + ", got " + p.cur.String()}
	}
	p.advance()
	return nil
}

// SELECT field (, field)* FROM type [WHERE rest]
func (p *parser) parse() (*statement, error) {
	if err := p.expectKeyword("SELECT"); err != nil {
		return nil, err
	}

	stmt := &statement{}
	if p.cur.typ == tokenKeyword && p.cur.val == "FROM" {
		return nil, ErrEmptyProjection
	}
	for {
		if p.cur.typ != tokenIdentifier {
			return nil, &SyntaxError{Pos: p.cur.pos, Msg: "expected field name, got " + p.cur.String()}
		}
		stmt.fields = append(stmt.fields, p.cur.val)
		p.advance()

		if p.cur.typ != tokenComma {
			break
		}
		p.advance()
	}

	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	if p.cur.typ != tokenIdentifier {
		return nil, &SyntaxError{Pos: p.cur.pos, Msg: "expected type name, got " + p.cur.String()}
	}
	stmt.typ = p.cur.val
	p.advance()

	switch {
	case p.cur.typ == tokenEOF:
	case p.cur.typ == tokenKeyword && p.cur.val == "WHERE":
		// The predicate is opaque here: take the raw remainder of the input.
		stmt.hasWhere = true
		stmt.where = strings.TrimSpace(p.input[p.cur.end:])
	default:
		return nil, &SyntaxError{Pos: p.cur.pos, Msg: "unexpected " + p.cur.String()}
	}
	return stmt, nil
}
