package query

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenKeyword
	tokenIdentifier
	tokenComma
	tokenSymbol
)

type token struct {
	typ tokenType
	val string
	pos int
	end int
}

func (t token) String() string {
	switch t.typ {
	case tokenEOF:
		return "end of input"
	case tokenKeyword:
		return t.val
	default:
		return "'" + t.val + "'"
	}
}

type lexer struct {
	input string
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

func (l *lexer) next() token {
	l.skipWhitespace()
	if l.pos >= len(l.input) {
		return token{typ: tokenEOF, pos: l.pos, end: l.pos}
	}

	start := l.pos
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	if isIdentRune(r) {
		return l.scanIdentifier()
	}

	l.pos += size
	if r == ',' {
		return token{typ: tokenComma, val: ",", pos: start, end: l.pos}
	}
	return token{typ: tokenSymbol, val: string(r), pos: start, end: l.pos}
}

func (l *lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

func (l *lexer) scanIdentifier() token {
	start := l.pos
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !isIdentRune(r) {
			break
		}
		l.pos += size
	}
	val := l.input[start:l.pos]

	switch kw := strings.ToUpper(val); kw {
	case "SELECT", "FROM", "WHERE":
		return token{typ: tokenKeyword, val: kw, pos: start, end: l.pos}
	}
	return token{typ: tokenIdentifier, val: val, pos: start, end: l.pos}
}

// isIdentRune accepts qualified names such as org.example.Outer$Inner.
func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$' || r == '.'
}
