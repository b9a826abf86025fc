package predicate

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokWord
	tokString
	tokColon
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokLBrace
	tokRBrace
	tokGT
	tokGTE
	tokLT
	tokLTE
	tokMinus
)

var tokenNames = map[tokenType]string{
	tokEOF:      "end of input",
	tokWord:     "word",
	tokString:   "quoted string",
	tokColon:    "':'",
	tokLParen:   "'('",
	tokRParen:   "')'",
	tokLBracket: "'['",
	tokRBracket: "']'",
	tokLBrace:   "'{'",
	tokRBrace:   "'}'",
	tokGT:       "'>'",
	tokGTE:      "'>='",
	tokLT:       "'<'",
	tokLTE:      "'<='",
	tokMinus:    "'-'",
}

func (t tokenType) String() string { return tokenNames[t] }

type token struct {
	typ tokenType
	val string
	pos int
}

func (t token) is(keyword string) bool {
	return t.typ == tokWord && t.val == keyword
}

type lexer struct {
	input string
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

func (l *lexer) next() (token, error) {
	l.skipWhitespace()
	if l.pos >= len(l.input) {
		return token{typ: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	ch := l.input[l.pos]

	switch ch {
	case '\'', '"':
		return l.scanString(ch)
	case ':':
		return l.symbol(tokColon, 1), nil
	case '(':
		return l.symbol(tokLParen, 1), nil
	case ')':
		return l.symbol(tokRParen, 1), nil
	case '[':
		return l.symbol(tokLBracket, 1), nil
	case ']':
		return l.symbol(tokRBracket, 1), nil
	case '{':
		return l.symbol(tokLBrace, 1), nil
	case '}':
		return l.symbol(tokRBrace, 1), nil
	case '>':
		if l.peekByte(1) == '=' {
			return l.symbol(tokGTE, 2), nil
		}
		return l.symbol(tokGT, 1), nil
	case '<':
		if l.peekByte(1) == '=' {
			return l.symbol(tokLTE, 2), nil
		}
		return l.symbol(tokLT, 1), nil
	case '=':
		return token{}, &SyntaxError{Pos: start, Msg: "unexpected '='"}
	case '-':
		// A leading minus negates the clause unless it starts a number.
		if next := l.peekByte(1); !(next >= '0' && next <= '9') && next != '.' {
			return l.symbol(tokMinus, 1), nil
		}
	}

	return l.scanWord(), nil
}

func (l *lexer) symbol(typ tokenType, width int) token {
	t := token{typ: typ, val: l.input[l.pos : l.pos+width], pos: l.pos}
	l.pos += width
	return t
}

func (l *lexer) peekByte(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
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

func (l *lexer) scanWord() token {
	start := l.pos
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if unicode.IsSpace(r) || strings.ContainsRune(`:()[]{}'"<>=`, r) {
			break
		}
		l.pos += size
	}
	return token{typ: tokWord, val: l.input[start:l.pos], pos: start}
}

func (l *lexer) scanString(quote byte) (token, error) {
	start := l.pos
	l.pos++

	var sb strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch ch {
		case '\\':
			if l.pos+1 >= len(l.input) {
				return token{}, &SyntaxError{Pos: l.pos, Msg: "dangling escape"}
			}
			sb.WriteByte(l.input[l.pos+1])
			l.pos += 2
		case quote:
			l.pos++
			return token{typ: tokString, val: sb.String(), pos: start}, nil
		default:
			sb.WriteByte(ch)
			l.pos++
		}
	}
	return token{}, &SyntaxError{Pos: start, Msg: "unterminated string"}
}
