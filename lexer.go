// lexer.go — indentation-aware lexer for Mython.
//
// The lexer turns a raw byte stream into a token stream in which blocks
// are explicit: it measures leading spaces in two-space units and emits
// synthetic INDENT/DEDENT tokens around NEWLINE so the parser never has
// to look at whitespace. Construction eagerly produces the first token;
// CurrentToken peeks at it and NextToken advances.
//
// Indentation bookkeeping lives in two counters: `indent` is the number
// of currently open indent units, `pending` is the signed number of
// synthetic tokens still owed (positive for INDENT, negative for
// DEDENT). Every call drains `pending` before touching the input, which
// keeps the stream well bracketed: by EOF the lexer has emitted exactly
// as many DEDENTs as INDENTs, and the last content token is NEWLINE.
//
// Malformed literals (a string left open at EOF) panic with *LexerError;
// ParseProgram converts that panic into an ordinary error.
package mython

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// TokenType represents the kind of token.
type TokenType int

const (
	EOF TokenType = iota

	// Payload-carrying kinds
	NUMBER // decimal integer literal
	ID     // identifier
	STRING // string literal, escapes already decoded
	CHAR   // single punctuation byte: ( ) * + , - . / : and standalone = < > !

	// Keywords
	CLASS
	RETURN
	IF
	ELSE
	DEF
	PRINT
	AND
	OR
	NOT
	NONE
	TRUE
	FALSE

	// Structure
	NEWLINE
	INDENT
	DEDENT

	// Two-char operators
	EQ         // ==
	NEQ        // !=
	LESS_EQ    // <=
	GREATER_EQ // >=
)

var tokenNames = [...]string{
	EOF:        "Eof",
	NUMBER:     "Number",
	ID:         "Id",
	STRING:     "String",
	CHAR:       "Char",
	CLASS:      "Class",
	RETURN:     "Return",
	IF:         "If",
	ELSE:       "Else",
	DEF:        "Def",
	PRINT:      "Print",
	AND:        "And",
	OR:         "Or",
	NOT:        "Not",
	NONE:       "None",
	TRUE:       "True",
	FALSE:      "False",
	NEWLINE:    "Newline",
	INDENT:     "Indent",
	DEDENT:     "Dedent",
	EQ:         "Eq",
	NEQ:        "NotEq",
	LESS_EQ:    "LessOrEq",
	GREATER_EQ: "GreaterOrEq",
}

func (tt TokenType) String() string {
	if int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a lexical token. Only the payload field matching Type is set,
// so tokens compare correctly with ==.
type Token struct {
	Type   TokenType
	Number int    // NUMBER payload
	Text   string // ID and STRING payload
	Ch     byte   // CHAR payload
}

func (t Token) String() string {
	switch t.Type {
	case NUMBER:
		return fmt.Sprintf("Number{%d}", t.Number)
	case ID:
		return fmt.Sprintf("Id{%s}", t.Text)
	case STRING:
		return fmt.Sprintf("String{%s}", t.Text)
	case CHAR:
		return fmt.Sprintf("Char{%c}", t.Ch)
	default:
		return t.Type.String()
	}
}

// Payload token constructors, used by the parser and tests.
func NumberToken(n int) Token    { return Token{Type: NUMBER, Number: n} }
func IDToken(s string) Token     { return Token{Type: ID, Text: s} }
func StringToken(s string) Token { return Token{Type: STRING, Text: s} }
func CharToken(c byte) Token     { return Token{Type: CHAR, Ch: c} }

// keywords map
var keywords = map[string]TokenType{
	"class":  CLASS,
	"return": RETURN,
	"if":     IF,
	"else":   ELSE,
	"def":    DEF,
	"print":  PRINT,
	"and":    AND,
	"or":     OR,
	"not":    NOT,
	"None":   NONE,
	"True":   TRUE,
	"False":  FALSE,
}

// byte classifiers

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }

// isSymbol reports the single-char punctuation set: byte values 40-47,
// that is ( ) * + , - . / plus 58 (colon).
func isSymbol(b byte) bool { return (b >= '(' && b <= '/') || b == ':' }

func isCompareSymbol(b byte) bool { return b == '=' || b == '<' || b == '>' || b == '!' }

// Lexer scans Mython source from a byte stream.
type Lexer struct {
	rd      *bufio.Reader
	cur     Token // most recently produced token
	pending int   // synthetic tokens owed: >0 INDENT, <0 DEDENT
	indent  int   // open indent units
	first   bool  // no token produced yet
	eof     bool  // input exhausted; current tokens are the synthetic tail
	line    int   // 1-based, for error messages only
	col     int
}

// NewLexer creates a lexer over input and eagerly produces the first
// token. A malformed leading literal panics with *LexerError; use
// ParseProgram (or recover yourself) when the input is untrusted.
func NewLexer(input io.Reader) *Lexer {
	l := &Lexer{rd: bufio.NewReader(input), first: true, line: 1}
	l.NextToken()
	return l
}

// CurrentToken returns the most recently produced token without advancing.
func (l *Lexer) CurrentToken() Token { return l.cur }

// NextToken advances the stream and returns the new current token.
func (l *Lexer) NextToken() Token {
	tok := l.scan()
	l.cur = tok
	l.first = false
	return tok
}

// Expect checks that the current token has kind tt and returns it;
// otherwise it reports a *LexerError.
func (l *Lexer) Expect(tt TokenType) (Token, error) {
	if l.cur.Type != tt {
		return Token{}, l.lexErrorf("expected %s, got %s", tt, l.cur)
	}
	return l.cur, nil
}

// ExpectChar checks that the current token is Char(ch).
func (l *Lexer) ExpectChar(ch byte) error {
	if l.cur.Type != CHAR || l.cur.Ch != ch {
		return l.lexErrorf("expected Char{%c}, got %s", ch, l.cur)
	}
	return nil
}

// ExpectID checks that the current token is Id(name).
func (l *Lexer) ExpectID(name string) error {
	if l.cur.Type != ID || l.cur.Text != name {
		return l.lexErrorf("expected Id{%s}, got %s", name, l.cur)
	}
	return nil
}

// ExpectNext advances first, then checks like Expect.
func (l *Lexer) ExpectNext(tt TokenType) (Token, error) {
	l.NextToken()
	return l.Expect(tt)
}

// ExpectNextChar advances first, then checks like ExpectChar.
func (l *Lexer) ExpectNextChar(ch byte) error {
	l.NextToken()
	return l.ExpectChar(ch)
}

func (l *Lexer) lexErrorf(format string, args ...any) *LexerError {
	return &LexerError{
		Line:  l.line,
		Col:   l.col,
		Msg:   fmt.Sprintf(format, args...),
		AtEOF: l.eof,
	}
}

// ----- input primitives -----

func (l *Lexer) peekByte() (byte, bool) {
	b, err := l.rd.Peek(1)
	if err != nil {
		return 0, false
	}
	return b[0], true
}

func (l *Lexer) readByte() (byte, bool) {
	b, err := l.rd.ReadByte()
	if err != nil {
		return 0, false
	}
	if b == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return b, true
}

// ----- main scanner -----

func (l *Lexer) scan() Token {
	for {
		// Drain owed synthetic tokens before reading anything.
		if l.pending > 0 {
			l.pending--
			l.indent++
			return Token{Type: INDENT}
		}
		if l.pending < 0 {
			l.pending++
			l.indent--
			return Token{Type: DEDENT}
		}

		c, ok := l.peekByte()
		if !ok {
			l.eof = true
			return l.finish()
		}

		switch {
		case c == '#':
			l.skipComment()

		case c == '"' || c == '\'':
			l.readByte()
			return l.scanString(c)

		case isDigit(c):
			return l.scanNumber()

		case isAlpha(c):
			return l.scanIDOrKeyword()

		case isCompareSymbol(c):
			return l.scanCompare()

		case isSymbol(c):
			l.readByte()
			return Token{Type: CHAR, Ch: c}

		case c == '\n':
			l.readByte()
			if l.cur.Type == NEWLINE || l.first {
				continue // swallow blank-line newlines
			}
			for {
				b, ok := l.peekByte()
				if !ok || b != '\n' {
					break
				}
				l.readByte()
			}
			// A non-indented (or absent) next line closes every open block.
			if b, ok := l.peekByte(); (!ok || b != ' ') && l.indent > 0 {
				l.pending = -l.indent
			}
			return Token{Type: NEWLINE}

		case c == ' ':
			if l.cur.Type == NEWLINE {
				l.pending = l.countIndent() - l.indent
			} else {
				l.skipSpaces() // mid-line whitespace is insignificant
			}

		default:
			// Bytes the language does not use (tabs, carriage returns).
			l.readByte()
		}
	}
}

// finish produces the end-of-stream tail: a final NEWLINE if the last
// line lacked one, then the DEDENTs closing open blocks, then EOF
// forever.
func (l *Lexer) finish() Token {
	if l.cur.Type != NEWLINE && l.cur.Type != DEDENT && l.cur.Type != EOF && !l.first {
		return Token{Type: NEWLINE}
	}
	if l.indent > 0 {
		l.indent--
		return Token{Type: DEDENT}
	}
	return Token{Type: EOF}
}

func (l *Lexer) skipComment() {
	for {
		b, ok := l.peekByte()
		if !ok || b == '\n' {
			return
		}
		l.readByte()
	}
}

func (l *Lexer) skipSpaces() {
	for {
		b, ok := l.peekByte()
		if !ok || b != ' ' {
			return
		}
		l.readByte()
	}
}

// countIndent measures the leading spaces of a fresh line in two-space
// units, remainder ignored. A line holding only spaces contributes zero.
func (l *Lexer) countIndent() int {
	n := 0
	for {
		b, ok := l.peekByte()
		if !ok || b != ' ' {
			break
		}
		l.readByte()
		n++
	}
	if b, ok := l.peekByte(); ok && b == '\n' {
		return 0
	}
	return n / 2
}

// scanString consumes a literal up to the matching quote. Recognized
// escapes are \n \t \r \\ \" \'; an unknown escape is dropped. EOF
// before the closing quote is a hard lexer error.
func (l *Lexer) scanString(quote byte) Token {
	var sb strings.Builder
	for {
		c, ok := l.readByte()
		if !ok {
			panic(l.lexErrorAtEOF("string literal was not terminated"))
		}
		if c == quote {
			return Token{Type: STRING, Text: sb.String()}
		}
		if c == '\\' {
			e, ok := l.readByte()
			if !ok {
				panic(l.lexErrorAtEOF("unfinished escape sequence"))
			}
			switch e {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case '\'':
				sb.WriteByte('\'')
			}
			continue
		}
		sb.WriteByte(c)
	}
}

func (l *Lexer) lexErrorAtEOF(msg string) *LexerError {
	return &LexerError{Line: l.line, Col: l.col, Msg: msg, AtEOF: true}
}

func (l *Lexer) scanNumber() Token {
	var sb strings.Builder
	for {
		b, ok := l.peekByte()
		if !ok || !isDigit(b) {
			break
		}
		l.readByte()
		sb.WriteByte(b)
	}
	n, err := strconv.Atoi(sb.String())
	if err != nil {
		panic(l.lexErrorf("invalid integer literal %q", sb.String()))
	}
	return Token{Type: NUMBER, Number: n}
}

// scanIDOrKeyword consumes a maximal identifier literal: everything up
// to whitespace, '#', a punctuation symbol, or a compare operator.
func (l *Lexer) scanIDOrKeyword() Token {
	var sb strings.Builder
	for {
		b, ok := l.peekByte()
		if !ok {
			break
		}
		if b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == '#' ||
			isSymbol(b) || isCompareSymbol(b) {
			break
		}
		l.readByte()
		sb.WriteByte(b)
	}
	s := sb.String()
	if tt, ok := keywords[s]; ok {
		return Token{Type: tt}
	}
	return Token{Type: ID, Text: s}
}

func (l *Lexer) scanCompare() Token {
	c, _ := l.readByte()
	if b, ok := l.peekByte(); ok && b == '=' {
		l.readByte()
		switch c {
		case '=':
			return Token{Type: EQ}
		case '!':
			return Token{Type: NEQ}
		case '<':
			return Token{Type: LESS_EQ}
		case '>':
			return Token{Type: GREATER_EQ}
		}
	}
	return Token{Type: CHAR, Ch: c}
}
