// parser.go — recursive-descent parser.
//
// The parser consumes the Lexer's token stream through the Expect
// family and builds the Statement tree. Internally it panics with
// *LexerError on any mismatch; ParseProgram and Parse recover that
// panic into an ordinary error, so callers never see it.
//
// Convention throughout: every parse method consumes exactly the tokens
// of its production and leaves CurrentToken at the first token after it.
//
// Classes are resolved at parse time: a class definition enters the
// parser's class table, and a later `Name(args)` expression compiles to
// a NewInstance node bound to that class. Referencing a class before
// its definition is therefore a parse error, same as an unknown parent.
package mython

import (
	"io"
	"strings"
)

type parser struct {
	lex     *Lexer
	classes map[string]*Class
}

// ParseProgram parses a whole program from an already constructed
// lexer and returns its root statement.
func ParseProgram(lex *Lexer) (prog Statement, err error) {
	defer recoverParseError(&err)
	p := &parser{lex: lex, classes: map[string]*Class{}}
	return p.parseProgram(), nil
}

// Parse reads a whole program from input. Unlike ParseProgram it also
// covers lexer construction, so a malformed literal in the very first
// token surfaces as an error, not a panic.
func Parse(input io.Reader) (Statement, error) {
	return parseWithClasses(input, map[string]*Class{})
}

// parseWithClasses parses against a caller-owned class table, letting
// the Interpreter resolve classes defined by an earlier input. A failed
// parse may leave classes it got to in the table; that matches the
// no-rollback rule for closures.
func parseWithClasses(input io.Reader, classes map[string]*Class) (prog Statement, err error) {
	defer recoverParseError(&err)
	p := &parser{lex: NewLexer(input), classes: classes}
	return p.parseProgram(), nil
}

// ParseString parses source held in a string.
func ParseString(src string) (Statement, error) {
	return Parse(strings.NewReader(src))
}

func recoverParseError(err *error) {
	if r := recover(); r != nil {
		le, ok := r.(*LexerError)
		if !ok {
			panic(r)
		}
		*err = le
	}
}

// ----- token helpers -----

func (p *parser) must(tt TokenType) Token {
	tok, err := p.lex.Expect(tt)
	if err != nil {
		panic(err)
	}
	return tok
}

func (p *parser) mustChar(ch byte) {
	if err := p.lex.ExpectChar(ch); err != nil {
		panic(err)
	}
}

func (p *parser) isChar(ch byte) bool {
	t := p.lex.CurrentToken()
	return t.Type == CHAR && t.Ch == ch
}

func (p *parser) errf(format string, args ...any) *LexerError {
	return p.lex.lexErrorf(format, args...)
}

// ----- statements -----

func (p *parser) parseProgram() Statement {
	prog := NewCompound()
	for p.lex.CurrentToken().Type != EOF {
		if p.lex.CurrentToken().Type == NEWLINE {
			p.lex.NextToken()
			continue
		}
		prog.AddStatement(p.parseStatement())
	}
	return prog
}

func (p *parser) parseStatement() Statement {
	switch p.lex.CurrentToken().Type {
	case CLASS:
		return p.parseClassDefinition()
	case IF:
		return p.parseCondition()
	default:
		st := p.parseSimpleStatement()
		p.must(NEWLINE)
		p.lex.NextToken()
		return st
	}
}

// parseSimpleStatement parses a one-line statement without its
// terminating NEWLINE.
func (p *parser) parseSimpleStatement() Statement {
	switch p.lex.CurrentToken().Type {
	case RETURN:
		p.lex.NextToken()
		return NewReturn(p.parseExpression())
	case PRINT:
		p.lex.NextToken()
		if p.lex.CurrentToken().Type == NEWLINE {
			return NewPrint()
		}
		args := []Statement{p.parseExpression()}
		for p.isChar(',') {
			p.lex.NextToken()
			args = append(args, p.parseExpression())
		}
		return NewPrint(args...)
	default:
		return p.parseAssignmentOrExpression()
	}
}

// parseAssignmentOrExpression parses an expression; when it turns out
// to be a plain name chain followed by `=`, the statement is an
// assignment to that chain instead.
func (p *parser) parseAssignmentOrExpression() Statement {
	expr := p.parseExpression()
	vv, ok := expr.(*VariableValue)
	if !ok || !p.isChar('=') {
		return expr
	}
	p.lex.NextToken()
	rv := p.parseExpression()
	if len(vv.ids) == 1 {
		return NewAssignment(vv.ids[0], rv)
	}
	last := len(vv.ids) - 1
	return NewFieldAssignment(NewVariableValue(vv.ids[:last]...), vv.ids[last], rv)
}

// parseClassDefinition parses
//
//	class Name [ ( Parent ) ] :
//	  def method...
//
// and records the class in the table for later instantiation.
func (p *parser) parseClassDefinition() Statement {
	p.must(CLASS)
	p.lex.NextToken()
	name := p.must(ID).Text
	p.lex.NextToken()

	var parent *Class
	if p.isChar('(') {
		p.lex.NextToken()
		parentName := p.must(ID).Text
		p.lex.NextToken()
		p.mustChar(')')
		p.lex.NextToken()
		parent = p.classes[parentName]
		if parent == nil {
			panic(p.errf("unknown parent class: %s", parentName))
		}
	}

	p.mustChar(':')
	p.lex.NextToken()
	p.must(NEWLINE)
	p.lex.NextToken()
	p.must(INDENT)
	p.lex.NextToken()

	// Registered before the bodies parse so a method can instantiate
	// its own class.
	cls := NewClass(name, nil, parent)
	p.classes[name] = cls

	var methods []Method
	for {
		if p.lex.CurrentToken().Type == NEWLINE {
			p.lex.NextToken()
			continue
		}
		if p.lex.CurrentToken().Type != DEF {
			break
		}
		methods = append(methods, p.parseMethod())
	}
	p.must(DEDENT)
	p.lex.NextToken()

	cls.methods = methods
	return NewClassDefinition(Own(cls))
}

// parseMethod parses `def name(params) : suite`. A leading self
// parameter is declaration syntax only: it is stripped from the formal
// list, does not count toward call arity, and the runtime injects the
// receiver into every call frame under that name.
func (p *parser) parseMethod() Method {
	p.must(DEF)
	p.lex.NextToken()
	name := p.must(ID).Text
	p.lex.NextToken()

	p.mustChar('(')
	p.lex.NextToken()
	var params []string
	if p.lex.CurrentToken().Type == ID {
		for {
			params = append(params, p.must(ID).Text)
			p.lex.NextToken()
			if !p.isChar(',') {
				break
			}
			p.lex.NextToken()
		}
	}
	p.mustChar(')')
	p.lex.NextToken()
	p.mustChar(':')
	p.lex.NextToken()

	if len(params) > 0 && params[0] == "self" {
		params = params[1:]
	}
	return Method{Name: name, FormalParams: params, Body: NewMethodBody(p.parseSuite())}
}

// parseCondition parses `if expr : suite [ else : suite ]`.
func (p *parser) parseCondition() Statement {
	p.must(IF)
	p.lex.NextToken()
	condition := p.parseExpression()
	p.mustChar(':')
	p.lex.NextToken()
	ifBody := p.parseSuite()

	var elseBody Statement
	if p.lex.CurrentToken().Type == ELSE {
		p.lex.NextToken()
		p.mustChar(':')
		p.lex.NextToken()
		elseBody = p.parseSuite()
	}
	return NewIfElse(condition, ifBody, elseBody)
}

// parseSuite parses the body after a colon: either an indented block or
// a single statement on the same line.
func (p *parser) parseSuite() Statement {
	if p.lex.CurrentToken().Type == NEWLINE {
		p.lex.NextToken()
		p.must(INDENT)
		p.lex.NextToken()
		body := NewCompound()
		for p.lex.CurrentToken().Type != DEDENT && p.lex.CurrentToken().Type != EOF {
			if p.lex.CurrentToken().Type == NEWLINE {
				p.lex.NextToken()
				continue
			}
			body.AddStatement(p.parseStatement())
		}
		p.must(DEDENT)
		p.lex.NextToken()
		return body
	}
	st := p.parseSimpleStatement()
	p.must(NEWLINE)
	p.lex.NextToken()
	return st
}

// ----- expressions -----
//
// Precedence, loosest first: or, and, not, comparison (non-associative),
// + -, * /, unary minus, postfix calls, primary.

func (p *parser) parseExpression() Statement {
	return p.parseOr()
}

func (p *parser) parseOr() Statement {
	lhs := p.parseAnd()
	for p.lex.CurrentToken().Type == OR {
		p.lex.NextToken()
		lhs = NewOr(lhs, p.parseAnd())
	}
	return lhs
}

func (p *parser) parseAnd() Statement {
	lhs := p.parseNot()
	for p.lex.CurrentToken().Type == AND {
		p.lex.NextToken()
		lhs = NewAnd(lhs, p.parseNot())
	}
	return lhs
}

func (p *parser) parseNot() Statement {
	if p.lex.CurrentToken().Type == NOT {
		p.lex.NextToken()
		return NewNot(p.parseNot())
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() Statement {
	lhs := p.parseAdditive()
	var cmp Comparator
	switch t := p.lex.CurrentToken(); {
	case t.Type == EQ:
		cmp = Equal
	case t.Type == NEQ:
		cmp = NotEqual
	case t.Type == LESS_EQ:
		cmp = LessOrEqual
	case t.Type == GREATER_EQ:
		cmp = GreaterOrEqual
	case p.isChar('<'):
		cmp = Less
	case p.isChar('>'):
		cmp = Greater
	default:
		return lhs
	}
	p.lex.NextToken()
	return NewComparison(cmp, lhs, p.parseAdditive())
}

func (p *parser) parseAdditive() Statement {
	lhs := p.parseTerm()
	for {
		switch {
		case p.isChar('+'):
			p.lex.NextToken()
			lhs = NewAdd(lhs, p.parseTerm())
		case p.isChar('-'):
			p.lex.NextToken()
			lhs = NewSub(lhs, p.parseTerm())
		default:
			return lhs
		}
	}
}

func (p *parser) parseTerm() Statement {
	lhs := p.parseUnary()
	for {
		switch {
		case p.isChar('*'):
			p.lex.NextToken()
			lhs = NewMult(lhs, p.parseUnary())
		case p.isChar('/'):
			p.lex.NextToken()
			lhs = NewDiv(lhs, p.parseUnary())
		default:
			return lhs
		}
	}
}

// parseUnary desugars `-x` to `0 - x`.
func (p *parser) parseUnary() Statement {
	if p.isChar('-') {
		p.lex.NextToken()
		return NewSub(NewNumericConst(0), p.parseUnary())
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary and any trailing dot chain on it:
// `.name(args)` is a method call on whatever came before, a bare
// `.name` extends a variable chain with a field access.
func (p *parser) parsePostfix() Statement {
	base := p.parsePrimary()
	for p.isChar('.') {
		p.lex.NextToken()
		name := p.must(ID).Text
		p.lex.NextToken()
		if p.isChar('(') {
			base = NewMethodCall(base, name, p.parseArgs()...)
			continue
		}
		vv, ok := base.(*VariableValue)
		if !ok {
			panic(p.errf("expected ( after method name %s", name))
		}
		base = NewVariableValue(append(append([]string{}, vv.ids...), name)...)
	}
	return base
}

func (p *parser) parsePrimary() Statement {
	switch t := p.lex.CurrentToken(); t.Type {
	case NUMBER:
		p.lex.NextToken()
		return NewNumericConst(t.Number)
	case STRING:
		p.lex.NextToken()
		return NewStringConst(t.Text)
	case TRUE:
		p.lex.NextToken()
		return NewBoolConst(true)
	case FALSE:
		p.lex.NextToken()
		return NewBoolConst(false)
	case NONE:
		p.lex.NextToken()
		return NewNoneConst()
	case CHAR:
		if t.Ch == '(' {
			p.lex.NextToken()
			expr := p.parseExpression()
			p.mustChar(')')
			p.lex.NextToken()
			return expr
		}
	case ID:
		name := t.Text
		p.lex.NextToken()
		if name == "str" && p.isChar('(') {
			p.lex.NextToken()
			expr := p.parseExpression()
			p.mustChar(')')
			p.lex.NextToken()
			return NewStringify(expr)
		}
		if cls, ok := p.classes[name]; ok && p.isChar('(') {
			return NewInstanceOf(cls, p.parseArgs()...)
		}
		return NewVariableValue(name)
	}
	panic(p.errf("unexpected token %s in expression", p.lex.CurrentToken()))
}

// parseArgs parses a parenthesized, comma-separated argument list.
func (p *parser) parseArgs() []Statement {
	p.mustChar('(')
	p.lex.NextToken()
	var args []Statement
	if !p.isChar(')') {
		for {
			args = append(args, p.parseExpression())
			if !p.isChar(',') {
				break
			}
			p.lex.NextToken()
		}
	}
	p.mustChar(')')
	p.lex.NextToken()
	return args
}
