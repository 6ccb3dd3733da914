// Package parser turns an Aspid token stream into a concrete syntax tree
// via Pratt (precedence-climbing) expression parsing and recursive-descent
// statement parsing, recovering block structure from INDENT/DEDENT.
//
// The prefixParseFn/infixParseFn registration and precedence-climbing loop
// follow the teacher's internal/parser (see expressions.go's
// parseExpression); Aspid's statement grammar (indentation-delimited
// blocks, typed var/fn declarations) is specific to this language.
package parser

import (
	"github.com/aspid-lang/aspid/internal/ast"
	"github.com/aspid-lang/aspid/internal/diag"
	"github.com/aspid-lang/aspid/internal/lexer"
	"github.com/aspid-lang/aspid/internal/token"
)

// Precedence levels, low to high, per §4.2's table.
const (
	LOWEST int = iota
	LOGICAL
	RELATIONAL
	ADDITIVE
	MULTIPLICATIVE
)

var precedences = map[token.Kind]int{
	token.AND_AND: LOGICAL,
	token.OR_OR:   LOGICAL,
	token.EQ:      RELATIONAL,
	token.NEQ:     RELATIONAL,
	token.LT:      RELATIONAL,
	token.LTE:     RELATIONAL,
	token.GT:      RELATIONAL,
	token.GTE:     RELATIONAL,
	token.PLUS:    ADDITIVE,
	token.MINUS:   ADDITIVE,
	token.STAR:    MULTIPLICATIVE,
	token.SLASH:   MULTIPLICATIVE,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser consumes a flat token slice and produces an *ast.Program.
type Parser struct {
	tokens []token.Token
	pos    int

	cur  token.Token
	peek token.Token

	diags []*diag.Diagnostic

	prefixParseFns map[token.Kind]prefixParseFn
	infixParseFns  map[token.Kind]infixParseFn
}

// Parse lexes and parses source in one call, returning the program and any
// lexer or parser diagnostics (lexer diagnostics are fatal and returned
// alone).
func Parse(source string) (*ast.Program, []*diag.Diagnostic) {
	toks, lexErr := lexer.Lex(source)
	if lexErr != nil {
		return nil, []*diag.Diagnostic{lexErr}
	}
	p := New(toks)
	prog := p.ParseProgram()
	return prog, p.diags
}

// New builds a Parser over an already-lexed token stream.
func New(tokens []token.Token) *Parser {
	p := &Parser{tokens: tokens}

	p.prefixParseFns = map[token.Kind]prefixParseFn{
		token.IDENT:       p.parseVariable,
		token.NUMBER:      p.parseNumber,
		token.STRING:      p.parseString,
		token.TRUE:        p.parseBoolean,
		token.FALSE:       p.parseBoolean,
		token.LPAREN:      p.parseParenthesized,
		token.LBRACKET:    p.parseArrayLiteral,
		token.PLUS:        p.parsePrefixUnary,
		token.MINUS:       p.parsePrefixUnary,
		token.BANG:        p.parsePrefixUnary,
		token.PLUS_PLUS:   p.parsePrefixIncDec,
		token.MINUS_MINUS: p.parsePrefixIncDec,
	}

	p.infixParseFns = map[token.Kind]infixParseFn{
		token.PLUS:    p.parseBinary,
		token.MINUS:   p.parseBinary,
		token.STAR:    p.parseBinary,
		token.SLASH:   p.parseBinary,
		token.EQ:      p.parseBinary,
		token.NEQ:     p.parseBinary,
		token.LT:      p.parseBinary,
		token.LTE:     p.parseBinary,
		token.GT:      p.parseBinary,
		token.GTE:     p.parseBinary,
		token.AND_AND: p.parseBinary,
		token.OR_OR:   p.parseBinary,
	}

	if len(tokens) > 0 {
		p.cur = tokens[0]
	}
	if len(tokens) > 1 {
		p.peek = tokens[1]
	}
	p.pos = 1
	return p
}

func (p *Parser) Errors() []*diag.Diagnostic { return p.diags }

func (p *Parser) advance() {
	p.cur = p.peek
	p.pos++
	if p.pos < len(p.tokens) {
		p.peek = p.tokens[p.pos]
	} else {
		p.peek = p.tokens[len(p.tokens)-1] // EOF sentinel, repeats
	}
}

func (p *Parser) curIs(k token.Kind) bool  { return p.cur.Kind == k }
func (p *Parser) peekIs(k token.Kind) bool { return p.peek.Kind == k }

func (p *Parser) expect(k token.Kind) (token.Token, bool) {
	if !p.curIs(k) {
		p.errorf("expected %s, got %s", k, p.cur.Kind)
		return p.cur, false
	}
	t := p.cur
	p.advance()
	return t, true
}

func (p *Parser) errorf(format string, args ...any) {
	p.diags = append(p.diags, diag.New(p.cur.Span.Start, format, args...))
}

// skipNewlines consumes any run of stray NEWLINE tokens.
func (p *Parser) skipNewlines() {
	for p.curIs(token.NEWLINE) {
		p.advance()
	}
}

// ParseProgram parses top-level statements until EOF. A leftover non-EOF
// token after the loop is a hard parse error.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for {
		p.skipNewlines()
		if p.curIs(token.EOF) {
			break
		}
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		} else if !p.curIs(token.EOF) {
			// parseStatement already recorded a diagnostic; advance to
			// avoid looping forever on the same bad token.
			p.advance()
		}
	}
	if !p.curIs(token.EOF) {
		p.errorf("unexpected trailing token %s", p.cur.Kind)
	}
	return prog
}

func (p *Parser) parseStatement() ast.Statement {
	switch {
	case p.curIs(token.INDENT):
		return p.parseBlock()
	case p.curIs(token.IF):
		return p.parseIf()
	case p.curIs(token.WHILE):
		return p.parseWhile()
	case p.curIs(token.DO):
		return p.parseDoWhile()
	case p.curIs(token.FOR):
		return p.parseForIn()
	case p.curIs(token.FN):
		return p.parseFunctionDeclaration()
	case p.curIs(token.RETURN):
		return p.parseReturn()
	case p.curIs(token.IDENT) && p.peekIs(token.COLON):
		return p.parseVariableDeclaration()
	case p.curIs(token.IDENT) && (p.peekIs(token.ASSIGN) || p.peekIs(token.LBRACKET) ||
		p.peekIs(token.PLUS_EQ) || p.peekIs(token.MINUS_EQ)):
		return p.parseAssignment()
	default:
		// Return an untyped nil on failure so callers' nil checks see it.
		if stmt := p.parseExpressionStatement(); stmt != nil {
			return stmt
		}
		return nil
	}
}

// parseBlock expects an INDENT, then parses statements until DEDENT or
// EOF, tolerating blank NEWLINEs between statements.
func (p *Parser) parseBlock() *ast.Block {
	tok, _ := p.expect(token.INDENT)
	block := &ast.Block{Token: tok}
	for {
		p.skipNewlines()
		if p.curIs(token.DEDENT) || p.curIs(token.EOF) {
			break
		}
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		} else {
			p.advance()
		}
	}
	if p.curIs(token.DEDENT) {
		p.advance()
	}
	return block
}

func (p *Parser) parseVariableDeclaration() *ast.VariableDeclaration {
	nameTok, _ := p.expect(token.IDENT)
	p.expect(token.COLON)
	typeTok, _ := p.expect(token.IDENT)
	typeName := typeTok.Text
	for p.curIs(token.LBRACKET) {
		p.advance()
		p.expect(token.RBRACKET)
		typeName += "[]"
	}
	decl := &ast.VariableDeclaration{Token: nameTok, Name: nameTok.Text, TypeName: typeName}
	if p.curIs(token.ASSIGN) {
		p.advance()
		decl.Initializer = p.parseExpression(LOWEST)
	}
	p.consumeOptionalNewline()
	return decl
}

func (p *Parser) parseFunctionDeclaration() *ast.FunctionDeclaration {
	fnTok, _ := p.expect(token.FN)
	nameTok, _ := p.expect(token.IDENT)
	p.expect(token.LPAREN)

	var params []ast.Parameter
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		pnTok, _ := p.expect(token.IDENT)
		param := ast.Parameter{Name: pnTok}
		if p.curIs(token.COLON) {
			p.advance()
			typeTok, _ := p.expect(token.IDENT)
			t := typeTok
			param.Type = &t
		}
		params = append(params, param)
		if p.curIs(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RPAREN)

	returnType := ""
	if p.curIs(token.ARROW) {
		p.advance()
		typeTok, _ := p.expect(token.IDENT)
		returnType = typeTok.Text
	}
	p.expect(token.COLON)
	p.skipNewlines()
	body := p.parseStatement()

	return &ast.FunctionDeclaration{
		Token:      fnTok,
		Name:       nameTok.Text,
		Parameters: params,
		ReturnType: returnType,
		Body:       body,
	}
}

// compoundAssignOps maps a compound-assignment token to the binary
// operator it desugars to: `i += 1` parses as `i = i + 1`, per §8 scenario
// 4 ("+= is parsed as an assignment ... of i + 1").
var compoundAssignOps = map[token.Kind]token.Kind{
	token.PLUS_EQ:  token.PLUS,
	token.MINUS_EQ: token.MINUS,
}

func (p *Parser) parseAssignment() *ast.Assignment {
	target := p.parseExpression(LOWEST)
	switch target.(type) {
	case *ast.Variable, *ast.ArrayAccess:
	default:
		p.errorf("assignment target must be a variable or array access")
	}

	if binOp, ok := compoundAssignOps[p.cur.Kind]; ok {
		opTok := p.cur
		p.advance()
		rhs := p.parseExpression(LOWEST)
		p.consumeOptionalNewline()
		value := &ast.Binary{
			OpToken: token.Token{Kind: binOp, Text: binOp.String(), Span: opTok.Span},
			Left:    target,
			Right:   rhs,
		}
		return &ast.Assignment{Token: opTok, Target: target, Value: value}
	}

	eqTok, _ := p.expect(token.ASSIGN)
	value := p.parseExpression(LOWEST)
	p.consumeOptionalNewline()
	return &ast.Assignment{Token: eqTok, Target: target, Value: value}
}

func (p *Parser) parseIf() *ast.If {
	tok, _ := p.expect(token.IF)
	cond := p.parseExpression(LOWEST)
	p.expect(token.COLON)
	p.skipNewlines()
	then := p.parseStatement()
	node := &ast.If{Token: tok, Condition: cond, Then: then}
	if p.curIs(token.ELSE) {
		p.advance()
		p.expect(token.COLON)
		p.skipNewlines()
		node.Else = p.parseStatement()
	}
	return node
}

func (p *Parser) parseWhile() *ast.While {
	tok, _ := p.expect(token.WHILE)
	cond := p.parseExpression(LOWEST)
	p.expect(token.COLON)
	p.skipNewlines()
	action := p.parseStatement()
	return &ast.While{Token: tok, Condition: cond, Action: action}
}

func (p *Parser) parseDoWhile() *ast.DoWhile {
	tok, _ := p.expect(token.DO)
	p.expect(token.COLON)
	p.skipNewlines()
	action := p.parseStatement()
	p.skipNewlines()
	p.expect(token.WHILE)
	cond := p.parseExpression(LOWEST)
	p.consumeOptionalNewline()
	return &ast.DoWhile{Token: tok, Action: action, Condition: cond}
}

func (p *Parser) parseForIn() *ast.ForIn {
	tok, _ := p.expect(token.FOR)
	nameTok, _ := p.expect(token.IDENT)
	p.expect(token.IN)
	enumerator := p.parseExpression(LOWEST)
	p.expect(token.COLON)
	p.skipNewlines()
	action := p.parseStatement()
	return &ast.ForIn{Token: tok, Name: nameTok.Text, Enumerator: enumerator, Action: action}
}

func (p *Parser) parseReturn() *ast.Return {
	tok, _ := p.expect(token.RETURN)
	node := &ast.Return{Token: tok}
	if !p.curIs(token.NEWLINE) && !p.curIs(token.EOF) && !p.curIs(token.DEDENT) {
		node.Expression = p.parseExpression(LOWEST)
	}
	p.consumeOptionalNewline()
	return node
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	tok := p.cur
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	p.consumeOptionalNewline()
	return &ast.ExpressionStatement{Token: tok, Expression: expr}
}

func (p *Parser) consumeOptionalNewline() {
	if p.curIs(token.NEWLINE) {
		p.advance()
	}
}

// ---- Expressions --------------------------------------------------------

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix, ok := p.prefixParseFns[p.cur.Kind]
	if !ok {
		p.errorf("unexpected token %s in expression", p.cur.Kind)
		return nil
	}
	left := prefix()
	left = p.parsePostfix(left)

	for left != nil && precedence < getPrecedence(p.cur.Kind) {
		infix, ok := p.infixParseFns[p.cur.Kind]
		if !ok {
			break
		}
		left = infix(left)
	}
	return left
}

func getPrecedence(k token.Kind) int {
	if prec, ok := precedences[k]; ok {
		return prec
	}
	return LOWEST
}

// parsePostfix attaches any number of trailing call/index/++/-- suffixes
// to an already-parsed primary.
func (p *Parser) parsePostfix(left ast.Expression) ast.Expression {
	for left != nil {
		switch p.cur.Kind {
		case token.LPAREN:
			left = p.finishCall(left)
		case token.LBRACKET:
			left = p.finishIndex(left)
		case token.PLUS_PLUS, token.MINUS_MINUS:
			left = p.finishPostfixIncDec(left)
		default:
			return left
		}
	}
	return left
}

func (p *Parser) finishCall(callee ast.Expression) ast.Expression {
	tok, _ := p.expect(token.LPAREN)
	var args []ast.Expression
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		args = append(args, p.parseExpression(LOWEST))
		if p.curIs(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RPAREN)
	return &ast.Call{Token: tok, Callee: callee, Args: args}
}

func (p *Parser) finishIndex(target ast.Expression) ast.Expression {
	tok, _ := p.expect(token.LBRACKET)
	index := p.parseExpression(LOWEST)
	p.expect(token.RBRACKET)
	return &ast.ArrayAccess{Token: tok, Target: target, Index: index}
}

func (p *Parser) finishPostfixIncDec(operand ast.Expression) ast.Expression {
	if _, ok := operand.(*ast.Variable); !ok {
		p.errorf("%s requires a variable operand", p.cur.Kind)
	}
	tok := p.cur
	p.advance()
	return &ast.PostfixUnary{OpToken: tok, Operand: operand}
}

func (p *Parser) parseVariable() ast.Expression {
	tok := p.cur
	p.advance()
	return &ast.Variable{Token: tok, Name: tok.Text}
}

func (p *Parser) parseNumber() ast.Expression {
	tok := p.cur
	p.advance()
	return &ast.NumberLiteral{Token: tok, Text: tok.Text}
}

func (p *Parser) parseString() ast.Expression {
	tok := p.cur
	p.advance()
	return &ast.StringLiteral{Token: tok, Value: tok.Text}
}

func (p *Parser) parseBoolean() ast.Expression {
	tok := p.cur
	p.advance()
	return &ast.BooleanLiteral{Token: tok, Value: tok.Kind == token.TRUE}
}

func (p *Parser) parseParenthesized() ast.Expression {
	tok, _ := p.expect(token.LPAREN)
	inner := p.parseExpression(LOWEST)
	p.expect(token.RPAREN)
	return &ast.Parenthesized{Token: tok, Inner: inner}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	tok, _ := p.expect(token.LBRACKET)
	lit := &ast.ArrayLiteral{Token: tok}
	for !p.curIs(token.RBRACKET) && !p.curIs(token.EOF) {
		lit.Elements = append(lit.Elements, p.parseExpression(LOWEST))
		if p.curIs(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RBRACKET)
	return lit
}

func (p *Parser) parseBinary(left ast.Expression) ast.Expression {
	tok := p.cur
	prec := getPrecedence(tok.Kind)
	p.advance()
	right := p.parseExpression(prec)
	return &ast.Binary{OpToken: tok, Left: left, Right: right}
}

func (p *Parser) parsePrefixUnary() ast.Expression {
	tok := p.cur
	p.advance()
	operand := p.parseExpression(MULTIPLICATIVE)
	return &ast.PrefixUnary{OpToken: tok, Operand: operand}
}

func (p *Parser) parsePrefixIncDec() ast.Expression {
	tok := p.cur
	p.advance()
	operand := p.parseExpression(MULTIPLICATIVE)
	if _, ok := operand.(*ast.Variable); !ok {
		p.errorf("%s requires a variable operand", tok.Kind)
	}
	return &ast.PrefixUnary{OpToken: tok, Operand: operand}
}
