// Package ast defines the concrete syntax tree (CST) node types produced by
// the parser. Every node keeps the token(s) it was built from so spans and
// diagnostics can point back at exact source locations.
//
// The Node/Expression/Statement interface split and the TokenLiteral/String/
// Pos trio follow the teacher's internal/ast.Node design; the node set
// itself is specific to Aspid's grammar.
package ast

import (
	"bytes"
	"strings"

	"github.com/aspid-lang/aspid/internal/token"
)

// Node is the base interface implemented by every CST node.
type Node interface {
	TokenLiteral() string
	String() string
	Pos() token.Position
}

// Expression is a node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is a node that performs an action.
type Statement interface {
	Node
	statementNode()
}

// Program is the root of a parsed file or REPL line: an ordered sequence of
// top-level statements.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

func (p *Program) Pos() token.Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return token.Position{Line: 1, Column: 1}
}

// ---- Expressions -----------------------------------------------------

// NumberLiteral is a decimal or hex numeral; the binder decides whether it
// denotes an Int or a Double.
type NumberLiteral struct {
	Token token.Token
	Text  string
}

func (n *NumberLiteral) expressionNode()        {}
func (n *NumberLiteral) TokenLiteral() string   { return n.Token.Text }
func (n *NumberLiteral) String() string         { return n.Text }
func (n *NumberLiteral) Pos() token.Position    { return n.Token.Span.Start }

// StringLiteral is a plain (non-f) string literal.
type StringLiteral struct {
	Token token.Token
	Value string
}

func (s *StringLiteral) expressionNode()      {}
func (s *StringLiteral) TokenLiteral() string { return s.Token.Text }
func (s *StringLiteral) String() string       { return "\"" + s.Value + "\"" }
func (s *StringLiteral) Pos() token.Position  { return s.Token.Span.Start }

// BooleanLiteral is `true` or `false`.
type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (b *BooleanLiteral) expressionNode()      {}
func (b *BooleanLiteral) TokenLiteral() string { return b.Token.Text }
func (b *BooleanLiteral) String() string       { return b.Token.Text }
func (b *BooleanLiteral) Pos() token.Position  { return b.Token.Span.Start }

// Variable is a bare identifier used as an expression.
type Variable struct {
	Token token.Token
	Name  string
}

func (v *Variable) expressionNode()      {}
func (v *Variable) TokenLiteral() string { return v.Token.Text }
func (v *Variable) String() string       { return v.Name }
func (v *Variable) Pos() token.Position  { return v.Token.Span.Start }

// ArrayLiteral is `[e1, e2, ...]`.
type ArrayLiteral struct {
	Token    token.Token // the '[' token
	Elements []Expression
}

func (a *ArrayLiteral) expressionNode()      {}
func (a *ArrayLiteral) TokenLiteral() string { return a.Token.Text }
func (a *ArrayLiteral) Pos() token.Position  { return a.Token.Span.Start }
func (a *ArrayLiteral) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ArrayAccess is `target[index]`.
type ArrayAccess struct {
	Token  token.Token // the '[' token
	Target Expression
	Index  Expression
}

func (a *ArrayAccess) expressionNode()      {}
func (a *ArrayAccess) TokenLiteral() string { return a.Token.Text }
func (a *ArrayAccess) Pos() token.Position  { return a.Target.Pos() }
func (a *ArrayAccess) String() string {
	return a.Target.String() + "[" + a.Index.String() + "]"
}

// Binary is a left-associative binary operator expression.
type Binary struct {
	OpToken token.Token
	Left    Expression
	Right   Expression
}

func (b *Binary) expressionNode()      {}
func (b *Binary) TokenLiteral() string { return b.OpToken.Text }
func (b *Binary) Pos() token.Position  { return b.Left.Pos() }
func (b *Binary) String() string {
	return "(" + b.Left.String() + " " + b.OpToken.Text + " " + b.Right.String() + ")"
}

// PrefixUnary is `op operand` (`+`, `-`, `!`, `++`, `--`).
type PrefixUnary struct {
	OpToken token.Token
	Operand Expression
}

func (u *PrefixUnary) expressionNode()      {}
func (u *PrefixUnary) TokenLiteral() string { return u.OpToken.Text }
func (u *PrefixUnary) Pos() token.Position  { return u.OpToken.Span.Start }
func (u *PrefixUnary) String() string {
	return "(" + u.OpToken.Text + u.Operand.String() + ")"
}

// PostfixUnary is `operand op` (`++`, `--`).
type PostfixUnary struct {
	OpToken token.Token
	Operand Expression
}

func (u *PostfixUnary) expressionNode()      {}
func (u *PostfixUnary) TokenLiteral() string { return u.OpToken.Text }
func (u *PostfixUnary) Pos() token.Position  { return u.Operand.Pos() }
func (u *PostfixUnary) String() string {
	return "(" + u.Operand.String() + u.OpToken.Text + ")"
}

// Call is `callee(args...)`.
type Call struct {
	Token  token.Token // the '(' token
	Callee Expression
	Args   []Expression
}

func (c *Call) expressionNode()      {}
func (c *Call) TokenLiteral() string { return c.Token.Text }
func (c *Call) Pos() token.Position  { return c.Callee.Pos() }
func (c *Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return c.Callee.String() + "(" + strings.Join(parts, ", ") + ")"
}

// Parenthesized is `(expr)`, kept as its own node so pretty-printing can
// round-trip grouping that would otherwise be lost to precedence.
type Parenthesized struct {
	Token token.Token // the '(' token
	Inner Expression
}

func (p *Parenthesized) expressionNode()      {}
func (p *Parenthesized) TokenLiteral() string { return p.Token.Text }
func (p *Parenthesized) Pos() token.Position  { return p.Token.Span.Start }
func (p *Parenthesized) String() string       { return "(" + p.Inner.String() + ")" }

// ---- Statements --------------------------------------------------------

// Block is a sequence of statements introduced by an INDENT and closed by
// the matching DEDENT.
type Block struct {
	Token      token.Token // the INDENT token
	Statements []Statement
}

func (b *Block) statementNode()      {}
func (b *Block) TokenLiteral() string { return b.Token.Text }
func (b *Block) Pos() token.Position  { return b.Token.Span.Start }
func (b *Block) String() string {
	var out bytes.Buffer
	for _, s := range b.Statements {
		out.WriteString("    ")
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

// Parameter is one `name (':' type)?` entry in a function declaration.
type Parameter struct {
	Name token.Token
	Type *token.Token // nil when unannotated
}

// VariableDeclaration is `name ':' typeId ('=' initializer)?`.
type VariableDeclaration struct {
	Token       token.Token // the name token
	Name        string
	TypeName    string
	Initializer Expression // nil when absent
}

func (v *VariableDeclaration) statementNode()      {}
func (v *VariableDeclaration) TokenLiteral() string { return v.Token.Text }
func (v *VariableDeclaration) Pos() token.Position  { return v.Token.Span.Start }
func (v *VariableDeclaration) String() string {
	s := v.Name + ": " + v.TypeName
	if v.Initializer != nil {
		s += " = " + v.Initializer.String()
	}
	return s
}

// FunctionDeclaration is `fn name(params) ('->' type)? ':' body`.
type FunctionDeclaration struct {
	Token      token.Token // the 'fn' token
	Name       string
	Parameters []Parameter
	ReturnType string // "" when absent
	Body       Statement
}

func (f *FunctionDeclaration) statementNode()      {}
func (f *FunctionDeclaration) TokenLiteral() string { return f.Token.Text }
func (f *FunctionDeclaration) Pos() token.Position  { return f.Token.Span.Start }
func (f *FunctionDeclaration) String() string {
	parts := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		parts[i] = p.Name.Text
	}
	return "fn " + f.Name + "(" + strings.Join(parts, ", ") + "):\n" + f.Body.String()
}

// Assignment is `target '=' value`, where target is a Variable or
// ArrayAccess expression.
type Assignment struct {
	Token  token.Token // the '=' token
	Target Expression
	Value  Expression
}

func (a *Assignment) statementNode()      {}
func (a *Assignment) TokenLiteral() string { return a.Token.Text }
func (a *Assignment) Pos() token.Position  { return a.Target.Pos() }
func (a *Assignment) String() string {
	return a.Target.String() + " = " + a.Value.String()
}

// If is `if cond: then (else: otherwise)?`.
type If struct {
	Token     token.Token // the 'if' token
	Condition Expression
	Then      Statement
	Else      Statement // nil when absent
}

func (i *If) statementNode()      {}
func (i *If) TokenLiteral() string { return i.Token.Text }
func (i *If) Pos() token.Position  { return i.Token.Span.Start }
func (i *If) String() string {
	s := "if " + i.Condition.String() + ":\n" + i.Then.String()
	if i.Else != nil {
		s += "else:\n" + i.Else.String()
	}
	return s
}

// While is `while cond: action`.
type While struct {
	Token     token.Token
	Condition Expression
	Action    Statement
}

func (w *While) statementNode()      {}
func (w *While) TokenLiteral() string { return w.Token.Text }
func (w *While) Pos() token.Position  { return w.Token.Span.Start }
func (w *While) String() string {
	return "while " + w.Condition.String() + ":\n" + w.Action.String()
}

// DoWhile is `do: action while cond`.
type DoWhile struct {
	Token     token.Token // the 'do' token
	Action    Statement
	Condition Expression
}

func (d *DoWhile) statementNode()      {}
func (d *DoWhile) TokenLiteral() string { return d.Token.Text }
func (d *DoWhile) Pos() token.Position  { return d.Token.Span.Start }
func (d *DoWhile) String() string {
	return "do:\n" + d.Action.String() + "while " + d.Condition.String()
}

// ForIn is `for name in enumerator: action`.
type ForIn struct {
	Token       token.Token // the 'for' token
	Name        string
	Enumerator  Expression
	Action      Statement
}

func (f *ForIn) statementNode()      {}
func (f *ForIn) TokenLiteral() string { return f.Token.Text }
func (f *ForIn) Pos() token.Position  { return f.Token.Span.Start }
func (f *ForIn) String() string {
	return "for " + f.Name + " in " + f.Enumerator.String() + ":\n" + f.Action.String()
}

// Return is `return (expr)?`.
type Return struct {
	Token      token.Token
	Expression Expression // nil when absent
}

func (r *Return) statementNode()      {}
func (r *Return) TokenLiteral() string { return r.Token.Text }
func (r *Return) Pos() token.Position  { return r.Token.Span.Start }
func (r *Return) String() string {
	if r.Expression == nil {
		return "return"
	}
	return "return " + r.Expression.String()
}

// ExpressionStatement wraps a bare expression used as a statement.
type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

func (e *ExpressionStatement) statementNode()      {}
func (e *ExpressionStatement) TokenLiteral() string { return e.Token.Text }
func (e *ExpressionStatement) Pos() token.Position  { return e.Expression.Pos() }
func (e *ExpressionStatement) String() string       { return e.Expression.String() }
