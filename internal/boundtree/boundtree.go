// Package boundtree defines the typed mirror of the CST produced by the
// binder: every node carries a resolved types.Type and operator nodes carry
// a resolved operator record, so the evaluator never has to re-derive type
// information the binder already settled.
//
// The CST keeps token identities for diagnostics; the bound tree keeps
// types.Type and *types.Function symbols instead. This is a deliberate
// second immutable tree rather than the teacher's in-place-annotated AST
// (internal/interp's evaluator walks the same *ast.Node it parsed,
// decorated with a symbol table on the side): the language's own data
// model calls for a separate typed tree, so Node here parallels ast.Node
// one level up rather than reusing it.
package boundtree

import (
	"github.com/aspid-lang/aspid/internal/token"
	"github.com/aspid-lang/aspid/internal/types"
)

// Node is the base interface implemented by every bound node.
type Node interface {
	Pos() token.Position
}

// Expression is a bound node that yields a value of a known Type.
type Expression interface {
	Node
	ExprType() *types.Type
	expressionNode()
}

// Statement is a bound node that performs an action.
type Statement interface {
	Node
	statementNode()
}

// Program is the bound form of ast.Program: an ordered list of top-level
// bound statements, one per successfully (or unsuccessfully) bound CST
// statement.
type Program struct {
	Statements []Statement
}

// ---- Expressions --------------------------------------------------------

// Literal is a constant Int, Double, Bool, or String value baked in at bind
// time. Values are carried as Go's own types (int64, float64, bool,
// string); the evaluator converts them to runtime Values on first use.
type Literal struct {
	Position token.Position
	Type     *types.Type
	Value    any
}

func (l *Literal) Pos() token.Position   { return l.Position }
func (l *Literal) ExprType() *types.Type { return l.Type }
func (l *Literal) expressionNode()       {}

// VariableRef is a resolved read of a variable by name. The binder does not
// carry a slot index (the scope chain is itself name-keyed at every stage),
// so only the name and its resolved type travel forward.
type VariableRef struct {
	Position token.Position
	Name     string
	Type     *types.Type
}

func (v *VariableRef) Pos() token.Position   { return v.Position }
func (v *VariableRef) ExprType() *types.Type { return v.Type }
func (v *VariableRef) expressionNode()       {}

// ArrayLiteral is a bound `[e1, e2, ...]`; Type is Array(common element
// type) or Array(Any) when the elements disagree.
type ArrayLiteral struct {
	Position token.Position
	Elements []Expression
	Type     *types.Type
}

func (a *ArrayLiteral) Pos() token.Position   { return a.Position }
func (a *ArrayLiteral) ExprType() *types.Type { return a.Type }
func (a *ArrayLiteral) expressionNode()       {}

// ArrayAccess is a bound `target[index]`; Type is the array's element type
// (or Any if the array itself is Any).
type ArrayAccess struct {
	Position token.Position
	Target   Expression
	Index    Expression
	Type     *types.Type
}

func (a *ArrayAccess) Pos() token.Position   { return a.Position }
func (a *ArrayAccess) ExprType() *types.Type { return a.Type }
func (a *ArrayAccess) expressionNode()       {}

// Binary is a bound binary expression carrying the resolved operator
// record from §4.3's resolution table.
type Binary struct {
	Position token.Position
	Operator *types.BoundOperator
	Left     Expression
	Right    Expression
}

func (b *Binary) Pos() token.Position   { return b.Position }
func (b *Binary) ExprType() *types.Type { return b.Operator.ResultType }
func (b *Binary) expressionNode()       {}

// PrefixUnary and PostfixUnary are bound unary expressions; IsIncDec marks
// `++`/`--` so the evaluator knows to read-modify-write the operand rather
// than just compute a value.
type PrefixUnary struct {
	Position token.Position
	Operator *types.BoundUnaryOperator
	Operand  Expression
}

func (u *PrefixUnary) Pos() token.Position   { return u.Position }
func (u *PrefixUnary) ExprType() *types.Type { return u.Operator.ResultType }
func (u *PrefixUnary) expressionNode()       {}

type PostfixUnary struct {
	Position token.Position
	Operator *types.BoundUnaryOperator
	Operand  Expression
}

func (u *PostfixUnary) Pos() token.Position   { return u.Position }
func (u *PostfixUnary) ExprType() *types.Type { return u.Operator.ResultType }
func (u *PostfixUnary) expressionNode()       {}

// Conversion is an implicit or explicit BoundConversion per §4.3.
type Conversion struct {
	Position       token.Position
	Target         *types.Type
	Inner          Expression
	AllowStringSrc bool // true only for explicit call-form conversions
}

func (c *Conversion) Pos() token.Position   { return c.Position }
func (c *Conversion) ExprType() *types.Type { return c.Target }
func (c *Conversion) expressionNode()       {}

// Call is a bound call to a user function or a built-in.
type Call struct {
	Position token.Position
	Callee   string
	Function *types.Function // nil when Callee names a built-in
	Args     []Expression
	Type     *types.Type
}

func (c *Call) Pos() token.Position   { return c.Position }
func (c *Call) ExprType() *types.Type { return c.Type }
func (c *Call) expressionNode()       {}

// Error stands in for an expression that failed to bind. Each Error node is
// produced together with exactly one diagnostic, but not every diagnostic
// has an Error node: checks such as condition type, call arity, parameter
// annotations, and implicit conversions record a diagnostic and keep the
// bound node they checked.
type Error struct {
	Position token.Position
	Message  string
}

func (e *Error) Pos() token.Position   { return e.Position }
func (e *Error) ExprType() *types.Type { return types.Error }
func (e *Error) expressionNode()       {}

// ---- Statements ----------------------------------------------------------

// Block is a bound sequence of statements; the evaluator pushes a scope
// frame on entry and pops it on exit.
type Block struct {
	Position   token.Position
	Statements []Statement
}

func (b *Block) Pos() token.Position { return b.Position }
func (b *Block) statementNode()      {}

// VariableDeclaration is a bound `name ':' type ('=' initializer)?`.
// Initializer is nil when absent, in which case the evaluator defaults the
// variable to integer zero.
type VariableDeclaration struct {
	Position    token.Position
	Name        string
	Type        *types.Type
	Initializer Expression
}

func (v *VariableDeclaration) Pos() token.Position { return v.Position }
func (v *VariableDeclaration) statementNode()      {}

// FunctionDeclaration carries the resolved function symbol (for dispatch
// identity) and the bound body.
type FunctionDeclaration struct {
	Position token.Position
	Symbol   *types.Function
	Body     Statement
}

func (f *FunctionDeclaration) Pos() token.Position { return f.Position }
func (f *FunctionDeclaration) statementNode()      {}

// Assignment is a bound `target = value` where Target is a VariableRef.
// Conversion to the target's declared type, if any, has already been
// inserted into Value by the binder.
type Assignment struct {
	Position token.Position
	Name     string
	Value    Expression
}

func (a *Assignment) Pos() token.Position { return a.Position }
func (a *Assignment) statementNode()      {}

// ArrayAssignment is a bound `target[index] = value`.
type ArrayAssignment struct {
	Position token.Position
	Access   *ArrayAccess
	Value    Expression
}

func (a *ArrayAssignment) Pos() token.Position { return a.Position }
func (a *ArrayAssignment) statementNode()      {}

// If is a bound conditional; Else is nil when absent.
type If struct {
	Position  token.Position
	Condition Expression
	Then      Statement
	Else      Statement
}

func (i *If) Pos() token.Position { return i.Position }
func (i *If) statementNode()      {}

// While is a bound `while cond: action`.
type While struct {
	Position  token.Position
	Condition Expression
	Action    Statement
}

func (w *While) Pos() token.Position { return w.Position }
func (w *While) statementNode()      {}

// DoWhile is a bound `do: action while cond`.
type DoWhile struct {
	Position  token.Position
	Action    Statement
	Condition Expression
}

func (d *DoWhile) Pos() token.Position { return d.Position }
func (d *DoWhile) statementNode()      {}

// ForIn is a bound `for name in enumerator: action`. ElementType is the
// type the loop variable is declared with in the body's scope.
type ForIn struct {
	Position    token.Position
	Name        string
	ElementType *types.Type
	Enumerator  Expression
	Action      Statement
}

func (f *ForIn) Pos() token.Position { return f.Position }
func (f *ForIn) statementNode()      {}

// Return is a bound `return (expr)?`; Expression is nil when absent.
type Return struct {
	Position   token.Position
	Expression Expression
}

func (r *Return) Pos() token.Position { return r.Position }
func (r *Return) statementNode()      {}

// ExpressionStatement wraps a bound expression evaluated for effect.
type ExpressionStatement struct {
	Position   token.Position
	Expression Expression
}

func (e *ExpressionStatement) Pos() token.Position { return e.Position }
func (e *ExpressionStatement) statementNode()      {}

// ErrorStatement stands in for a statement that failed to bind (e.g. an
// unknown type name in a declaration). Like Error, it is 1:1 with a
// diagnostic.
type ErrorStatement struct {
	Position token.Position
	Message  string
}

func (e *ErrorStatement) Pos() token.Position { return e.Position }
func (e *ErrorStatement) statementNode()      {}
