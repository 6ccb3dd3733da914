// Package binder resolves names and types over a parsed CST, producing a
// boundtree.Program and a list of diagnostics. Binding never panics on a
// well-formed CST: a node that cannot be bound becomes a boundtree.Error or
// boundtree.ErrorStatement alongside an appended diagnostic, while checks
// such as condition type, call arity, parameter annotations, and implicit
// conversions append a diagnostic and keep the node they checked. The
// dispatch-by-type shape follows the teacher's semantic.Analyzer
// (internal/semantic).
package binder

import (
	"strconv"
	"strings"

	"github.com/aspid-lang/aspid/internal/ast"
	"github.com/aspid-lang/aspid/internal/boundtree"
	"github.com/aspid-lang/aspid/internal/diag"
	"github.com/aspid-lang/aspid/internal/scope"
	"github.com/aspid-lang/aspid/internal/token"
	"github.com/aspid-lang/aspid/internal/types"
)

// builtinSignatures mirrors §6's built-in table, used by call binding to
// resolve names that are not user-declared functions.
var builtinSignatures = map[string]*types.Function{
	"print": types.NewFunction("print", []types.Parameter{{Name: "x", Type: types.Any}}, types.Void),
	"input": types.NewFunction("input", nil, types.String),
	"random": types.NewFunction("random", []types.Parameter{
		{Name: "min", Type: types.Int},
		{Name: "max", Type: types.Int},
	}, types.Int),
}

// Binder holds compile-time scope and the accumulated diagnostics for one
// binding pass.
type Binder struct {
	scope *scope.Scope[*types.Type]
	diags []*diag.Diagnostic
}

// New creates a Binder with a fresh global scope.
func New() *Binder {
	return &Binder{scope: scope.New[*types.Type]()}
}

// Bind resolves an entire CST program, returning the bound program and any
// diagnostics collected along the way.
func Bind(prog *ast.Program) (*boundtree.Program, []*diag.Diagnostic) {
	b := New()
	return b.BindProgram(prog), b.diags
}

// BindProgram binds every statement of prog against this Binder's current
// scope, appending to (not resetting) its diagnostic list.
func (b *Binder) BindProgram(prog *ast.Program) *boundtree.Program {
	out := &boundtree.Program{}
	for _, stmt := range prog.Statements {
		out.Statements = append(out.Statements, b.bindStatement(stmt))
	}
	return out
}

// BindStatement binds a single top-level statement against this Binder's
// current scope. Used by both the file runner and the REPL, which bind and
// evaluate one top-level statement at a time against scope built up by
// earlier statements.
func (b *Binder) BindStatement(stmt ast.Statement) boundtree.Statement {
	return b.bindStatement(stmt)
}

// Diagnostics returns every diagnostic collected by this Binder so far.
func (b *Binder) Diagnostics() []*diag.Diagnostic { return b.diags }

// ResetDiagnostics clears the diagnostic list without disturbing scope,
// so the REPL can test "did this line introduce new diagnostics" without
// accumulating unboundedly across a long session.
func (b *Binder) ResetDiagnostics() { b.diags = nil }

func (b *Binder) errorf(pos token.Position, format string, args ...any) {
	b.diags = append(b.diags, diag.New(pos, format, args...))
}

// ---- Statements ----------------------------------------------------------

func (b *Binder) bindStatement(stmt ast.Statement) boundtree.Statement {
	switch s := stmt.(type) {
	case *ast.Block:
		return b.bindBlockScoped(s)
	case *ast.VariableDeclaration:
		return b.bindVariableDeclaration(s)
	case *ast.FunctionDeclaration:
		return b.bindFunctionDeclaration(s)
	case *ast.Assignment:
		return b.bindAssignment(s)
	case *ast.If:
		return b.bindIf(s)
	case *ast.While:
		return b.bindWhile(s)
	case *ast.DoWhile:
		return b.bindDoWhile(s)
	case *ast.ForIn:
		return b.bindForIn(s)
	case *ast.Return:
		return b.bindReturn(s)
	case *ast.ExpressionStatement:
		return b.bindExpressionStatement(s)
	default:
		b.errorf(stmt.Pos(), "internal error: unhandled statement type %T", stmt)
		return &boundtree.ErrorStatement{Position: stmt.Pos(), Message: "unhandled statement"}
	}
}

// bindBlockScoped opens a fresh frame for a block reached as a standalone
// statement (an `if`/`while`/etc. body already opens its own frame via
// bindBody, so this path only applies to a block that is itself the
// top-level statement list under a construct).
func (b *Binder) bindBlockScoped(s *ast.Block) *boundtree.Block {
	b.scope = scope.Enclosed(b.scope)
	defer func() { b.scope = b.scope.Outer() }()
	return b.bindBlockInline(s)
}

// bindBlockInline binds a block's statements in the current scope, without
// opening a new frame (the caller already opened one, e.g. a function
// body's parameter frame doubling as the body's frame).
func (b *Binder) bindBlockInline(s *ast.Block) *boundtree.Block {
	out := &boundtree.Block{Position: s.Pos()}
	for _, stmt := range s.Statements {
		out.Statements = append(out.Statements, b.bindStatement(stmt))
	}
	return out
}

// bindBody binds a statement used as a construct's body: a Block gets its
// own frame, anything else (a single inline statement) binds directly in a
// fresh frame too, so `if c: x = 1` scopes identically to a block form.
func (b *Binder) bindBody(stmt ast.Statement) boundtree.Statement {
	b.scope = scope.Enclosed(b.scope)
	defer func() { b.scope = b.scope.Outer() }()
	if block, ok := stmt.(*ast.Block); ok {
		return b.bindBlockInline(block)
	}
	return b.bindStatement(stmt)
}

func (b *Binder) bindVariableDeclaration(s *ast.VariableDeclaration) boundtree.Statement {
	declType, ok := types.Parse(s.TypeName)
	if !ok {
		b.errorf(s.Pos(), "unknown type %q", s.TypeName)
		return &boundtree.ErrorStatement{Position: s.Pos(), Message: "unknown type " + s.TypeName}
	}

	if _, exists := b.scope.GetLocal(s.Name); exists {
		b.errorf(s.Pos(), "%q is already declared in this scope", s.Name)
		return &boundtree.ErrorStatement{Position: s.Pos(), Message: "duplicate declaration"}
	}

	out := &boundtree.VariableDeclaration{Position: s.Pos(), Name: s.Name, Type: declType}
	if s.Initializer != nil {
		init := b.bindExpression(s.Initializer)
		if !declType.IsAny() && !init.ExprType().IsAny() && !declType.Equal(init.ExprType()) {
			if !types.CanConvert(init.ExprType(), declType, false) {
				b.errorf(s.Pos(), "cannot assign %s to %s variable %q", init.ExprType(), declType, s.Name)
			} else {
				init = &boundtree.Conversion{Position: init.Pos(), Target: declType, Inner: init}
			}
		}
		out.Initializer = init
	}

	b.scope.Declare(s.Name, declType)
	return out
}

func (b *Binder) bindFunctionDeclaration(s *ast.FunctionDeclaration) boundtree.Statement {
	if b.scope.AnyDeclared(s.Name) {
		b.errorf(s.Pos(), "%q is already declared", s.Name)
		return &boundtree.ErrorStatement{Position: s.Pos(), Message: "duplicate declaration"}
	}
	if _, isPrimitive := types.Parse(s.Name); isPrimitive {
		b.errorf(s.Pos(), "%q collides with a built-in type name", s.Name)
		return &boundtree.ErrorStatement{Position: s.Pos(), Message: "name collides with type"}
	}

	params := make([]types.Parameter, len(s.Parameters))
	seen := make(map[string]bool, len(s.Parameters))
	for i, p := range s.Parameters {
		pType := types.Any
		if p.Type != nil {
			if t, ok := types.Parse(p.Type.Text); ok {
				pType = t
			} else {
				b.errorf(s.Pos(), "unknown parameter type %q", p.Type.Text)
			}
		}
		if seen[p.Name.Text] {
			b.errorf(s.Pos(), "duplicate parameter name %q", p.Name.Text)
		}
		seen[p.Name.Text] = true
		params[i] = types.Parameter{Name: p.Name.Text, Type: pType}
	}

	returnType := types.Any
	if s.ReturnType != "" {
		if t, ok := types.Parse(s.ReturnType); ok {
			returnType = t
		} else {
			b.errorf(s.Pos(), "unknown return type %q", s.ReturnType)
		}
	}

	symbol := types.NewFunction(s.Name, params, returnType)
	b.scope.DeclareFunction(s.Name, symbol)

	b.scope = scope.Enclosed(b.scope)
	for _, p := range params {
		b.scope.Declare(p.Name, p.Type)
	}
	body := b.bindBodyInline(s.Body)
	b.scope = b.scope.Outer()

	return &boundtree.FunctionDeclaration{Position: s.Pos(), Symbol: symbol, Body: body}
}

// bindBodyInline binds a function body in the already-opened parameter
// frame rather than opening a second nested frame, matching §4.4's "open a
// new scope for the body, declare each parameter... bind the body" as one
// frame, not two.
func (b *Binder) bindBodyInline(stmt ast.Statement) boundtree.Statement {
	if block, ok := stmt.(*ast.Block); ok {
		return b.bindBlockInline(block)
	}
	return b.bindStatement(stmt)
}

func (b *Binder) bindAssignment(s *ast.Assignment) boundtree.Statement {
	switch target := s.Target.(type) {
	case *ast.Variable:
		value := b.bindExpression(s.Value)
		declType, exists := b.scope.Get(target.Name)
		if !exists {
			b.scope.Declare(target.Name, types.Any)
			return &boundtree.Assignment{Position: s.Pos(), Name: target.Name, Value: value}
		}
		if !declType.IsAny() && !value.ExprType().IsAny() && !declType.Equal(value.ExprType()) {
			if types.CanConvert(value.ExprType(), declType, false) {
				value = &boundtree.Conversion{Position: value.Pos(), Target: declType, Inner: value}
			} else {
				b.errorf(s.Pos(), "cannot assign %s to %s variable %q", value.ExprType(), declType, target.Name)
			}
		}
		return &boundtree.Assignment{Position: s.Pos(), Name: target.Name, Value: value}

	case *ast.ArrayAccess:
		access := b.bindArrayAccess(target)
		value := b.bindExpression(s.Value)
		if !access.Type.IsAny() && !value.ExprType().IsAny() && !access.Type.Equal(value.ExprType()) {
			if types.CanConvert(value.ExprType(), access.Type, false) {
				value = &boundtree.Conversion{Position: value.Pos(), Target: access.Type, Inner: value}
			} else {
				b.errorf(s.Pos(), "cannot assign %s into %s array", value.ExprType(), access.Type)
			}
		}
		return &boundtree.ArrayAssignment{Position: s.Pos(), Access: access, Value: value}

	default:
		b.errorf(s.Pos(), "internal error: invalid assignment target %T", s.Target)
		return &boundtree.ErrorStatement{Position: s.Pos(), Message: "invalid assignment target"}
	}
}

func (b *Binder) bindIf(s *ast.If) boundtree.Statement {
	cond := b.bindCondition(s.Condition)
	then := b.bindBody(s.Then)
	out := &boundtree.If{Position: s.Pos(), Condition: cond, Then: then}
	if s.Else != nil {
		out.Else = b.bindBody(s.Else)
	}
	return out
}

func (b *Binder) bindWhile(s *ast.While) boundtree.Statement {
	cond := b.bindCondition(s.Condition)
	action := b.bindBody(s.Action)
	return &boundtree.While{Position: s.Pos(), Condition: cond, Action: action}
}

func (b *Binder) bindDoWhile(s *ast.DoWhile) boundtree.Statement {
	action := b.bindBody(s.Action)
	cond := b.bindCondition(s.Condition)
	return &boundtree.DoWhile{Position: s.Pos(), Action: action, Condition: cond}
}

// bindCondition binds cond and requires a Bool type; per §4.4, Any does
// not satisfy this check (a documented open-question decision, see
// DESIGN.md).
func (b *Binder) bindCondition(cond ast.Expression) boundtree.Expression {
	bound := b.bindExpression(cond)
	if bound.ExprType().Kind != types.KindBool {
		b.errorf(cond.Pos(), "condition must be bool, got %s", bound.ExprType())
	}
	return bound
}

func (b *Binder) bindForIn(s *ast.ForIn) boundtree.Statement {
	enumerator := b.bindExpression(s.Enumerator)
	elemType := types.Any
	switch {
	case enumerator.ExprType().Kind == types.KindArray:
		elemType = enumerator.ExprType().Element
	case enumerator.ExprType().IsAny():
		elemType = types.Any
	default:
		b.errorf(s.Pos(), "for-in enumerator must be an array, got %s", enumerator.ExprType())
	}

	b.scope = scope.Enclosed(b.scope)
	b.scope.Declare(s.Name, elemType)
	action := b.bindBodyInline(s.Action)
	b.scope = b.scope.Outer()

	return &boundtree.ForIn{
		Position:    s.Pos(),
		Name:        s.Name,
		ElementType: elemType,
		Enumerator:  enumerator,
		Action:      action,
	}
}

func (b *Binder) bindReturn(s *ast.Return) boundtree.Statement {
	out := &boundtree.Return{Position: s.Pos()}
	if s.Expression != nil {
		out.Expression = b.bindExpression(s.Expression)
	}
	return out
}

func (b *Binder) bindExpressionStatement(s *ast.ExpressionStatement) boundtree.Statement {
	return &boundtree.ExpressionStatement{Position: s.Pos(), Expression: b.bindExpression(s.Expression)}
}

// ---- Expressions ----------------------------------------------------------

func (b *Binder) bindExpression(expr ast.Expression) boundtree.Expression {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return b.bindNumberLiteral(e)
	case *ast.StringLiteral:
		return &boundtree.Literal{Position: e.Pos(), Type: types.String, Value: e.Value}
	case *ast.BooleanLiteral:
		return &boundtree.Literal{Position: e.Pos(), Type: types.Bool, Value: e.Value}
	case *ast.Variable:
		return b.bindVariable(e)
	case *ast.ArrayLiteral:
		return b.bindArrayLiteral(e)
	case *ast.ArrayAccess:
		return b.bindArrayAccess(e)
	case *ast.Binary:
		return b.bindBinary(e)
	case *ast.PrefixUnary:
		return b.bindPrefixUnary(e)
	case *ast.PostfixUnary:
		return b.bindPostfixUnary(e)
	case *ast.Call:
		return b.bindCall(e)
	case *ast.Parenthesized:
		return b.bindExpression(e.Inner)
	default:
		b.errorf(expr.Pos(), "internal error: unhandled expression type %T", expr)
		return &boundtree.Error{Position: expr.Pos(), Message: "unhandled expression"}
	}
}

// bindNumberLiteral parses hex-int, decimal-int, then double in that
// order, per §4.4; a parse failure (should not occur past a consistent
// lexer) becomes a BoundError.
func (b *Binder) bindNumberLiteral(e *ast.NumberLiteral) boundtree.Expression {
	text := e.Text
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		v, err := strconv.ParseInt(text[2:], 16, 64)
		if err != nil {
			b.errorf(e.Pos(), "invalid hex literal %q", text)
			return &boundtree.Error{Position: e.Pos(), Message: "invalid hex literal"}
		}
		return &boundtree.Literal{Position: e.Pos(), Type: types.Int, Value: v}
	}
	if !strings.Contains(text, ".") {
		if v, err := strconv.ParseInt(text, 10, 64); err == nil {
			return &boundtree.Literal{Position: e.Pos(), Type: types.Int, Value: v}
		}
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		b.errorf(e.Pos(), "invalid number literal %q", text)
		return &boundtree.Error{Position: e.Pos(), Message: "invalid number literal"}
	}
	return &boundtree.Literal{Position: e.Pos(), Type: types.Double, Value: v}
}

func (b *Binder) bindVariable(e *ast.Variable) boundtree.Expression {
	t, ok := b.scope.Get(e.Name)
	if !ok {
		b.errorf(e.Pos(), "undeclared variable %q", e.Name)
		return &boundtree.Error{Position: e.Pos(), Message: "undeclared variable " + e.Name}
	}
	return &boundtree.VariableRef{Position: e.Pos(), Name: e.Name, Type: t}
}

func (b *Binder) bindArrayLiteral(e *ast.ArrayLiteral) boundtree.Expression {
	elements := make([]boundtree.Expression, len(e.Elements))
	var common *types.Type
	mixed := false
	for i, el := range e.Elements {
		bound := b.bindExpression(el)
		elements[i] = bound
		switch {
		case i == 0:
			common = bound.ExprType()
		case common != nil && !common.Equal(bound.ExprType()):
			mixed = true
		}
	}
	elemType := types.Any
	if common != nil && !mixed {
		elemType = common
	}
	return &boundtree.ArrayLiteral{Position: e.Pos(), Elements: elements, Type: types.ArrayOf(elemType)}
}

func (b *Binder) bindArrayAccess(e *ast.ArrayAccess) *boundtree.ArrayAccess {
	target := b.bindExpression(e.Target)
	index := b.bindExpression(e.Index)
	if index.ExprType().Kind != types.KindInt && !index.ExprType().IsAny() {
		b.errorf(e.Pos(), "array index must be int, got %s", index.ExprType())
	}
	elemType := types.Any
	switch {
	case target.ExprType().Kind == types.KindArray:
		elemType = target.ExprType().Element
	case target.ExprType().IsAny():
		elemType = types.Any
	default:
		b.errorf(e.Pos(), "cannot index into %s", target.ExprType())
	}
	return &boundtree.ArrayAccess{Position: e.Pos(), Target: target, Index: index, Type: elemType}
}

func (b *Binder) bindBinary(e *ast.Binary) boundtree.Expression {
	left := b.bindExpression(e.Left)
	right := b.bindExpression(e.Right)
	kind, ok := binaryKindFor(e.OpToken.Kind)
	if !ok {
		b.errorf(e.Pos(), "internal error: unhandled binary operator %s", e.OpToken.Kind)
		return &boundtree.Error{Position: e.Pos(), Message: "unhandled binary operator"}
	}
	op, ok := types.ResolveBinary(kind, left.ExprType(), right.ExprType())
	if !ok {
		b.errorf(e.Pos(), "operator %s is undefined for %s and %s", e.OpToken.Text, left.ExprType(), right.ExprType())
		return &boundtree.Error{Position: e.Pos(), Message: "undefined operator"}
	}
	return &boundtree.Binary{Position: e.Pos(), Operator: op, Left: left, Right: right}
}

func (b *Binder) bindPrefixUnary(e *ast.PrefixUnary) boundtree.Expression {
	operand := b.bindExpression(e.Operand)
	kind, ok := prefixUnaryKindFor(e.OpToken.Kind)
	if !ok {
		b.errorf(e.Pos(), "internal error: unhandled prefix operator %s", e.OpToken.Kind)
		return &boundtree.Error{Position: e.Pos(), Message: "unhandled prefix operator"}
	}
	op, ok := types.ResolveUnary(kind, operand.ExprType())
	if !ok {
		b.errorf(e.Pos(), "operator %s is undefined for %s", e.OpToken.Text, operand.ExprType())
		return &boundtree.Error{Position: e.Pos(), Message: "undefined operator"}
	}
	return &boundtree.PrefixUnary{Position: e.Pos(), Operator: op, Operand: operand}
}

func (b *Binder) bindPostfixUnary(e *ast.PostfixUnary) boundtree.Expression {
	operand := b.bindExpression(e.Operand)
	kind := types.UnIncPostfix
	if e.OpToken.Kind == token.MINUS_MINUS {
		kind = types.UnDecPostfix
	}
	op, ok := types.ResolveUnary(kind, operand.ExprType())
	if !ok {
		b.errorf(e.Pos(), "operator %s is undefined for %s", e.OpToken.Text, operand.ExprType())
		return &boundtree.Error{Position: e.Pos(), Message: "undefined operator"}
	}
	return &boundtree.PostfixUnary{Position: e.Pos(), Operator: op, Operand: operand}
}

func (b *Binder) bindCall(e *ast.Call) boundtree.Expression {
	callee, ok := e.Callee.(*ast.Variable)
	if !ok {
		b.errorf(e.Pos(), "call target must be a name")
		return &boundtree.Error{Position: e.Pos(), Message: "invalid call target"}
	}

	if target, ok := types.Parse(callee.Name); ok {
		return b.bindConversionCall(e, target)
	}

	symbol, isUserFunc := b.scope.LookupFunction(callee.Name)
	if !isUserFunc {
		var isBuiltin bool
		symbol, isBuiltin = builtinSignatures[callee.Name]
		if !isBuiltin {
			b.errorf(e.Pos(), "undeclared function %q", callee.Name)
			return &boundtree.Error{Position: e.Pos(), Message: "undeclared function " + callee.Name}
		}
	}

	if len(e.Args) != len(symbol.Parameters) {
		b.errorf(e.Pos(), "%s expects %d argument(s), got %d", callee.Name, len(symbol.Parameters), len(e.Args))
	}

	args := make([]boundtree.Expression, len(e.Args))
	for i, argExpr := range e.Args {
		arg := b.bindExpression(argExpr)
		if i < len(symbol.Parameters) {
			paramType := symbol.Parameters[i].Type
			if !paramType.IsAny() && !arg.ExprType().IsAny() && !paramType.Equal(arg.ExprType()) {
				if types.CanConvert(arg.ExprType(), paramType, false) {
					arg = &boundtree.Conversion{Position: arg.Pos(), Target: paramType, Inner: arg}
				} else {
					b.errorf(argExpr.Pos(), "argument %d to %s: cannot convert %s to %s", i+1, callee.Name, arg.ExprType(), paramType)
				}
			}
		}
		args[i] = arg
	}

	var fn *types.Function
	if isUserFunc {
		fn = symbol
	}
	return &boundtree.Call{Position: e.Pos(), Callee: callee.Name, Function: fn, Args: args, Type: symbol.ReturnType}
}

func (b *Binder) bindConversionCall(e *ast.Call, target *types.Type) boundtree.Expression {
	if len(e.Args) != 1 {
		b.errorf(e.Pos(), "type conversion %s(...) expects exactly 1 argument, got %d", target, len(e.Args))
		return &boundtree.Error{Position: e.Pos(), Message: "invalid conversion arity"}
	}
	inner := b.bindExpression(e.Args[0])
	if !types.CanConvert(inner.ExprType(), target, true) {
		b.errorf(e.Pos(), "cannot convert %s to %s", inner.ExprType(), target)
		return &boundtree.Error{Position: e.Pos(), Message: "invalid conversion"}
	}
	return &boundtree.Conversion{Position: e.Pos(), Target: target, Inner: inner, AllowStringSrc: true}
}

func binaryKindFor(k token.Kind) (types.BinaryKind, bool) {
	switch k {
	case token.PLUS:
		return types.BinAdd, true
	case token.MINUS:
		return types.BinSub, true
	case token.STAR:
		return types.BinMul, true
	case token.SLASH:
		return types.BinDiv, true
	case token.EQ:
		return types.BinEq, true
	case token.NEQ:
		return types.BinNeq, true
	case token.LT:
		return types.BinLt, true
	case token.LTE:
		return types.BinLte, true
	case token.GT:
		return types.BinGt, true
	case token.GTE:
		return types.BinGte, true
	case token.AND_AND:
		return types.BinAnd, true
	case token.OR_OR:
		return types.BinOr, true
	default:
		return 0, false
	}
}

func prefixUnaryKindFor(k token.Kind) (types.UnaryKind, bool) {
	switch k {
	case token.PLUS:
		return types.UnPlus, true
	case token.MINUS:
		return types.UnMinus, true
	case token.BANG:
		return types.UnNot, true
	case token.PLUS_PLUS:
		return types.UnIncPrefix, true
	case token.MINUS_MINUS:
		return types.UnDecPrefix, true
	default:
		return 0, false
	}
}
