package evaluator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aspid-lang/aspid/internal/boundtree"
	"github.com/aspid-lang/aspid/internal/scope"
	"github.com/aspid-lang/aspid/internal/types"
)

// equalityEpsilon is the tolerance used for Double equality comparisons,
// per §4.5's "equality additionally uses epsilon tolerance".
const equalityEpsilon = 1e-9

// RuntimeError is a host-level error that aborts evaluation of the current
// top-level statement, per §7's third error taxonomy.
type RuntimeError struct {
	Message string
}

func (e *RuntimeError) Error() string { return e.Message }

func runtimeErrorf(format string, args ...any) error {
	return &RuntimeError{Message: fmt.Sprintf(format, args...)}
}

// returnSignal is the non-local exit carrying a return value out of a
// function body, consumed exactly by the enclosing function-call
// trampoline in userFunction.Call. It is never observed at the top level;
// if it is, that is reported as a runtime error (return outside function).
type returnSignal struct {
	Value Value
}

func (r *returnSignal) Error() string { return "return outside function" }

// Evaluator walks a bound tree against a runtime scope stack. One
// Evaluator instance owns the global frame and the function dispatch
// table and should be reused across top-level statements (a file run or a
// REPL session).
type Evaluator struct {
	global *scope.Scope[Value]
	top    *scope.Scope[Value]

	// dispatch maps a resolved function symbol to its runtime closure,
	// keyed by pointer identity so that two declarations sharing a name
	// (shadowing) remain distinguishable, per §3's data-model invariant.
	dispatch map[*types.Function]Callable

	builtins *Builtins
}

// New creates an Evaluator with an empty global frame. Built-ins are
// installed separately by the builtins package via Register.
func New() *Evaluator {
	g := scope.New[Value]()
	return &Evaluator{global: g, top: g, dispatch: make(map[*types.Function]Callable)}
}

// BuiltinFunc adapts a plain Go function to the Callable interface for
// registering host built-ins.
type BuiltinFunc func(args []Value) (Value, error)

func (f BuiltinFunc) Call(args []Value) (Value, error) { return f(args) }

// Builtins is the active built-in-function table for an Evaluator,
// populated by the builtins package so this package carries no direct
// dependency on I/O or randomness.
type Builtins struct {
	entries map[string]Callable
}

func NewBuiltins() *Builtins { return &Builtins{entries: make(map[string]Callable)} }

func (b *Builtins) Register(name string, fn Callable) { b.entries[name] = fn }

func (b *Builtins) lookup(name string) (Callable, bool) {
	if b == nil {
		return nil, false
	}
	c, ok := b.entries[name]
	return c, ok
}

// Run evaluates one bound top-level statement against the current top
// frame. A runtime error aborts the statement it occurred in but does
// not reset the evaluator's state, matching §7's "aborts evaluation of the
// current top-level statement" (the CLI evaluates one top-level statement
// per Run call in file mode, or per REPL line).
func (e *Evaluator) Run(builtins *Builtins, stmt boundtree.Statement) (Value, error) {
	e.builtins = builtins
	return e.execStatement(stmt)
}

func (e *Evaluator) execStatement(stmt boundtree.Statement) (Value, error) {
	switch s := stmt.(type) {
	case *boundtree.Block:
		return e.execBlock(s)
	case *boundtree.VariableDeclaration:
		return Void(), e.execVariableDeclaration(s)
	case *boundtree.FunctionDeclaration:
		return Void(), e.execFunctionDeclaration(s)
	case *boundtree.Assignment:
		return Void(), e.execAssignment(s)
	case *boundtree.ArrayAssignment:
		return Void(), e.execArrayAssignment(s)
	case *boundtree.If:
		return e.execIf(s)
	case *boundtree.While:
		return Void(), e.execWhile(s)
	case *boundtree.DoWhile:
		return Void(), e.execDoWhile(s)
	case *boundtree.ForIn:
		return Void(), e.execForIn(s)
	case *boundtree.Return:
		return e.execReturn(s)
	case *boundtree.ExpressionStatement:
		v, err := e.evalExpression(s.Expression)
		return v, err
	case *boundtree.ErrorStatement:
		return Void(), runtimeErrorf("%s", s.Message)
	default:
		return Void(), runtimeErrorf("internal error: unhandled statement %T", stmt)
	}
}

func (e *Evaluator) pushFrame() { e.top = scope.Enclosed(e.top) }
func (e *Evaluator) popFrame()  { e.top = e.top.Outer() }

func (e *Evaluator) execBlock(b *boundtree.Block) (Value, error) {
	e.pushFrame()
	defer e.popFrame()
	var last Value
	for _, stmt := range b.Statements {
		v, err := e.execStatement(stmt)
		if err != nil {
			return Void(), err
		}
		last = v
	}
	return last, nil
}

func (e *Evaluator) execVariableDeclaration(s *boundtree.VariableDeclaration) error {
	if s.Initializer == nil {
		e.top.Declare(s.Name, Int(0))
		return nil
	}
	v, err := e.evalExpression(s.Initializer)
	if err != nil {
		return err
	}
	e.top.Declare(s.Name, v)
	return nil
}

func (e *Evaluator) execFunctionDeclaration(s *boundtree.FunctionDeclaration) error {
	e.dispatch[s.Symbol] = &userFunction{eval: e, symbol: s.Symbol, body: s.Body, closureStack: e.top}
	return nil
}

func (e *Evaluator) execAssignment(s *boundtree.Assignment) error {
	v, err := e.evalExpression(s.Value)
	if err != nil {
		return err
	}
	e.top.Assign(s.Name, v)
	return nil
}

func (e *Evaluator) execArrayAssignment(s *boundtree.ArrayAssignment) error {
	_, err := e.evalArrayAssignment(s.Access, s.Value)
	return err
}

func (e *Evaluator) execIf(s *boundtree.If) (Value, error) {
	cond, err := e.evalExpression(s.Condition)
	if err != nil {
		return Void(), err
	}
	if cond.IsTruthy() {
		return e.execStatement(s.Then)
	}
	if s.Else != nil {
		return e.execStatement(s.Else)
	}
	return Void(), nil
}

func (e *Evaluator) execWhile(s *boundtree.While) error {
	for {
		cond, err := e.evalExpression(s.Condition)
		if err != nil {
			return err
		}
		if !cond.IsTruthy() {
			return nil
		}
		if _, err := e.execStatement(s.Action); err != nil {
			return err
		}
	}
}

func (e *Evaluator) execDoWhile(s *boundtree.DoWhile) error {
	for {
		if _, err := e.execStatement(s.Action); err != nil {
			return err
		}
		cond, err := e.evalExpression(s.Condition)
		if err != nil {
			return err
		}
		if !cond.IsTruthy() {
			return nil
		}
	}
}

func (e *Evaluator) execForIn(s *boundtree.ForIn) error {
	enumerator, err := e.evalExpression(s.Enumerator)
	if err != nil {
		return err
	}
	if enumerator.Kind != KindList {
		return runtimeErrorf("for-in enumerator must be a list, got %v", enumerator.Kind)
	}

	e.pushFrame()
	defer e.popFrame()
	e.top.Declare(s.Name, Int(0))

	for _, item := range enumerator.List {
		e.top.Assign(s.Name, item)
		if _, err := e.execStatement(s.Action); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) execReturn(s *boundtree.Return) (Value, error) {
	v := Void()
	if s.Expression != nil {
		var err error
		v, err = e.evalExpression(s.Expression)
		if err != nil {
			return Void(), err
		}
	}
	return Void(), &returnSignal{Value: v}
}

// ---- Expressions ----------------------------------------------------------

func (e *Evaluator) evalExpression(expr boundtree.Expression) (Value, error) {
	switch ex := expr.(type) {
	case *boundtree.Literal:
		return e.evalLiteral(ex)
	case *boundtree.VariableRef:
		return e.evalVariableRef(ex)
	case *boundtree.ArrayLiteral:
		return e.evalArrayLiteral(ex)
	case *boundtree.ArrayAccess:
		return e.evalArrayAccess(ex)
	case *boundtree.Binary:
		return e.evalBinary(ex)
	case *boundtree.PrefixUnary:
		return e.evalPrefixUnary(ex)
	case *boundtree.PostfixUnary:
		return e.evalPostfixUnary(ex)
	case *boundtree.Conversion:
		return e.evalConversion(ex)
	case *boundtree.Call:
		return e.evalCall(ex)
	case *boundtree.Error:
		return Void(), runtimeErrorf("%s", ex.Message)
	default:
		return Void(), runtimeErrorf("internal error: unhandled expression %T", expr)
	}
}

func (e *Evaluator) evalLiteral(l *boundtree.Literal) (Value, error) {
	switch l.Type.Kind {
	case types.KindInt:
		return Int(l.Value.(int64)), nil
	case types.KindDouble:
		return Double(l.Value.(float64)), nil
	case types.KindBool:
		return Bool(l.Value.(bool)), nil
	case types.KindString:
		return String(l.Value.(string)), nil
	default:
		return Void(), runtimeErrorf("internal error: unhandled literal type %s", l.Type)
	}
}

func (e *Evaluator) evalVariableRef(v *boundtree.VariableRef) (Value, error) {
	val, ok := e.top.Get(v.Name)
	if !ok {
		return Void(), runtimeErrorf("undeclared variable %q", v.Name)
	}
	return val, nil
}

func (e *Evaluator) evalArrayLiteral(a *boundtree.ArrayLiteral) (Value, error) {
	list := make([]Value, len(a.Elements))
	for i, el := range a.Elements {
		v, err := e.evalExpression(el)
		if err != nil {
			return Void(), err
		}
		list[i] = v
	}
	return List(list), nil
}

// resolveIndex applies §4.5's negative-index and range-check rules.
func resolveIndex(list []Value, index Value) (int, error) {
	i, ok := index.AsNumeric()
	if !ok {
		return 0, runtimeErrorf("array index must be numeric")
	}
	idx := int(i)
	if idx < 0 {
		idx = len(list) + idx
	}
	if idx < 0 || idx >= len(list) {
		return 0, runtimeErrorf("array index out of range: %d", int(i))
	}
	return idx, nil
}

func (e *Evaluator) evalArrayAccess(a *boundtree.ArrayAccess) (Value, error) {
	target, err := e.evalExpression(a.Target)
	if err != nil {
		return Void(), err
	}
	if target.Kind != KindList {
		return Void(), runtimeErrorf("cannot index a non-array value")
	}
	index, err := e.evalExpression(a.Index)
	if err != nil {
		return Void(), err
	}
	idx, err := resolveIndex(target.List, index)
	if err != nil {
		return Void(), err
	}
	return target.List[idx], nil
}

// evalArrayAssignment writes into the list in place (the list's backing
// array is shared with the original variable binding) and returns the
// written value, per §4.5.
func (e *Evaluator) evalArrayAssignment(access *boundtree.ArrayAccess, valueExpr boundtree.Expression) (Value, error) {
	target, err := e.evalExpression(access.Target)
	if err != nil {
		return Void(), err
	}
	if target.Kind != KindList {
		return Void(), runtimeErrorf("cannot index a non-array value")
	}
	index, err := e.evalExpression(access.Index)
	if err != nil {
		return Void(), err
	}
	idx, err := resolveIndex(target.List, index)
	if err != nil {
		return Void(), err
	}
	value, err := e.evalExpression(valueExpr)
	if err != nil {
		return Void(), err
	}
	target.List[idx] = value
	return value, nil
}

// evalBinary dispatches on the bound operator's result type per §4.5:
// String concatenation, Double/Int arithmetic, comparison via double
// coercion with epsilon-tolerant equality, and boolean logic (both
// operands always evaluated — no short-circuiting, per the documented
// open-question decision recorded in DESIGN.md).
func (e *Evaluator) evalBinary(b *boundtree.Binary) (Value, error) {
	left, err := e.evalExpression(b.Left)
	if err != nil {
		return Void(), err
	}
	right, err := e.evalExpression(b.Right)
	if err != nil {
		return Void(), err
	}

	switch b.Operator.BinaryKind {
	case types.BinEq, types.BinNeq:
		eq := valuesEqual(left, right)
		if b.Operator.BinaryKind == types.BinNeq {
			eq = !eq
		}
		return Bool(eq), nil

	case types.BinLt, types.BinLte, types.BinGt, types.BinGte:
		l, lok := left.AsNumeric()
		r, rok := right.AsNumeric()
		if !lok || !rok {
			return Void(), runtimeErrorf("comparison requires numeric operands")
		}
		switch b.Operator.BinaryKind {
		case types.BinLt:
			return Bool(l < r), nil
		case types.BinLte:
			return Bool(l <= r), nil
		case types.BinGt:
			return Bool(l > r), nil
		default:
			return Bool(l >= r), nil
		}

	case types.BinAdd:
		resultKind := b.Operator.ResultType.Kind
		if resultKind == types.KindString ||
			(resultKind == types.KindAny && (left.Kind == KindString || right.Kind == KindString)) {
			return String(left.Render() + right.Render()), nil
		}
		return numericArith(b.Operator.ResultType, left, right, func(a, c float64) float64 { return a + c })

	case types.BinSub:
		return numericArith(b.Operator.ResultType, left, right, func(a, c float64) float64 { return a - c })

	case types.BinMul:
		return numericArith(b.Operator.ResultType, left, right, func(a, c float64) float64 { return a * c })

	case types.BinDiv:
		return numericArith(b.Operator.ResultType, left, right, func(a, c float64) float64 { return a / c })

	case types.BinAnd:
		return Bool(left.IsTruthy() && right.IsTruthy()), nil

	case types.BinOr:
		return Bool(left.IsTruthy() || right.IsTruthy()), nil

	default:
		return Void(), runtimeErrorf("internal error: unhandled bound operator")
	}
}

// valuesEqual implements §4.5's equality rule: epsilon-tolerant numeric
// comparison, host-level structural equality otherwise.
func valuesEqual(left, right Value) bool {
	l, lok := left.AsNumeric()
	r, rok := right.AsNumeric()
	if lok && rok {
		diff := l - r
		if diff < 0 {
			diff = -diff
		}
		return diff < equalityEpsilon
	}
	return left.Equal(right)
}

// numericArith picks Int or Double arithmetic by the bound result type; an
// Any-typed result is decided from the operand kinds observed at runtime:
// Double if either operand is a Double, Int otherwise. For `+`, evalBinary
// has already taken the string-concatenation case before calling this.
func numericArith(resultType *types.Type, left, right Value, op func(a, b float64) float64) (Value, error) {
	kind := resultType.Kind
	if kind == types.KindAny {
		if left.Kind == KindDouble || right.Kind == KindDouble {
			kind = types.KindDouble
		} else {
			kind = types.KindInt
		}
	}
	l, lok := left.AsNumeric()
	r, rok := right.AsNumeric()
	if !lok || !rok {
		return Void(), runtimeErrorf("arithmetic requires numeric operands")
	}
	result := op(l, r)
	if kind == types.KindInt {
		return Int(int64(result)), nil
	}
	return Double(result), nil
}

func (e *Evaluator) evalPrefixUnary(u *boundtree.PrefixUnary) (Value, error) {
	switch u.Operator.UnaryKind {
	case types.UnPlus:
		return e.evalExpression(u.Operand)
	case types.UnMinus:
		v, err := e.evalExpression(u.Operand)
		if err != nil {
			return Void(), err
		}
		return negate(v)
	case types.UnNot:
		v, err := e.evalExpression(u.Operand)
		if err != nil {
			return Void(), err
		}
		return Bool(!v.IsTruthy()), nil
	case types.UnIncPrefix, types.UnDecPrefix:
		ref, ok := u.Operand.(*boundtree.VariableRef)
		if !ok {
			return Void(), runtimeErrorf("internal error: ++/-- operand must be a variable")
		}
		updated, err := e.stepVariable(ref.Name, u.Operator.UnaryKind == types.UnIncPrefix)
		if err != nil {
			return Void(), err
		}
		return updated, nil
	default:
		return Void(), runtimeErrorf("internal error: unhandled prefix operator")
	}
}

func (e *Evaluator) evalPostfixUnary(u *boundtree.PostfixUnary) (Value, error) {
	ref, ok := u.Operand.(*boundtree.VariableRef)
	if !ok {
		return Void(), runtimeErrorf("internal error: ++/-- operand must be a variable")
	}
	before, ok := e.top.Get(ref.Name)
	if !ok {
		return Void(), runtimeErrorf("undeclared variable %q", ref.Name)
	}
	if _, err := e.stepVariable(ref.Name, u.Operator.UnaryKind == types.UnIncPostfix); err != nil {
		return Void(), err
	}
	return before, nil
}

// stepVariable adds or subtracts one from a numeric variable in place and
// returns the new value, per §4.5's pre/post increment semantics.
func (e *Evaluator) stepVariable(name string, increment bool) (Value, error) {
	current, ok := e.top.Get(name)
	if !ok {
		return Void(), runtimeErrorf("undeclared variable %q", name)
	}
	n, ok := current.AsNumeric()
	if !ok {
		return Void(), runtimeErrorf("++/-- requires a numeric variable")
	}
	delta := 1.0
	if !increment {
		delta = -1.0
	}
	var updated Value
	if current.Kind == KindInt {
		updated = Int(current.Int + int64(delta))
	} else {
		updated = Double(n + delta)
	}
	e.top.Assign(name, updated)
	return updated, nil
}

func negate(v Value) (Value, error) {
	switch v.Kind {
	case KindInt:
		return Int(-v.Int), nil
	case KindDouble:
		return Double(-v.Double), nil
	default:
		return Void(), runtimeErrorf("unary - requires a numeric value")
	}
}

func (e *Evaluator) evalConversion(c *boundtree.Conversion) (Value, error) {
	inner, err := e.evalExpression(c.Inner)
	if err != nil {
		return Void(), err
	}
	return convert(inner, c.Target, c.AllowStringSrc)
}

func (e *Evaluator) evalCall(c *boundtree.Call) (Value, error) {
	args := make([]Value, len(c.Args))
	for i, argExpr := range c.Args {
		v, err := e.evalExpression(argExpr)
		if err != nil {
			return Void(), err
		}
		args[i] = v
	}

	if c.Function != nil {
		fn, ok := e.dispatch[c.Function]
		if !ok {
			return Void(), runtimeErrorf("internal error: function %q has no registered body", c.Callee)
		}
		return fn.Call(args)
	}

	fn, ok := e.builtins.lookup(c.Callee)
	if !ok {
		return Void(), runtimeErrorf("undeclared function %q", c.Callee)
	}
	return fn.Call(args)
}

// userFunction is the runtime closure installed for a declared function.
// It captures the evaluator's live scope stack by reference (not a
// snapshot), matching §4.5's "the callable captures the live scope stack"
// closure model: a function declared inside a block only observes that
// block's bindings while the block is live.
type userFunction struct {
	eval         *Evaluator
	symbol       *types.Function
	body         boundtree.Statement
	closureStack *scope.Scope[Value]
}

func (f *userFunction) Call(args []Value) (Value, error) {
	if len(args) != len(f.symbol.Parameters) {
		return Void(), runtimeErrorf("%s expects %d argument(s), got %d", f.symbol.Name, len(f.symbol.Parameters), len(args))
	}

	savedTop := f.eval.top
	f.eval.top = scope.Enclosed(f.closureStack)
	for i, p := range f.symbol.Parameters {
		f.eval.top.Declare(p.Name, args[i])
	}
	defer func() { f.eval.top = savedTop }()

	_, err := f.eval.execStatement(f.body)
	if err == nil {
		return Void(), nil
	}
	if ret, ok := err.(*returnSignal); ok {
		return ret.Value, nil
	}
	return Void(), err
}

// convert implements §4.3's BoundConversion rules at runtime.
func convert(v Value, target *types.Type, allowStringSource bool) (Value, error) {
	switch target.Kind {
	case types.KindAny:
		return v, nil
	case types.KindInt:
		switch v.Kind {
		case KindInt:
			return v, nil
		case KindDouble:
			return Int(int64(v.Double)), nil
		case KindBool:
			if v.Bool {
				return Int(1), nil
			}
			return Int(0), nil
		case KindString:
			if allowStringSource {
				return parseIntString(v.String)
			}
		}
	case types.KindDouble:
		switch v.Kind {
		case KindDouble:
			return v, nil
		case KindInt:
			return Double(float64(v.Int)), nil
		case KindBool:
			if v.Bool {
				return Double(1), nil
			}
			return Double(0), nil
		case KindString:
			if allowStringSource {
				return parseDoubleString(v.String)
			}
		}
	case types.KindBool:
		switch v.Kind {
		case KindBool:
			return v, nil
		case KindInt:
			return Bool(v.Int != 0), nil
		case KindDouble:
			return Bool(v.Double != 0), nil
		case KindString:
			if allowStringSource {
				n, err := parseDoubleString(v.String)
				if err != nil {
					return Void(), err
				}
				return Bool(n.Double != 0), nil
			}
		}
	case types.KindString:
		return String(v.Render()), nil
	}
	return Void(), runtimeErrorf("cannot convert value to %s", target)
}

// parseIntString implements §4.3's explicit int(x) string rule:
// whitespace-trimmed, with an optional 0x/0X prefix parsed as base 16,
// otherwise base 10.
func parseIntString(s string) (Value, error) {
	trimmed := strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		base = 16
		trimmed = trimmed[2:]
	}
	n, err := strconv.ParseInt(trimmed, base, 64)
	if err != nil {
		return Void(), runtimeErrorf("cannot convert %q to int", s)
	}
	return Int(n), nil
}

func parseDoubleString(s string) (Value, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Void(), runtimeErrorf("cannot convert %q to double", s)
	}
	return Double(f), nil
}
