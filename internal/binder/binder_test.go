package binder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aspid-lang/aspid/internal/boundtree"
	"github.com/aspid-lang/aspid/internal/parser"
	"github.com/aspid-lang/aspid/internal/types"
)

func bindSource(t *testing.T, src string) (*boundtree.Program, *Binder) {
	t.Helper()
	prog, diags := parser.Parse(src)
	require.Empty(t, diags, "unexpected parse diagnostics")
	b := New()
	bound := b.BindProgram(prog)
	return bound, b
}

func TestBindVariableDeclarationInfersIntLiteral(t *testing.T) {
	bound, b := bindSource(t, "x: int = 10\n")
	require.Empty(t, b.Diagnostics())

	decl, ok := bound.Statements[0].(*boundtree.VariableDeclaration)
	require.True(t, ok, "expected VariableDeclaration, got %T", bound.Statements[0])
	assert.True(t, decl.Type.Equal(types.Int), "declared type = %s, want int", decl.Type)
}

func TestBindVariableDeclarationWidensIntToDouble(t *testing.T) {
	bound, b := bindSource(t, "x: double = 10\n")
	require.Empty(t, b.Diagnostics())

	decl := bound.Statements[0].(*boundtree.VariableDeclaration)
	_, ok := decl.Initializer.(*boundtree.Conversion)
	assert.True(t, ok, "assigning an int literal to a double variable should insert a Conversion, got %T", decl.Initializer)
}

func TestBindVariableDeclarationRejectsIncompatibleType(t *testing.T) {
	_, b := bindSource(t, "x: int = \"hi\"\n")
	assert.NotEmpty(t, b.Diagnostics(), "assigning a string literal to an int variable should be a diagnostic")
}

func TestBindDuplicateDeclarationInSameScopeIsAnError(t *testing.T) {
	_, b := bindSource(t, "x: int = 1\nx: int = 2\n")
	assert.NotEmpty(t, b.Diagnostics(), "re-declaring x in the same scope should be a diagnostic")
}

func TestBindUndeclaredVariableReferenceIsAnError(t *testing.T) {
	_, b := bindSource(t, "print(y)\n")
	assert.NotEmpty(t, b.Diagnostics(), "referencing an undeclared variable should be a diagnostic")
}

func TestBindIfConditionMustBeBool(t *testing.T) {
	_, b := bindSource(t, "if 1:\n    print(1)\n")
	assert.NotEmpty(t, b.Diagnostics(), "an int condition on if should be a diagnostic (only bool is accepted; any is rejected too)")
}

func TestBindShadowingInNestedBlockDoesNotErrorOuter(t *testing.T) {
	bound, b := bindSource(t, "x: int = 1\nif true:\n    x: int = 2\n    print(x)\nprint(x)\n")
	require.Empty(t, b.Diagnostics(), "shadowing in a nested block should not error")

	ifStmt := bound.Statements[1].(*boundtree.If)
	inner := ifStmt.Then.(*boundtree.Block)
	innerDecl := inner.Statements[0].(*boundtree.VariableDeclaration)
	assert.True(t, innerDecl.Type.Equal(types.Int), "inner declaration type = %s, want int", innerDecl.Type)
}

func TestBindFunctionDeclarationParametersDefaultToAny(t *testing.T) {
	bound, b := bindSource(t, "fn greet(name):\n    return name\n")
	require.Empty(t, b.Diagnostics())

	fn := bound.Statements[0].(*boundtree.FunctionDeclaration)
	require.Len(t, fn.Symbol.Parameters, 1)
	assert.True(t, fn.Symbol.Parameters[0].Type.IsAny(), "unannotated parameter should default to Any, got %+v", fn.Symbol.Parameters[0])
}

func TestBindCallArityMismatchIsAnError(t *testing.T) {
	_, b := bindSource(t, "fn add(a, b):\n    return a\nadd(1)\n")
	assert.NotEmpty(t, b.Diagnostics(), "calling add with the wrong number of arguments should be a diagnostic")
}

func TestBindCallToUndeclaredFunctionIsAnError(t *testing.T) {
	_, b := bindSource(t, "mystery(1)\n")
	assert.NotEmpty(t, b.Diagnostics(), "calling an undeclared function should be a diagnostic")
}

func TestBindBuiltinPrintAcceptsAnyArgument(t *testing.T) {
	_, b := bindSource(t, "print(\"hi\")\nprint(5)\nprint(true)\n")
	assert.Empty(t, b.Diagnostics(), "print should accept any Any-typed argument for any literal type")
}

func TestBindForInOverArrayDeclaresElementType(t *testing.T) {
	bound, b := bindSource(t, "a: int[] = [1, 2, 3]\nfor n in a:\n    print(n)\n")
	require.Empty(t, b.Diagnostics())

	forIn := bound.Statements[1].(*boundtree.ForIn)
	assert.True(t, forIn.ElementType.Equal(types.Int), "for-in element type = %s, want int", forIn.ElementType)
}

func TestBindExplicitConversionCall(t *testing.T) {
	bound, b := bindSource(t, "s: string = \"42\"\nn: int = int(s)\n")
	require.Empty(t, b.Diagnostics())

	decl := bound.Statements[1].(*boundtree.VariableDeclaration)
	conv, ok := decl.Initializer.(*boundtree.Conversion)
	require.True(t, ok, "int(s) should bind to a Conversion, got %T", decl.Initializer)
	assert.True(t, conv.AllowStringSrc, "explicit conversion-call form should set AllowStringSrc")
}

func TestResetDiagnosticsClearsWithoutDisturbingScope(t *testing.T) {
	prog, diags := parser.Parse("x: int = 1\n")
	require.Empty(t, diags)

	b := New()
	b.BindProgram(prog)
	b.ResetDiagnostics()

	prog2, diags := parser.Parse("print(x)\n")
	require.Empty(t, diags)

	b.BindProgram(prog2)
	assert.Empty(t, b.Diagnostics(), "x should still be visible after ResetDiagnostics")
}
