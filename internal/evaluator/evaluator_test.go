package evaluator_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aspid-lang/aspid/internal/binder"
	"github.com/aspid-lang/aspid/internal/builtins"
	"github.com/aspid-lang/aspid/internal/evaluator"
	"github.com/aspid-lang/aspid/internal/parser"
)

// run binds and evaluates src one top-level statement at a time (the CLI's
// resume-at-next-statement policy) and returns everything print wrote plus
// the first runtime error, if any.
func run(t *testing.T, src string) (string, error) {
	t.Helper()
	prog, diags := parser.Parse(src)
	require.Empty(t, diags, "unexpected parse diagnostics")

	var out bytes.Buffer
	eval := evaluator.New()
	bi := evaluator.NewBuiltins()
	builtins.Install(bi, strings.NewReader(""), &out, nil)

	b := binder.New()
	var firstErr error
	for _, stmt := range prog.Statements {
		b.ResetDiagnostics()
		bound := b.BindStatement(stmt)
		require.Empty(t, b.Diagnostics(), "unexpected binder diagnostics")
		if _, err := eval.Run(bi, bound); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return out.String(), firstErr
}

func TestArithmeticPrecedence(t *testing.T) {
	out, err := run(t, "print(1 + 2 * 3)\n")
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)
}

func TestWhileLoopWithCompoundAssign(t *testing.T) {
	out, err := run(t, "i: int = 0\nwhile i < 3:\n    print(i)\n    i += 1\n")
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n2\n", out)
}

func TestRecursiveFactorial(t *testing.T) {
	src := "fn fact(n):\n    if n <= 1:\n        return 1\n    return n * fact(n - 1)\nprint(fact(5))\n"
	out, err := run(t, src)
	require.NoError(t, err)
	assert.Equal(t, "120\n", out)
}

func TestNegativeArrayIndexAndInPlaceMutation(t *testing.T) {
	src := "a: int[] = [10, 20, 30]\nprint(a[-1])\na[0] = 99\nprint(a)\n"
	out, err := run(t, src)
	require.NoError(t, err)
	assert.Equal(t, "30\n[99, 20, 30]\n", out)
}

func TestArrayIndexOutOfRangeIsARuntimeError(t *testing.T) {
	_, err := run(t, "a: int[] = [1, 2]\nprint(a[5])\n")
	assert.Error(t, err, "expected a runtime error for an out-of-range index")
}

func TestNoShortCircuitEvaluatesBothOperands(t *testing.T) {
	src := "fn loud(label, value):\n    print(label)\n    return value\nif loud(\"left\", false) && loud(\"right\", true):\n    print(\"entered\")\n"
	out, err := run(t, src)
	require.NoError(t, err)
	assert.Equal(t, "left\nright\n", out, "both operands of && must always evaluate")
}

func TestFStringInterpolation(t *testing.T) {
	src := "fn greet(name):\n    return f\"hello {name}\"\nprint(greet(\"world\"))\n"
	out, err := run(t, src)
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", out)
}

func TestClosureCapturesLiveScopeStack(t *testing.T) {
	src := "x: int = 1\nif true:\n    x: int = 2\n    fn reader():\n        return x\n    print(reader())\n"
	out, err := run(t, src)
	require.NoError(t, err)
	assert.Equal(t, "2\n", out, "closure should see the shadowed inner x")
}

func TestEpsilonTolerantDoubleEquality(t *testing.T) {
	out, err := run(t, "print(0.1 + 0.2 == 0.3)\n")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out, "0.1 + 0.2 should equal 0.3 under epsilon tolerance")
}

func TestReturnOutsideFunctionIsARuntimeError(t *testing.T) {
	_, err := run(t, "return 1\n")
	require.Error(t, err, "a top-level return should be a runtime error")
	assert.Contains(t, err.Error(), "return outside function")
}

func TestDoWhileRunsBodyAtLeastOnce(t *testing.T) {
	src := "i: int = 5\ndo:\n    print(i)\n    i += 1\nwhile i < 3\n"
	out, err := run(t, src)
	require.NoError(t, err)
	assert.Equal(t, "5\n", out, "do-while should run its body once even though the condition is already false")
}
