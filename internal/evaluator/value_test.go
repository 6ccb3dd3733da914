package evaluator

import "testing"

func TestIsTruthyOnlyBoolTrue(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{Bool(true), true},
		{Bool(false), false},
		{Int(1), false},
		{String("true"), false},
		{Void(), false},
	}
	for _, c := range cases {
		if got := c.v.IsTruthy(); got != c.want {
			t.Errorf("IsTruthy(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestAsNumericOnlyIntAndDouble(t *testing.T) {
	if _, ok := Int(5).AsNumeric(); !ok {
		t.Error("Int should be numeric")
	}
	if _, ok := Double(1.5).AsNumeric(); !ok {
		t.Error("Double should be numeric")
	}
	if _, ok := Bool(true).AsNumeric(); ok {
		t.Error("Bool should not be numeric")
	}
	if _, ok := String("3").AsNumeric(); ok {
		t.Error("String should not be numeric")
	}
}

func TestRenderList(t *testing.T) {
	v := List([]Value{Int(1), Int(2), String("x")})
	want := "[1, 2, x]"
	if got := v.Render(); got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestEqualCrossKindIsFalse(t *testing.T) {
	if Int(1).Equal(Double(1)) {
		t.Error("Int and Double with the same magnitude should not be Equal (different Kind)")
	}
}

func TestEqualListsElementwise(t *testing.T) {
	a := List([]Value{Int(1), Int(2)})
	b := List([]Value{Int(1), Int(2)})
	c := List([]Value{Int(1), Int(3)})
	if !a.Equal(b) {
		t.Error("equal-content lists should be Equal")
	}
	if a.Equal(c) {
		t.Error("differing-content lists should not be Equal")
	}
}
