package types

import "testing"

func TestResolveBinaryNumericResult(t *testing.T) {
	op, ok := ResolveBinary(BinAdd, Int, Double)
	if !ok {
		t.Fatal("int + double should resolve")
	}
	if !op.ResultType.Equal(Double) {
		t.Errorf("int + double result = %s, want double", op.ResultType)
	}

	op, ok = ResolveBinary(BinMul, Int, Int)
	if !ok || !op.ResultType.Equal(Int) {
		t.Errorf("int * int should resolve to int, got %v ok=%v", op, ok)
	}
}

func TestResolveBinaryStringConcat(t *testing.T) {
	op, ok := ResolveBinary(BinAdd, String, Int)
	if !ok || !op.ResultType.Equal(String) {
		t.Errorf("string + int should resolve to string, got %v ok=%v", op, ok)
	}
}

func TestResolveBinaryAndOrAcceptsAny(t *testing.T) {
	op, ok := ResolveBinary(BinAnd, Any, Bool)
	if !ok {
		t.Fatal("any && bool should resolve")
	}
	if !op.ResultType.Equal(Bool) {
		t.Errorf("any && bool result = %s, want bool", op.ResultType)
	}

	if _, ok := ResolveBinary(BinAnd, Int, Bool); ok {
		t.Error("int && bool must not resolve")
	}
}

func TestResolveBinaryUndefined(t *testing.T) {
	if _, ok := ResolveBinary(BinSub, String, String); ok {
		t.Error("string - string must not resolve")
	}
}

func TestResolveUnary(t *testing.T) {
	if _, ok := ResolveUnary(UnNot, Int); ok {
		t.Error("!int must not resolve")
	}
	if op, ok := ResolveUnary(UnMinus, Double); !ok || !op.ResultType.Equal(Double) {
		t.Errorf("-double should resolve to double, got %v ok=%v", op, ok)
	}
}

func TestCanConvert(t *testing.T) {
	if !CanConvert(Int, Double, false) {
		t.Error("int -> double should be an implicit conversion")
	}
	if CanConvert(Double, Int, false) {
		t.Error("double -> int must not be implicit")
	}
	if CanConvert(String, Int, false) {
		t.Error("string -> int must require the explicit-call form")
	}
	if !CanConvert(String, Int, true) {
		t.Error("string -> int should be allowed in explicit conversion-call form")
	}
	if !CanConvert(Any, Bool, false) {
		t.Error("any should convert to anything")
	}
}
