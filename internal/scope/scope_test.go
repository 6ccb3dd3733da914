package scope

import (
	"testing"

	"github.com/aspid-lang/aspid/internal/types"
)

func TestDeclareAndGetShadowing(t *testing.T) {
	outer := New[int]()
	outer.Declare("x", 1)

	inner := Enclosed(outer)
	inner.Declare("x", 2)

	if v, ok := inner.Get("x"); !ok || v != 2 {
		t.Errorf("inner.Get(x) = %v, %v, want 2, true", v, ok)
	}
	if v, ok := outer.Get("x"); !ok || v != 1 {
		t.Errorf("outer.Get(x) = %v, %v, want 1, true (shadowing must not overwrite the outer frame)", v, ok)
	}
}

func TestGetLocalDoesNotWalkOuter(t *testing.T) {
	outer := New[int]()
	outer.Declare("x", 1)
	inner := Enclosed(outer)

	if _, ok := inner.GetLocal("x"); ok {
		t.Error("GetLocal must not see outer-frame declarations")
	}
	if _, ok := inner.Get("x"); !ok {
		t.Error("Get must walk outward to find x")
	}
}

func TestAssignFindsDeclaringFrame(t *testing.T) {
	outer := New[int]()
	outer.Declare("x", 1)
	inner := Enclosed(outer)

	inner.Assign("x", 99)

	if v, _ := outer.Get("x"); v != 99 {
		t.Errorf("Assign should mutate the frame that declared x, got %d", v)
	}
	if _, ok := inner.GetLocal("x"); ok {
		t.Error("Assign must not create a new local binding when an outer frame already declares the name")
	}
}

func TestAssignUndeclaredCreatesLocal(t *testing.T) {
	s := New[int]()
	s.Assign("y", 7)
	if v, ok := s.GetLocal("y"); !ok || v != 7 {
		t.Errorf("Assign of an undeclared name should declare it locally, got %v, %v", v, ok)
	}
}

func TestFunctionLookupChain(t *testing.T) {
	outer := New[int]()
	fn := types.NewFunction("f", nil, types.Any)
	outer.DeclareFunction("f", fn)

	inner := Enclosed(outer)
	got, ok := inner.LookupFunction("f")
	if !ok || got != fn {
		t.Errorf("LookupFunction should find f via the outer chain, got %v, %v", got, ok)
	}
}

func TestAnyDeclared(t *testing.T) {
	s := New[int]()
	s.Declare("x", 1)
	s.DeclareFunction("f", types.NewFunction("f", nil, types.Any))

	if !s.AnyDeclared("x") || !s.AnyDeclared("f") {
		t.Error("AnyDeclared should see both variables and functions")
	}
	if s.AnyDeclared("nope") {
		t.Error("AnyDeclared should be false for an unknown name")
	}
}
