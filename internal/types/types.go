// Package types defines Aspid's primitive and array type symbols, and the
// parameter/function symbols the binder resolves names to.
//
// The registry-and-symbol shape follows the teacher's
// internal/interp/types.TypeSystem; Aspid's type lattice is flat (no
// classes, records, interfaces) so the registry collapses to the handful
// of constructors below.
package types

import "fmt"

// Kind is the tag of a Type value.
type Kind int

const (
	KindInt Kind = iota
	KindDouble
	KindBool
	KindString
	KindVoid
	KindAny
	KindError
	KindArray
)

// Type is a resolved Aspid type. Primitive kinds are singletons; Array
// types compose with any element Type, including another Array.
type Type struct {
	Kind    Kind
	Element *Type // set only when Kind == KindArray
}

var (
	Int    = &Type{Kind: KindInt}
	Double = &Type{Kind: KindDouble}
	Bool   = &Type{Kind: KindBool}
	String = &Type{Kind: KindString}
	Void   = &Type{Kind: KindVoid}
	Any    = &Type{Kind: KindAny}
	Error  = &Type{Kind: KindError}
)

// ArrayOf returns a newly allocated Array type over element; array types
// are not interned, so compare them with Equal rather than by pointer.
func ArrayOf(element *Type) *Type {
	return &Type{Kind: KindArray, Element: element}
}

// IsNumeric reports whether t is Int or Double.
func (t *Type) IsNumeric() bool {
	return t != nil && (t.Kind == KindInt || t.Kind == KindDouble)
}

// IsAny reports whether t is the gradual-typing escape hatch.
func (t *Type) IsAny() bool {
	return t != nil && t.Kind == KindAny
}

// Equal reports structural equality: primitives compare by Kind, arrays
// compare element-wise.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind {
		return false
	}
	if t.Kind == KindArray {
		return t.Element.Equal(other.Element)
	}
	return true
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindVoid:
		return "void"
	case KindAny:
		return "any"
	case KindError:
		return "error"
	case KindArray:
		return t.Element.String() + "[]"
	default:
		return fmt.Sprintf("Type(%d)", t.Kind)
	}
}

// primitiveNames maps a bare type identifier (as written in source, before
// any "[]" suffixes) to its primitive Type. Returns (nil, false) for
// unknown names.
var primitiveNames = map[string]*Type{
	"int":    Int,
	"double": Double,
	"bool":   Bool,
	"string": String,
	"void":   Void,
	"any":    Any,
}

// Parse resolves a type identifier of the form `name("[]")*` — e.g. "int",
// "int[]", "int[][]" — into a Type, applying ArrayOf once per trailing
// "[]" suffix. Returns (nil, false) if the base name is not a known
// primitive.
func Parse(name string) (*Type, bool) {
	suffixes := 0
	base := name
	for len(base) >= 2 && base[len(base)-2:] == "[]" {
		suffixes++
		base = base[:len(base)-2]
	}
	prim, ok := primitiveNames[base]
	if !ok {
		return nil, false
	}
	t := prim
	for i := 0; i < suffixes; i++ {
		t = ArrayOf(t)
	}
	return t, true
}

// Parameter is a function parameter's resolved name and type.
type Parameter struct {
	Name string
	Type *Type
}

// Function is a resolved function symbol. Two Function values are the
// same symbol only if they are the same pointer: shadowed declarations of
// the same name get distinct Function values, so the evaluator's dispatch
// table can tell them apart the way a map keyed by name alone could not.
type Function struct {
	Name       string
	Parameters []Parameter
	ReturnType *Type
}

// NewFunction allocates a fresh function symbol. Each call returns a
// distinct pointer even when Name repeats, which is what gives
// shadowed/overloaded declarations distinguishable identity.
func NewFunction(name string, params []Parameter, returnType *Type) *Function {
	return &Function{Name: name, Parameters: params, ReturnType: returnType}
}

func (f *Function) String() string {
	return fmt.Sprintf("fn %s/%d", f.Name, len(f.Parameters))
}
