package types

// BinaryKind identifies a binary operator independent of its source token.
type BinaryKind int

const (
	BinAdd BinaryKind = iota
	BinSub
	BinMul
	BinDiv
	BinEq
	BinNeq
	BinLt
	BinLte
	BinGt
	BinGte
	BinAnd
	BinOr
)

// UnaryKind identifies a unary operator independent of its source token.
type UnaryKind int

const (
	UnPlus UnaryKind = iota
	UnMinus
	UnNot
	UnIncPrefix
	UnDecPrefix
	UnIncPostfix
	UnDecPostfix
)

// BoundOperator is the record the binder attaches to a bound Binary node
// once operator resolution succeeds: the operator
// kind together with its fixed operand and result types, per the
// centralised operator-table design (one place, not scattered casework in
// the binder).
type BoundOperator struct {
	BinaryKind BinaryKind
	LeftType   *Type
	RightType  *Type
	ResultType *Type
}

// BoundUnaryOperator is the equivalent record for prefix/postfix operators.
type BoundUnaryOperator struct {
	UnaryKind   UnaryKind
	OperandType *Type
	ResultType  *Type
}

// ResolveBinary implements §4.3's binary operator resolution table. ok is
// false when the operator is undefined for (left, right), which the
// binder turns into a diagnostic.
func ResolveBinary(kind BinaryKind, left, right *Type) (*BoundOperator, bool) {
	switch kind {
	case BinEq, BinNeq:
		switch {
		case left.Equal(right), left.IsNumeric() && right.IsNumeric(), left.IsAny(), right.IsAny():
			return &BoundOperator{kind, left, right, Bool}, true
		}
		return nil, false

	case BinLt, BinLte, BinGt, BinGte:
		if (left.IsNumeric() && right.IsNumeric()) || left.IsAny() || right.IsAny() {
			return &BoundOperator{kind, left, right, Bool}, true
		}
		return nil, false

	case BinAdd:
		if left.Kind == KindString || right.Kind == KindString {
			return &BoundOperator{kind, left, right, String}, true
		}
		if left.IsNumeric() && right.IsNumeric() {
			return &BoundOperator{kind, left, right, numericResult(left, right)}, true
		}
		if left.IsAny() || right.IsAny() {
			return &BoundOperator{kind, left, right, Any}, true
		}
		return nil, false

	case BinSub, BinMul, BinDiv:
		if left.IsNumeric() && right.IsNumeric() {
			return &BoundOperator{kind, left, right, numericResult(left, right)}, true
		}
		if left.IsAny() || right.IsAny() {
			return &BoundOperator{kind, left, right, Any}, true
		}
		return nil, false

	case BinAnd, BinOr:
		if (left.Kind == KindBool && right.Kind == KindBool) || left.IsAny() || right.IsAny() {
			return &BoundOperator{kind, left, right, Bool}, true
		}
		return nil, false
	}
	return nil, false
}

// numericResult implements "Double if either side is Double, otherwise
// Int" for arithmetic on two concretely-numeric operands.
func numericResult(left, right *Type) *Type {
	if left.Kind == KindDouble || right.Kind == KindDouble {
		return Double
	}
	return Int
}

// ResolveUnary implements §4.3's unary operator resolution.
func ResolveUnary(kind UnaryKind, operand *Type) (*BoundUnaryOperator, bool) {
	switch kind {
	case UnPlus, UnMinus, UnIncPrefix, UnDecPrefix, UnIncPostfix, UnDecPostfix:
		if operand.IsNumeric() || operand.IsAny() {
			return &BoundUnaryOperator{kind, operand, operand}, true
		}
		return nil, false
	case UnNot:
		if operand.Kind == KindBool || operand.IsAny() {
			return &BoundUnaryOperator{kind, operand, operand}, true
		}
		return nil, false
	}
	return nil, false
}

// CanConvert implements §4.3's BoundConversion eligibility rules used by
// assignment and by explicit TypeName(expr) calls. allowStringSource
// additionally allows a String source for numeric/bool targets, which is
// only legal in the explicit call-form (int(x)), not implicit assignment.
func CanConvert(from, to *Type, allowStringSource bool) bool {
	if from.Equal(to) {
		return true
	}
	if from.IsAny() || to.IsAny() {
		return true
	}
	if to.Kind == KindBool && from.IsNumeric() {
		return true
	}
	if from.Kind == KindInt && to.Kind == KindDouble {
		return true
	}
	if allowStringSource && from.Kind == KindString && (to.IsNumeric() || to.Kind == KindBool) {
		return true
	}
	return false
}
