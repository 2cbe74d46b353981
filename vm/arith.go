package vm

import (
	"math"

	"github.com/pusl-lang/pusl/parser"
	"github.com/pusl-lang/pusl/value"
)

// Arithmetic/comparison semantics grounded on
// original_source/pusl_lang/src/backend/mod.rs's addition/subtraction/
// multiplication/division/truncate_division/exponent/modulus/logic/compare
// free functions, translated from Rust match-on-variant to Go type
// switches, and on spec.md §4.4/§8's promotion-rule restatement of the
// same behavior (int op int stays int except division/exponent, which
// always promote to float; mixing int/float always promotes to float
// except truncating division, which always yields int).

func addition(lhs, rhs value.Value) (value.Value, error) {
	switch lhs.Tag {
	case value.TagInteger:
		switch rhs.Tag {
		case value.TagInteger:
			return value.Int(lhs.Int + rhs.Int), nil
		case value.TagFloat:
			return value.Float(float64(lhs.Int) + rhs.Float), nil
		}
	case value.TagFloat:
		switch rhs.Tag {
		case value.TagInteger:
			return value.Float(lhs.Float + float64(rhs.Int)), nil
		case value.TagFloat:
			return value.Float(lhs.Float + rhs.Float), nil
		}
	case value.TagString:
		if rhs.Tag == value.TagString {
			return value.Value{}, errNeedsHeap // concatenation needs a heap allocation; exec.go's OpAddition does it
		}
	}
	return value.Value{}, newRuntimeErr(WrongType, "invalid operands for addition")
}

// errNeedsHeap is what addition reports for two strings: concatenation is
// the one arithmetic case that needs to allocate a new managed cell, so
// exec.go's OpAddition concatenates two strings itself before it ever
// calls addition.
var errNeedsHeap = newRuntimeErr(WrongType, "string concatenation requires heap access")

func subtraction(lhs, rhs value.Value) (value.Value, error) {
	switch lhs.Tag {
	case value.TagInteger:
		switch rhs.Tag {
		case value.TagInteger:
			return value.Int(lhs.Int - rhs.Int), nil
		case value.TagFloat:
			return value.Float(float64(lhs.Int) - rhs.Float), nil
		}
	case value.TagFloat:
		switch rhs.Tag {
		case value.TagInteger:
			return value.Float(lhs.Float - float64(rhs.Int)), nil
		case value.TagFloat:
			return value.Float(lhs.Float - rhs.Float), nil
		}
	}
	return value.Value{}, newRuntimeErr(WrongType, "invalid operands for subtraction")
}

func multiply(lhs, rhs value.Value) (value.Value, error) {
	switch lhs.Tag {
	case value.TagInteger:
		switch rhs.Tag {
		case value.TagInteger:
			return value.Int(lhs.Int * rhs.Int), nil
		case value.TagFloat:
			return value.Float(float64(lhs.Int) * rhs.Float), nil
		}
	case value.TagFloat:
		switch rhs.Tag {
		case value.TagInteger:
			return value.Float(lhs.Float * float64(rhs.Int)), nil
		case value.TagFloat:
			return value.Float(lhs.Float * rhs.Float), nil
		}
	}
	return value.Value{}, newRuntimeErr(WrongType, "invalid operands for multiplication")
}

// divide always yields a float (spec.md §8 "int / int always yields a
// float"), even for two integers.
func divide(lhs, rhs value.Value) (value.Value, error) {
	l, okL := asFloat(lhs)
	r, okR := asFloat(rhs)
	if !okL || !okR {
		return value.Value{}, newRuntimeErr(WrongType, "invalid operands for division")
	}
	if r == 0 {
		return value.Value{}, newRuntimeErr(DivideByZero, "division by zero")
	}
	return value.Float(l / r), nil
}

// divideTruncate always yields an integer.
func divideTruncate(lhs, rhs value.Value) (value.Value, error) {
	l, okL := asFloat(lhs)
	r, okR := asFloat(rhs)
	if !okL || !okR {
		return value.Value{}, newRuntimeErr(WrongType, "invalid operands for truncating division")
	}
	if r == 0 {
		return value.Value{}, newRuntimeErr(DivideByZero, "division by zero")
	}
	return value.Int(int64(l / r)), nil
}

// exponent always yields a float (spec.md §8 "int ** int yields a float").
func exponent(lhs, rhs value.Value) (value.Value, error) {
	l, okL := asFloat(lhs)
	r, okR := asFloat(rhs)
	if !okL || !okR {
		return value.Value{}, newRuntimeErr(WrongType, "invalid operands for exponent")
	}
	return value.Float(math.Pow(l, r)), nil
}

// modulus is integer-only (spec.md §3/§8).
func modulus(lhs, rhs value.Value) (value.Value, error) {
	if lhs.Tag != value.TagInteger || rhs.Tag != value.TagInteger {
		return value.Value{}, newRuntimeErr(WrongType, "modulus requires integer operands")
	}
	if rhs.Int == 0 {
		return value.Value{}, newRuntimeErr(DivideByZero, "modulus by zero")
	}
	return value.Int(lhs.Int % rhs.Int), nil
}

func negate(v value.Value) (value.Value, error) {
	switch v.Tag {
	case value.TagBoolean:
		return value.Bool(!v.Bool), nil
	case value.TagInteger:
		return value.Int(-v.Int), nil
	case value.TagFloat:
		return value.Float(-v.Float), nil
	default:
		return value.Value{}, newRuntimeErr(WrongType, "cannot negate %s", v.Tag)
	}
}

// logic implements And/Or: eager (both operands already evaluated by the
// linearizer — see DESIGN.md) boolean or integer bitwise combination,
// matching original_source's `logic(lhs, rhs, is_and)`.
func logic(lhs, rhs value.Value, isAnd bool) (value.Value, error) {
	switch lhs.Tag {
	case value.TagBoolean:
		if rhs.Tag != value.TagBoolean {
			return value.Value{}, newRuntimeErr(WrongType, "logical operator requires matching boolean operands")
		}
		if isAnd {
			return value.Bool(lhs.Bool && rhs.Bool), nil
		}
		return value.Bool(lhs.Bool || rhs.Bool), nil
	case value.TagInteger:
		if rhs.Tag != value.TagInteger {
			return value.Value{}, newRuntimeErr(WrongType, "logical operator requires matching integer operands")
		}
		if isAnd {
			return value.Int(lhs.Int & rhs.Int), nil
		}
		return value.Int(lhs.Int | rhs.Int), nil
	default:
		return value.Value{}, newRuntimeErr(WrongType, "logical operator requires boolean or integer operands")
	}
}

func asFloat(v value.Value) (float64, bool) {
	switch v.Tag {
	case value.TagInteger:
		return float64(v.Int), true
	case value.TagFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

// compareNumeric orders two numeric operands for Compare's ordering sub-
// ops and for ComparisonJump. Non-numeric operands are only ever valid
// for equality/inequality, handled separately by valuesEqual.
func compareNumeric(lhs, rhs value.Value) (int, bool) {
	l, okL := asFloat(lhs)
	r, okR := asFloat(rhs)
	if !okL || !okR {
		return 0, false
	}
	switch {
	case l < r:
		return -1, true
	case l > r:
		return 1, true
	default:
		return 0, true
	}
}

// valuesEqual implements structural equality for the same-tag path
// (spec.md §4.4 "structural equality for the same-tag path"): numbers
// compare by value across int/float, strings by content, booleans by
// value, null equals null, objects/functions by reference identity.
func valuesEqual(lhs, rhs value.Value) bool {
	if lhs.Tag == value.TagInteger || lhs.Tag == value.TagFloat {
		if rhs.Tag == value.TagInteger || rhs.Tag == value.TagFloat {
			l, _ := asFloat(lhs)
			r, _ := asFloat(rhs)
			return l == r
		}
		return false
	}
	if lhs.Tag != rhs.Tag {
		return false
	}
	switch lhs.Tag {
	case value.TagNull:
		return true
	case value.TagBoolean:
		return lhs.Bool == rhs.Bool
	case value.TagString:
		return lhs.AsString() == rhs.AsString()
	case value.TagObject:
		return lhs.Ref == rhs.Ref
	case value.TagFunction:
		return lhs.Fn.Bound == rhs.Fn.Bound && lhs.Fn.NativeIndex == rhs.Fn.NativeIndex
	default:
		return false
	}
}

// compare evaluates Compare(op): equality ops use valuesEqual, ordering
// ops use compareNumeric (numeric promotion rule, spec.md §8).
func compare(lhs, rhs value.Value, op parser.CompareOp) (value.Value, error) {
	switch op {
	case parser.CmpEq:
		return value.Bool(valuesEqual(lhs, rhs)), nil
	case parser.CmpNe:
		return value.Bool(!valuesEqual(lhs, rhs)), nil
	}
	ord, ok := compareNumeric(lhs, rhs)
	if !ok {
		return value.Value{}, newRuntimeErr(WrongType, "ordering comparison requires numeric operands")
	}
	switch op {
	case parser.CmpLt:
		return value.Bool(ord < 0), nil
	case parser.CmpLe:
		return value.Bool(ord <= 0), nil
	case parser.CmpGt:
		return value.Bool(ord > 0), nil
	case parser.CmpGe:
		return value.Bool(ord >= 0), nil
	default:
		return value.Value{}, newRuntimeErr(WrongType, "unknown compare op")
	}
}
