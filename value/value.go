// Package value defines Pusl's dynamically-typed value representation: a
// tagged union over Null, Boolean, Integer, Float, String, Object and
// Function, plus the heap-allocated payload types (strings, objects,
// bound function closures) that back the managed variants.
//
// Grounded on the teacher's objects package (GoMixType constants,
// GoMixObject interface, ExtractValue) generalized from a Go-interface
// dispatch model to a tagged struct, because Pusl values clone by value
// (copying tag+payload, never deep-copying the payload) the way spec.md
// §3 requires.
package value

import (
	"fmt"

	"github.com/pusl-lang/pusl/gc"
)

// Tag identifies which variant a Value currently holds.
type Tag uint8

const (
	TagNull Tag = iota
	TagBoolean
	TagInteger
	TagFloat
	TagString
	TagObject
	TagFunction
)

// String gives a Tag its type_of-style name, per SPEC_FULL.md §3.
func (t Tag) String() string {
	switch t {
	case TagNull:
		return "null"
	case TagBoolean:
		return "boolean"
	case TagInteger:
		return "integer"
	case TagFloat:
		return "float"
	case TagString:
		return "string"
	case TagObject:
		return "object"
	case TagFunction:
		return "function"
	default:
		return "unknown"
	}
}

// FunctionTarget is either a native function (NativeIndex >= 0) or a
// bound script-function closure (Bound != nil), optionally paired with a
// bound `this` established at field-access time rather than call time
// (spec.md §9: "Function values carry an optional this...").
type FunctionTarget struct {
	NativeIndex int      // index into the VM's native registry, or -1
	Bound       *gc.Cell // *BoundFunctionData cell, or nil for natives
	This        *Value   // bound receiver, nil if unbound
}

// Value is Pusl's tagged-union runtime value. Cloning a Value (ordinary Go
// assignment) copies the tag and payload; for String/Object/Function the
// payload is a reference into the heap, so cloning produces a second
// reference rather than a deep copy, exactly as spec.md §3 requires.
type Value struct {
	Tag   Tag
	Bool  bool
	Int   int64
	Float float64
	Ref   *gc.Cell // owning cell for String/Object
	Fn    FunctionTarget
}

// Null is the singleton null value.
func Null() Value { return Value{Tag: TagNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{Tag: TagBoolean, Bool: b} }

// Int wraps a signed 64-bit integer.
func Int(i int64) Value { return Value{Tag: TagInteger, Int: i} }

// Float wraps an IEEE-754 double.
func Float(f float64) Value { return Value{Tag: TagFloat, Float: f} }

// Str wraps a reference to a heap-allocated StringData cell.
func Str(cell *gc.Cell) Value { return Value{Tag: TagString, Ref: cell} }

// Obj wraps a reference to a heap-allocated ObjectData cell.
func Obj(cell *gc.Cell) Value { return Value{Tag: TagObject, Ref: cell} }

// Func wraps a function target (native or bound).
func Func(target FunctionTarget) Value { return Value{Tag: TagFunction, Fn: target} }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.Tag == TagNull }

// IsTruthy implements Pusl's truthiness rule for conditional opcodes:
// null and false are falsy, everything else (including 0 and "") is
// truthy. This mirrors the teacher's approach of giving every literal a
// direct, unambiguous boolean coercion rather than language-specific
// falsy-string/zero rules.
func (v Value) IsTruthy() bool {
	switch v.Tag {
	case TagNull:
		return false
	case TagBoolean:
		return v.Bool
	default:
		return true
	}
}

// StringData is the payload of a managed string cell. Strings are
// immutable once allocated: every concatenation or conversion allocates a
// fresh cell.
type StringData struct {
	Value string
}

// Trace is a no-op: strings hold no outgoing managed references.
func (StringData) Trace(func(*gc.Cell)) {}

// ObjectData is the payload of a managed object cell: an optional parent
// (prototype) cell and a name-to-value field map. Field lookup falls
// through to Parent on miss; assignment without `let` never traverses to
// Parent (spec.md §3 "Object").
// IsList and Elements back Pusl's one concrete managed-object sub-kind: a
// list. Grounded on original_source/pusl_lang's list.rs, which attaches a
// side-table `Vec<Value>` to an ordinary object cell rather than giving
// lists their own Value tag; ListAccess/AssignList/NewList operate on
// Elements directly, while `push`/`pop`/`size`/`at` are ordinary native
// fields resolved (and `this`-bound) through the same FieldAccess path as
// any other object method.
type ObjectData struct {
	Parent   *gc.Cell
	Fields   map[string]Value
	IsList   bool
	Elements []Value
}

// NewObjectData allocates the map eagerly, mirroring teacher's
// NewStructInstance eager-map-init convention.
func NewObjectData(parent *gc.Cell) *ObjectData {
	return &ObjectData{Parent: parent, Fields: make(map[string]Value)}
}

// NewListData allocates an empty list object (IsList=true, Elements
// non-nil so it's distinguishable from a plain Object even when empty).
func NewListData() *ObjectData {
	return &ObjectData{Fields: make(map[string]Value), IsList: true, Elements: []Value{}}
}

// Trace marks the parent cell, every field value's outgoing reference,
// and every list element's outgoing reference.
func (o *ObjectData) Trace(mark func(*gc.Cell)) {
	if o.Parent != nil {
		mark(o.Parent)
	}
	for _, v := range o.Fields {
		v.trace(mark)
	}
	for _, v := range o.Elements {
		v.trace(mark)
	}
}

// Get performs prototype-chain field lookup: this object's own fields
// first, then the parent chain. The second return is false only if no
// object in the chain owns the field.
func (o *ObjectData) Get(name string) (Value, bool) {
	if v, ok := o.Fields[name]; ok {
		return v, true
	}
	if o.Parent != nil {
		if parent, ok := o.Parent.Data.(*ObjectData); ok {
			return parent.Get(name)
		}
	}
	return Value{}, false
}

// HasOwn reports whether name is a field on this object itself, ignoring
// the parent chain — used to implement plain (non-let) assignment, which
// must fail rather than silently create a field on an ancestor.
func (o *ObjectData) HasOwn(name string) bool {
	_, ok := o.Fields[name]
	return ok
}

// NativeContext is the surface a native function needs from its host VM:
// enough to allocate managed cells for return values (e.g. a new String or
// Object) and to write to the program's output stream. Kept minimal and
// defined here (rather than in a vm package that would import this one) so
// both `builtins` and `vm` can depend on value without a cycle.
type NativeContext interface {
	Heap() *gc.Heap
	Print(s string)
}

// Native is a built-in function's Go implementation: given the calling
// context, the call's arguments, and the bound receiver (Null if none),
// it returns a value or a runtime error. Mirrors spec.md §4.4's native
// call convention "(args, this, state)".
type Native func(ctx NativeContext, args []Value, this Value) (Value, error)

// BoundFunctionData pairs a resolved script function with its captured
// binding values (closure-over-free-variables). The Fn field is typed by
// the ResolvedFunction interface below; its concrete type lives in the
// compiler package, so value never imports compiler.
type BoundFunctionData struct {
	Fn        ResolvedFunction
	Captured  []Value
}

// ResolvedFunction is the minimal surface the value package needs from a
// linearized, import-resolved function: its bind-name list, used here
// only to size and trace the captured-value vector. The compiler package
// defines the concrete type satisfying this interface.
type ResolvedFunction interface {
	BindNames() []string
}

// Trace marks every captured value's outgoing reference.
func (b *BoundFunctionData) Trace(mark func(*gc.Cell)) {
	for _, v := range b.Captured {
		v.trace(mark)
	}
}

// trace marks v's own outgoing reference(s), used by ObjectData.Trace and
// BoundFunctionData.Trace so every container type shares one
// implementation instead of duplicating the switch.
func (v Value) trace(mark func(*gc.Cell)) {
	switch v.Tag {
	case TagString, TagObject:
		if v.Ref != nil {
			mark(v.Ref)
		}
	case TagFunction:
		if v.Fn.Bound != nil {
			mark(v.Fn.Bound)
		}
		if v.Fn.This != nil {
			v.Fn.This.trace(mark)
		}
	}
}

// Trace implements gc.Anchor directly on Value so individual values (a
// frame's `this`, a single operand) can be used as GC roots without a
// wrapper slice type.
func (v Value) Trace(mark func(*gc.Cell)) {
	v.trace(mark)
}

// AsString extracts the Go string behind a String value. Panics if v is
// not a string or its cell has been freed prematurely — callers must type
// check with v.Tag first, matching the teacher's ExtractValue contract of
// "caller already knows the type".
func (v Value) AsString() string {
	return v.Ref.Data.(*StringData).Value
}

// AsObject extracts the *ObjectData behind an Object value.
func (v Value) AsObject() *ObjectData {
	return v.Ref.Data.(*ObjectData)
}

// Format renders a value as text; used by print/println and the REPL's
// result echo.
func (v Value) Format() string {
	switch v.Tag {
	case TagNull:
		return "null"
	case TagBoolean:
		return fmt.Sprintf("%t", v.Bool)
	case TagInteger:
		return fmt.Sprintf("%d", v.Int)
	case TagFloat:
		return fmt.Sprintf("%g", v.Float)
	case TagString:
		return v.AsString()
	case TagObject:
		return "<object>"
	case TagFunction:
		return "<function>"
	default:
		return "<unknown>"
	}
}
