// Package builtins registers Pusl's native (Go-implemented) surface: the
// handful of free functions every program can reach without an import
// (print, println, type_of, the Object constructor) and the list
// primitives (push, pop, size, at) wired as fields on every list object.
//
// Grounded on the teacher's std package (std/builtins.go's Builtin{Name,
// Callback} registry-by-append convention, std/list.go's list-method
// surface), generalized from the teacher's GoMixObject interface dispatch
// to Pusl's tagged value.Value plus value.Native function-pointer
// convention, since Pusl's VM calls natives through a plain Go func value
// rather than a type-switched interface method.
package builtins

import (
	"fmt"
	"strings"

	"github.com/pusl-lang/pusl/value"
)

// Host is the minimal surface builtins needs from its owning VM: enough to
// allocate heap cells and write output (value.NativeContext), plus the
// ability to register a native function and install a name into the
// builtins map consulted last by PushReference/PushBuiltin. Defined here
// rather than depending on package vm, so vm can depend on builtins
// without a cycle.
type Host interface {
	value.NativeContext
	RegisterNative(fn value.Native) int
	SetBuiltin(name string, val value.Value)
}

// ListIndices hands back the native registry slots list.go's four
// primitives landed in, so the vm package can wire them as fields on every
// freshly allocated list object (OpNewList) without either package
// depending on the other's internals beyond this plain struct.
type ListIndices struct {
	Push, Pop, Size, At int
}

// Install registers every builtin's native implementation with h and
// returns the list-primitive indices for the caller to wire into list
// objects.
func Install(h Host) ListIndices {
	h.SetBuiltin("print", nativeFn(h.RegisterNative(printNative)))
	h.SetBuiltin("println", nativeFn(h.RegisterNative(printlnNative)))
	h.SetBuiltin("type_of", nativeFn(h.RegisterNative(typeOfNative)))
	h.SetBuiltin("Object", nativeFn(h.RegisterNative(objectNative)))

	return ListIndices{
		Push: h.RegisterNative(listPush),
		Pop:  h.RegisterNative(listPop),
		Size: h.RegisterNative(listSize),
		At:   h.RegisterNative(listAt),
	}
}

func nativeFn(idx int) value.Value {
	return value.Func(value.FunctionTarget{NativeIndex: idx})
}

// display renders a value the way print/println show it: strings print
// unquoted, everything else uses Value.Format.
func display(v value.Value) string {
	if v.Tag == value.TagString {
		return v.AsString()
	}
	return v.Format()
}

func printNative(ctx value.NativeContext, args []value.Value, _ value.Value) (value.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = display(a)
	}
	ctx.Print(strings.Join(parts, " "))
	return value.Null(), nil
}

func printlnNative(ctx value.NativeContext, args []value.Value, _ value.Value) (value.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = display(a)
	}
	ctx.Print(strings.Join(parts, " ") + "\n")
	return value.Null(), nil
}

func typeOfNative(ctx value.NativeContext, args []value.Value, _ value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, fmt.Errorf("type_of expects 1 argument, got %d", len(args))
	}
	cell := ctx.Heap().Alloc(&value.StringData{Value: args[0].Tag.String()})
	return value.Str(cell), nil
}

// objectNative constructs a new plain (non-list) object: with no
// arguments its parent is nil; with one argument, that argument becomes
// its prototype parent.
func objectNative(ctx value.NativeContext, args []value.Value, _ value.Value) (value.Value, error) {
	switch len(args) {
	case 0:
		return value.Obj(ctx.Heap().Alloc(value.NewObjectData(nil))), nil
	case 1:
		if args[0].Tag != value.TagObject {
			return value.Value{}, fmt.Errorf("Object(parent) expects an object, got %s", args[0].Tag)
		}
		return value.Obj(ctx.Heap().Alloc(value.NewObjectData(args[0].Ref))), nil
	default:
		return value.Value{}, fmt.Errorf("Object expects 0 or 1 arguments, got %d", len(args))
	}
}
