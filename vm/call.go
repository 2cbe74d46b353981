package vm

import (
	"github.com/pusl-lang/pusl/compiler"
	"github.com/pusl-lang/pusl/value"
)

// dispatchCall implements both FunctionCall(n) and MethodCall(n). The two
// differ only in stack shape at the call site: a MethodCall's lowering
// (compiler/linearize.go) leaves one extra value — the method's receiver,
// duplicated purely so FieldAccess could consult it for this-binding —
// sitting below the function value. That duplicate is no longer needed by
// the time MethodCall executes: FieldAccess's auto-this-bind rule already
// gave the function value the right bound this (the receiver, if the field
// was an unbound function; its own prior this otherwise), so MethodCall
// simply discards the leftover receiver and calls exactly like
// FunctionCall. This mirrors the original VM, which has no distinct
// MethodCall opcode at all — every call is dispatched the same way once
// the function value is on top of the stack.
func (v *VM) dispatchCall(f *Frame, isMethod bool, n int) (value.Value, error) {
	if n > len(f.Operands) {
		return value.Value{}, newRuntimeErr(StackUnderflow, "not enough arguments on stack for call of %d", n)
	}
	split := len(f.Operands) - n
	args := append([]value.Value(nil), f.Operands[split:]...)
	f.Operands = f.Operands[:split]

	fnVal, err := f.pop()
	if err != nil {
		return value.Value{}, err
	}
	if isMethod {
		if _, err := f.pop(); err != nil {
			return value.Value{}, err
		}
	}

	if fnVal.Tag != value.TagFunction {
		return value.Value{}, newRuntimeErr(WrongType, "cannot call a %s value", fnVal.Tag)
	}

	this := value.Null()
	if fnVal.Fn.This != nil {
		this = *fnVal.Fn.This
	}

	if fnVal.Fn.NativeIndex >= 0 {
		if fnVal.Fn.NativeIndex >= len(v.natives) {
			return value.Value{}, newRuntimeErr(WrongType, "native function handle out of range")
		}
		return v.natives[fnVal.Fn.NativeIndex](v, args, this)
	}

	if fnVal.Fn.Bound == nil {
		return value.Value{}, newRuntimeErr(WrongType, "function value has no bound closure")
	}
	bound, ok := fnVal.Fn.Bound.Data.(*value.BoundFunctionData)
	if !ok {
		return value.Value{}, newRuntimeErr(WrongType, "function value has no bound closure")
	}
	rf, ok := bound.Fn.(*compiler.ResolvedFunction)
	if !ok {
		return value.Value{}, newRuntimeErr(WrongType, "closure targets an unresolved function")
	}
	if len(rf.Params) != len(args) {
		return value.Value{}, newRuntimeErr(WrongArity, "function %v expects %d argument(s), got %d", rf.Params, len(rf.Params), len(args))
	}

	newF := newFrame(rf, fnVal.Fn.Bound, bound.Captured, fnVal, args, this)
	v.frames = append(v.frames, newF)
	return run(v)
}

// tryCatchDispatch checks whether callIP (the index of the call instruction
// that just returned a Yeet) falls inside one of f's own try/yoink regions.
// If so, it pushes the yeeted value (the handler code, per lowerTry, starts
// with ScopeUp + AssignReference(let) expecting exactly that) and redirects
// f's instruction pointer to the handler, and reports true. A Yeet that
// matches no catch region in f is left for an enclosing frame (or the
// program's top level) to deal with.
func tryCatchDispatch(f *Frame, callIP int, yt *Yeet) bool {
	for _, c := range f.Fn.Catches {
		if callIP >= c.Start && callIP < c.End {
			f.push(yt.Value)
			f.IP = c.Handler
			return true
		}
	}
	return false
}
