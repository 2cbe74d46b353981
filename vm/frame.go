package vm

import (
	"github.com/pusl-lang/pusl/compiler"
	"github.com/pusl-lang/pusl/gc"
	"github.com/pusl-lang/pusl/value"
)

// varEntry is one slot on a frame's variable stack: either a named
// binding or a scope-boundary marker that ScopeDown pops back to and
// through (spec.md §4.4 "Scoping").
type varEntry struct {
	boundary bool
	name     string
	value    value.Value
}

// Frame is one call's execution state (spec.md §3 "Stack frame"): an
// optional `this`, the bound-function closure being executed, an operand
// stack, a variable stack, and an instruction index into the closure's
// code.
type Frame struct {
	This     value.Value
	Closure  *gc.Cell // *value.BoundFunctionData cell anchoring captured values
	Fn       *compiler.ResolvedFunction
	Captured []value.Value // values bound to Fn.Binds, by matching index
	Operands []value.Value
	Vars     []varEntry
	IP       int
}

// newFrame seeds a fresh call frame's variable stack with the callee's
// parameters bound name-to-value, and, when selfName is non-empty (see
// compiler.Function.SelfName / DESIGN.md), an extra binding of the
// function's own name to its own bound-function value — the mechanism
// that makes named recursion work without requiring the closure to
// capture a not-yet-assigned outer binding. captured holds the closure's
// captured values in the same order as Fn.Binds, resolved by the caller
// (PushReference's captured-bindings lookup step matches name against
// Fn.Binds by index into this slice).
func newFrame(fn *compiler.ResolvedFunction, closure *gc.Cell, captured []value.Value, self value.Value, args []value.Value, this value.Value) *Frame {
	f := &Frame{This: this, Closure: closure, Fn: fn, Captured: captured}
	if fn.SelfName != "" {
		f.Vars = append(f.Vars, varEntry{name: fn.SelfName, value: self})
	}
	for i, p := range fn.Params {
		v := value.Null()
		if i < len(args) {
			v = args[i]
		}
		f.Vars = append(f.Vars, varEntry{name: p, value: v})
	}
	return f
}

func (f *Frame) push(v value.Value) {
	f.Operands = append(f.Operands, v)
}

func (f *Frame) pop() (value.Value, error) {
	n := len(f.Operands)
	if n == 0 {
		return value.Value{}, newRuntimeErr(StackUnderflow, "operand stack empty")
	}
	v := f.Operands[n-1]
	f.Operands = f.Operands[:n-1]
	return v, nil
}

func (f *Frame) peek() (value.Value, error) {
	n := len(f.Operands)
	if n == 0 {
		return value.Value{}, newRuntimeErr(StackUnderflow, "operand stack empty")
	}
	return f.Operands[n-1], nil
}

// scopeUp pushes a boundary marker.
func (f *Frame) scopeUp() {
	f.Vars = append(f.Vars, varEntry{boundary: true})
}

// scopeDown pops entries up through (and including) the most recent
// boundary marker. A malformed program with unbalanced ScopeDown simply
// pops down to empty rather than panicking, matching the "no silent
// corruption, but no crash on this defensive edge" style the teacher's
// scope package uses for its own root-scope-pop guard.
func (f *Frame) scopeDown() {
	for i := len(f.Vars) - 1; i >= 0; i-- {
		boundary := f.Vars[i].boundary
		f.Vars = f.Vars[:i]
		if boundary {
			return
		}
	}
}

// lookupLocal searches the variable stack latest-first; scope boundaries
// do not stop the scan (spec.md §4.4: "the full variable stack is
// visible").
func (f *Frame) lookupLocal(name string) (value.Value, bool) {
	for i := len(f.Vars) - 1; i >= 0; i-- {
		e := f.Vars[i]
		if !e.boundary && e.name == name {
			return e.value, true
		}
	}
	return value.Value{}, false
}

// lookupCaptured resolves name against this frame's closure's bind list,
// the second step of PushReference's locals → captured → imports →
// builtins resolution order (spec.md §4.4).
func (f *Frame) lookupCaptured(name string) (value.Value, bool) {
	for i, bindName := range f.Fn.Binds {
		if bindName == name && i < len(f.Captured) {
			return f.Captured[i], true
		}
	}
	return value.Value{}, false
}

// assignExisting writes to the nearest existing matching local, reporting
// ok=false if none exists (plain, non-let AssignReference).
func (f *Frame) assignExisting(name string, v value.Value) bool {
	for i := len(f.Vars) - 1; i >= 0; i-- {
		if !f.Vars[i].boundary && f.Vars[i].name == name {
			f.Vars[i].value = v
			return true
		}
	}
	return false
}

// declareLocal always introduces a new binding (let AssignReference),
// shadowing any existing entry of the same name.
func (f *Frame) declareLocal(name string, v value.Value) {
	f.Vars = append(f.Vars, varEntry{name: name, value: v})
}

// Trace marks every value this frame can reach: This, the closure cell
// (which anchors captured values via BoundFunctionData.Trace), every
// operand, and every variable stack entry's value — per spec.md §4.4 GC
// anchor requirements.
func (f *Frame) Trace(mark func(*gc.Cell)) {
	f.This.Trace(mark)
	if f.Closure != nil {
		mark(f.Closure)
	}
	for _, v := range f.Captured {
		v.Trace(mark)
	}
	for _, v := range f.Operands {
		v.Trace(mark)
	}
	for _, e := range f.Vars {
		if !e.boundary {
			e.value.Trace(mark)
		}
	}
}
