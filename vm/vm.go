// Package vm is Pusl's stack-based bytecode interpreter: frame stack,
// operand/variable stacks per frame, opcode dispatch, name resolution,
// and the mark-sweep GC's driving loop, per spec.md §4.4.
//
// Grounded on the teacher's eval.Evaluator (github.com/akashmaji946/go-mix/
// eval) for the shape of a central state struct carrying a builtins map
// and an injectable output writer, generalized from a tree-recursive
// Eval(node) to an opcode dispatch loop over compiler.Instruction, and on
// clarete-langlang's go/vm.go for the frame-stack/instruction-pointer
// idiom a bytecode VM needs that a tree-walker does not.
package vm

import (
	"io"
	"os"

	"github.com/pusl-lang/pusl/builtins"
	"github.com/pusl-lang/pusl/gc"
	"github.com/pusl-lang/pusl/value"
)

// VM holds everything shared across frames (spec.md §4.4): the GC handle,
// an append-only native-function registry, a builtins map, an ordered
// list of per-file import objects, and the live call-frame stack (last
// entry is the currently executing frame).
type VM struct {
	heap     *gc.Heap
	natives  []value.Native
	builtins map[string]value.Value
	imports  []importEntry
	frames   []*Frame
	out      io.Writer

	// interrupt, when non-nil, is invoked between every instruction — an
	// optional debug hook (spec.md §5 "debug-interrupt hook"); it cannot
	// abort execution, only observe.
	interrupt func(vm *VM)

	// listNatives holds the native registry slots builtins.Install gave
	// push/pop/size/at, so every freshly allocated list object can carry
	// them as fields without OpNewList depending on package builtins
	// beyond this plain struct.
	listNatives builtins.ListIndices
}

type importEntry struct {
	Path   string
	Object *gc.Cell
}

// New constructs an empty VM writing to os.Stdout by default, with the
// builtins package's natives (print, println, type_of, Object, and the
// list primitives) already registered. Callers typically go through
// Startup instead of calling this directly.
func New() *VM {
	v := &VM{
		heap:     gc.NewHeap(),
		builtins: make(map[string]value.Value),
		out:      os.Stdout,
	}
	v.listNatives = builtins.Install(v)
	return v
}

// newListCell allocates a fresh list object and wires push/pop/size/at
// onto it as unbound native fields — unbound so FieldAccess's ordinary
// auto-this-bind rule gives each one the right receiver the same way it
// would for any user-defined method, per value.ObjectData's doc comment.
func (v *VM) newListCell() *gc.Cell {
	data := value.NewListData()
	data.Fields["push"] = value.Func(value.FunctionTarget{NativeIndex: v.listNatives.Push})
	data.Fields["pop"] = value.Func(value.FunctionTarget{NativeIndex: v.listNatives.Pop})
	data.Fields["size"] = value.Func(value.FunctionTarget{NativeIndex: v.listNatives.Size})
	data.Fields["at"] = value.Func(value.FunctionTarget{NativeIndex: v.listNatives.At})
	return v.heap.Alloc(data)
}

// SetWriter redirects builtin output (print/println), mirroring the
// teacher's Evaluator.SetWriter for test capture.
func (v *VM) SetWriter(w io.Writer) {
	v.out = w
}

// SetInterrupt installs the optional debug hook.
func (v *VM) SetInterrupt(fn func(vm *VM)) {
	v.interrupt = fn
}

// Heap implements value.NativeContext.
func (v *VM) Heap() *gc.Heap { return v.heap }

// Print implements value.NativeContext.
func (v *VM) Print(s string) {
	io.WriteString(v.out, s)
}

// RegisterNative appends fn to the native registry and returns its index,
// used by the builtins package at VM construction time (append-only
// within the VM's lifetime, per spec.md §5 "Shared-resource policy").
func (v *VM) RegisterNative(fn value.Native) int {
	idx := len(v.natives)
	v.natives = append(v.natives, fn)
	return idx
}

// SetBuiltin installs a name in the builtins map, consulted last in
// PushReference's resolution order.
func (v *VM) SetBuiltin(name string, val value.Value) {
	v.builtins[name] = val
}

// CurrentFrame returns the executing frame, or nil if the VM is idle.
func (v *VM) CurrentFrame() *Frame {
	if len(v.frames) == 0 {
		return nil
	}
	return v.frames[len(v.frames)-1]
}

// NewImportObject implements compiler.ResolveHost: wraps a fresh, empty
// object around an already-resolved dependency's root object (spec.md
// §4.3 "wraps a new empty object with that as parent").
func (v *VM) NewImportObject(parent interface{}) interface{} {
	var parentCell *gc.Cell
	if parent != nil {
		parentCell = parent.(*gc.Cell)
	}
	return v.heap.Alloc(value.NewObjectData(parentCell))
}

// Collect runs one GC pass, anchoring every live frame, every import
// object, and the builtins map (spec.md §4.4 "GC triggering").
func (v *VM) Collect() int {
	anchors := make([]gc.Anchor, 0, len(v.frames)+len(v.imports)+len(v.builtins))
	for _, f := range v.frames {
		anchors = append(anchors, f)
	}
	for _, im := range v.imports {
		anchors = append(anchors, value.Obj(im.Object))
	}
	for _, bv := range v.builtins {
		anchors = append(anchors, bv)
	}
	return v.heap.Collect(anchors)
}
