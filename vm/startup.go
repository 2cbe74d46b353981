package vm

import (
	"io"

	"github.com/pusl-lang/pusl/compiler"
	"github.com/pusl-lang/pusl/value"
)

// ExecContext bundles a VM instance's external collaborators (spec.md §6
// `ExecContext { resolve, stream, interrupt }`): a way to fetch a
// not-yet-seen import's ByteCodeFile, an optional output sink for
// print/println, and an optional per-instruction debug hook.
type ExecContext struct {
	Resolve   func(path string) (*compiler.ByteCodeFile, bool)
	Stream    io.Writer
	Interrupt func(vm *VM)
}

// ExecState is startup's output: a VM with every transitive dependency
// already executed (so their exported objects are populated) and the main
// file's own frame built and ready, but not yet run.
type ExecState struct {
	vm        *VM
	mainFrame *Frame
}

// Startup implements spec.md §6 `startup(main_bcf, path, ctx) ->
// ExecutionState`: starting from the main file, it transitively walks
// import declarations, resolving any path not already known via
// ctx.Resolve, and executes every dependency file — in reverse
// topological order, so a file's dependencies have already populated
// their exported objects by the time it runs — before building (but not
// yet running) the main file's own frame. Each file's top-level code
// populates its fresh import-object via PushThis/AssignField of its
// exported identifiers (spec.md §6 "seeds the frame so the file's
// top-level code populates that object").
func Startup(mainPath string, main *compiler.ByteCodeFile, ctx ExecContext) (*ExecState, error) {
	v := New()
	if ctx.Stream != nil {
		v.SetWriter(ctx.Stream)
	}
	if ctx.Interrupt != nil {
		v.SetInterrupt(ctx.Interrupt)
	}

	resolved := make(map[string]*compiler.ResolvedFile)

	var processDeps func(file *compiler.ByteCodeFile) error
	processDeps = func(file *compiler.ByteCodeFile) error {
		for _, imp := range file.Imports {
			path := importKey(imp.Path)
			if _, ok := resolved[path]; ok {
				continue
			}
			dep, ok := ctx.Resolve(path)
			if !ok {
				return newRuntimeErr(UnresolvedImport, "cannot resolve import %q", path)
			}
			if err := processDeps(dep); err != nil {
				return err
			}
			if err := runFile(v, dep, path, resolved); err != nil {
				return err
			}
		}
		return nil
	}
	if err := processDeps(main); err != nil {
		return nil, err
	}

	table, err := compiler.ResolveImports(v, main, resolved)
	if err != nil {
		return nil, err
	}
	frame := newFileFrame(v, main, table)

	return &ExecState{vm: v, mainFrame: frame}, nil
}

// Execute implements spec.md §6 `execute(state) -> Value`: it runs the
// main file's frame (built by Startup) to completion and returns whatever
// value its base function produces — Null if, as is typical for a file
// whose purpose is populating `this`'s exported fields, no statement ever
// returns.
func Execute(state *ExecState) (value.Value, error) {
	state.vm.frames = append(state.vm.frames, state.mainFrame)
	return run(state.vm)
}

// runFile builds one dependency file's frame, runs it to completion, and
// registers its root object in resolved so later files can import it.
func runFile(v *VM, file *compiler.ByteCodeFile, path string, resolved map[string]*compiler.ResolvedFile) error {
	table, err := compiler.ResolveImports(v, file, resolved)
	if err != nil {
		return err
	}
	frame := newFileFrame(v, file, table)
	v.frames = append(v.frames, frame)
	if _, err := run(v); err != nil {
		return err
	}
	v.imports = append(v.imports, importEntry{Path: path, Object: frame.This.Ref})
	resolved[path] = &compiler.ResolvedFile{File: file, RootObject: frame.This.Ref, Imports: table}
	return nil
}

// newFileFrame turns one file's base Function into a bound function with
// empty bindings (spec.md §6) and allocates the fresh import-object that
// becomes that frame's `this`.
func newFileFrame(v *VM, file *compiler.ByteCodeFile, table *compiler.ImportTable) *Frame {
	rootCell := v.heap.Alloc(value.NewObjectData(nil))
	rf := &compiler.ResolvedFunction{Function: file.BaseFunction, Imports: table}
	closureCell := v.heap.Alloc(&value.BoundFunctionData{Fn: rf})
	self := value.Func(value.FunctionTarget{NativeIndex: -1, Bound: closureCell})
	return newFrame(rf, closureCell, nil, self, nil, value.Obj(rootCell))
}

// Session is a REPL-oriented alternative to Startup/Execute: one VM and
// one persistent base frame that survive across many independently
// compiled lines, so a `let` on one line is still visible as a local on
// the next — unlike Startup, which is a one-shot "run this whole program
// and stop" path. Grounded on the teacher's repl.go pattern of one
// long-lived Evaluator reused across readline iterations, adapted here
// from a tree-walker's persistent variable environment to reusing the
// VM's own persistent frame.
type Session struct {
	vm    *VM
	frame *Frame
}

// NewSession starts a fresh REPL session: an empty VM and an empty base
// frame with no code loaded yet.
func NewSession(ctx ExecContext) *Session {
	v := New()
	if ctx.Stream != nil {
		v.SetWriter(ctx.Stream)
	}
	if ctx.Interrupt != nil {
		v.SetInterrupt(ctx.Interrupt)
	}

	rootCell := v.heap.Alloc(value.NewObjectData(nil))
	rf := &compiler.ResolvedFunction{Function: &compiler.Function{}, Imports: compiler.NewImportTable()}
	closureCell := v.heap.Alloc(&value.BoundFunctionData{Fn: rf})
	self := value.Func(value.FunctionTarget{NativeIndex: -1, Bound: closureCell})
	frame := newFrame(rf, closureCell, nil, self, nil, value.Obj(rootCell))

	return &Session{vm: v, frame: frame}
}

// Eval compiles one more line's worth of bytecode into the session's
// persistent frame and runs it: the frame's variable stack (and so every
// previously `let`-bound name) survives from one Eval call to the next,
// since it is the same *Frame object resuming at a fresh instruction
// pointer rather than a fresh frame built from scratch.
func (s *Session) Eval(bcf *compiler.ByteCodeFile) (value.Value, error) {
	s.frame.Fn = &compiler.ResolvedFunction{Function: bcf.BaseFunction, Imports: s.frame.Fn.Imports}
	s.frame.IP = 0
	s.frame.Operands = nil
	s.vm.frames = append(s.vm.frames, s.frame)
	return run(s.vm)
}

// importKey joins an import path's dotted segments the same way
// compiler's (unexported) resolver does, so lookups against the resolved
// map and against ExecContext.Resolve use identical keys.
func importKey(segments []string) string {
	out := ""
	for i, s := range segments {
		if i > 0 {
			out += "."
		}
		out += s
	}
	return out
}
