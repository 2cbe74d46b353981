package compiler

import "github.com/pusl-lang/pusl/parser"

// Literal is one constant-pool entry. Compile-time literals carry raw Go
// data rather than a runtime value.Value — the VM allocates managed cells
// (e.g. a String's heap cell) from these only when the owning Literal
// opcode actually executes.
type Literal struct {
	Kind  parser.LiteralKind
	Bool  bool
	Int   int64
	Float float64
	Str   string
}

// Catch is one try/yoink handler region within a Function's bytecode: a
// Yeet raised by an instruction in [Start, End) is caught by jumping to
// Handler, after pushing the yeeted value for the handler's leading
// AssignReference(VarRef, let=true) to bind.
type Catch struct {
	Start, End, Handler int
	VarRef              int
}

// Function is the static, resolution-independent half of a script-function
// closure (spec.md §3 "Script-function closure"). Every function —
// including the implicit base/file function — is one of these.
type Function struct {
	Params       []string
	Binds        []string
	SelfName     string // non-empty when this function is the direct RHS of `let <name> = fn...`; see DESIGN.md
	Literals     []Literal
	References   []string
	Code         []Instruction
	SubFunctions []*Function
	IsGenerator  bool
	Catches      []Catch
}

// BindNames satisfies value.ResolvedFunction directly: the static Function
// itself already carries everything that interface needs. The "resolved"
// half (the per-file import table pointer) is layered on by ResolvedFunction
// below rather than stored on Function itself, since a bare Function has no
// file of its own until linearization finishes.
func (f *Function) BindNames() []string { return f.Binds }

// ImportTable maps an import alias to the pointer cell wrapping the
// imported file's exported object, shared by every sub-function of one
// file (spec.md §4.3 "Nested sub-functions share the same table pointer").
// The element type is `interface{}` holding a `*gc.Cell` to avoid the
// compiler package depending on gc/value (both of which already depend on
// nothing upstream of compiler, so this is a one-way avoidance of an
// otherwise-harmless cycle, kept for package-layering cleanliness).
type ImportTable struct {
	entries map[string]interface{}
}

// NewImportTable returns an empty table; Set adds or replaces entries.
func NewImportTable() *ImportTable {
	return &ImportTable{entries: make(map[string]interface{})}
}

// Set records one alias → import-object-cell binding.
func (t *ImportTable) Set(alias string, cell interface{}) {
	t.entries[alias] = cell
}

// Get looks up an alias, returning ok=false if this file never imported it.
func (t *ImportTable) Get(alias string) (interface{}, bool) {
	v, ok := t.entries[alias]
	return v, ok
}

// ResolvedFunction pairs a static Function with the import table available
// to it at runtime (spec.md §3 "Resolved part additionally owns a pointer
// to a per-file import table"). Every sub-function of one file shares the
// same *ImportTable pointer.
type ResolvedFunction struct {
	*Function
	Imports *ImportTable
}

// BindNames is promoted from the embedded *Function, but is written out
// explicitly so *ResolvedFunction satisfies value.ResolvedFunction even if
// a future change makes the embedding non-trivial.
func (r *ResolvedFunction) BindNames() []string { return r.Function.Binds }

// ByteCodeFile is the linearizer's top-level output: one base function plus
// its import declarations (spec.md §4.3 `ByteCodeFile { file, base_function,
// imports }`), and, per SPEC_FULL.md §4.3, the originating path for
// error messages.
type ByteCodeFile struct {
	Path         string
	BaseFunction *Function
	Imports      []ImportDecl
}

// ImportDecl is one `import a.b as alias` declaration collected during
// parsing and carried through linearization unresolved; resolution (see
// resolve.go) turns these into ImportTable entries.
type ImportDecl struct {
	Path  []string
	Alias string
}
