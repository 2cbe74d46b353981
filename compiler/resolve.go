package compiler

// ResolveHost is the minimal collaborator the resolver needs from the VM
// layer: a way to allocate an empty wrapper object (with a given parent) and
// get back an opaque handle (a *gc.Cell in practice) to store in an
// ImportTable. Kept as an interface here so compiler need not import gc/value.
type ResolveHost interface {
	NewImportObject(parent interface{}) interface{}
}

// ResolvedFile pairs one file's ByteCodeFile with the root object handle
// other files import it by.
type ResolvedFile struct {
	File       *ByteCodeFile
	RootObject interface{}
	Imports    *ImportTable
}

// ResolveImports implements spec.md §4.3's import-resolution pass: for each
// file being resolved, it walks that file's import declarations, looks up
// each dependency's root object among the already-resolved files (the
// caller is responsible for resolving dependency files first — spec.md
// §4.4 "all resolved files form a stack processed in reverse order so each
// file executes after its dependencies"), wraps a fresh empty object with
// that as parent, and records (alias, pointer) in the file's per-file
// import table. Every nested sub-function of one file shares the same
// *ImportTable pointer, since compiler.Function never stores one directly —
// only the top-level ResolvedFunction wrapper for the base function does,
// and every lowerFunction-produced closure created at runtime around a
// sub-function reuses the same table pointer captured at BoundFunction
// creation time.
func ResolveImports(host ResolveHost, file *ByteCodeFile, resolvedByPath map[string]*ResolvedFile) (*ImportTable, error) {
	table := NewImportTable()
	for _, decl := range file.Imports {
		path := importPathKey(decl.Path)
		dep, ok := resolvedByPath[path]
		if !ok {
			return nil, newLowerErr(UnresolvedImport, "import %q is not yet resolved (resolve dependencies before dependents)", path)
		}
		wrapped := host.NewImportObject(dep.RootObject)
		table.Set(decl.Alias, wrapped)
	}
	return table, nil
}

func importPathKey(segments []string) string {
	out := ""
	for i, s := range segments {
		if i > 0 {
			out += "."
		}
		out += s
	}
	return out
}
