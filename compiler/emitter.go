package compiler

import "github.com/pusl-lang/pusl/parser"

// emitter accumulates one Function's code and pools. It mirrors the
// teacher's one-struct-per-pass helper style (e.g. parser's slot-list
// passes) applied to code generation instead of parsing: a thin stateful
// wrapper with small, named methods rather than free functions threading
// a *Function through every call.
type emitter struct {
	fn         *Function
	literalIdx map[literalKey]int
	refIdx     map[string]int
}

func newEmitter() *emitter {
	return &emitter{
		fn:         &Function{},
		literalIdx: make(map[literalKey]int),
		refIdx:     make(map[string]int),
	}
}

type literalKey struct {
	kind  parser.LiteralKind
	i     int64
	f     float64
	s     string
}

func keyOf(l Literal) literalKey {
	return literalKey{kind: l.Kind, i: l.Int, f: l.Float, s: l.Str}
}

// emit appends one instruction and returns its index.
func (e *emitter) emit(op OpCode, args ...int) int {
	idx := len(e.fn.Code)
	e.fn.Code = append(e.fn.Code, Instruction{Op: op, Args: args})
	return idx
}

// emitJumpPlaceholder emits a jump whose target is not yet known; the
// returned index is later filled in by patchJump, per spec.md §4.3
// "forward jumps with patchback".
func (e *emitter) emitJumpPlaceholder(op OpCode) int {
	return e.emit(op, 0)
}

// patchJump fills a previously emitted jump placeholder's target with the
// current (about-to-be-emitted) instruction index.
func (e *emitter) patchJump(idx int) {
	e.fn.Code[idx].Args[0] = len(e.fn.Code)
}

// here reports the index the next emitted instruction will receive — used
// for backward jump targets (loop tops), which are known immediately and
// never need patching.
func (e *emitter) here() int {
	return len(e.fn.Code)
}

// addLiteral deduplicates l into the literal pool and returns its index.
func (e *emitter) addLiteral(l Literal) int {
	k := keyOf(l)
	if idx, ok := e.literalIdx[k]; ok {
		return idx
	}
	idx := len(e.fn.Literals)
	e.fn.Literals = append(e.fn.Literals, l)
	e.literalIdx[k] = idx
	return idx
}

// addRef deduplicates name into the reference pool and returns its index.
// One pool serves both PushReference/AssignReference targets and
// FieldAccess/AssignField field names, matching spec.md §4.3's single
// "string-indexed reference pool".
func (e *emitter) addRef(name string) int {
	if idx, ok := e.refIdx[name]; ok {
		return idx
	}
	idx := len(e.fn.References)
	e.fn.References = append(e.fn.References, name)
	e.refIdx[name] = idx
	return idx
}
