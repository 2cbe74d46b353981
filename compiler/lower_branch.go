package compiler

import "github.com/pusl-lang/pusl/parser"

func lowerBranch(e *emitter, b parser.Branch) error {
	switch br := b.(type) {
	case *parser.IfBranch:
		return lowerIf(e, br)
	case *parser.WhileBranch:
		return lowerWhile(e, br)
	case *parser.ForEachBranch:
		// spec.md §9 Open Questions: the source's for-loop linearizer is an
		// unimplemented stub; we do not guess its semantics.
		return newLowerErr(UnsupportedConstruct, "for-each loop linearization is not implemented")
	case *parser.CompareBranch:
		// spec.md §9 Open Questions: same for the compare block's
		// (greater, equal, less) dispatch.
		return newLowerErr(UnsupportedConstruct, "compare block linearization is not implemented")
	case *parser.TryBranch:
		return lowerTry(e, br)
	default:
		return newLowerErr(UnsupportedConstruct, "no lowering for branch node %T", b)
	}
}

// lowerIf lowers an if/elseif*/else chain: each condition is negated and
// conditionally jumps to its own else-target; each body ends with an
// unconditional jump to the chain's end (spec.md §4.3).
func lowerIf(e *emitter, br *parser.IfBranch) error {
	var endJumps []int
	for i, cond := range br.Conditions {
		if err := lowerValueOnly(e, cond); err != nil {
			return err
		}
		e.emit(OpNegate)
		elseJump := e.emitJumpPlaceholder(OpConditionalJump)

		if err := lowerStatement(e, br.Bodies[i]); err != nil {
			return err
		}
		endJumps = append(endJumps, e.emitJumpPlaceholder(OpJump))

		e.patchJump(elseJump)
	}
	if br.Else != nil {
		if err := lowerStatement(e, br.Else); err != nil {
			return err
		}
	}
	for _, j := range endJumps {
		e.patchJump(j)
	}
	return nil
}

// lowerWhile lowers: top label; condition; negated conditional jump to
// end; body; unconditional jump to top (spec.md §4.3).
func lowerWhile(e *emitter, br *parser.WhileBranch) error {
	top := e.here()
	if err := lowerValueOnly(e, br.Cond); err != nil {
		return err
	}
	e.emit(OpNegate)
	exitJump := e.emitJumpPlaceholder(OpConditionalJump)

	if err := lowerStatement(e, br.Body); err != nil {
		return err
	}
	e.emit(OpJump, top)

	e.patchJump(exitJump)
	return nil
}

// lowerTry lowers a try/yoink: the try body's instruction range becomes a
// Catch entry whose handler binds a Yeet'd value to CatchVar and runs the
// yoink body. The yoink guard expression (e.g. `true` in every spec.md
// example) is not evaluated at lowering or catch time — this implementation
// treats every try/yoink as catching unconditionally, since spec.md never
// specifies guard semantics beyond the one worked example where the guard
// is a literal `true` (see DESIGN.md).
func lowerTry(e *emitter, br *parser.TryBranch) error {
	start := e.here()
	if err := lowerStatement(e, br.TryBody); err != nil {
		return err
	}
	skipHandler := e.emitJumpPlaceholder(OpJump)
	end := e.here()

	handler := e.here()
	e.emit(OpScopeUp)
	varRef := e.addRef(br.CatchVar)
	e.emit(OpAssignReference, varRef, 1)
	if err := lowerStatement(e, br.CatchBody); err != nil {
		return err
	}
	e.emit(OpScopeDown)

	e.patchJump(skipHandler)

	e.fn.Catches = append(e.fn.Catches, Catch{Start: start, End: end, Handler: handler, VarRef: varRef})
	return nil
}
