package compiler

import "github.com/pusl-lang/pusl/parser"

// lowerAssignment lowers every AssignmentExpr shape. Grounded directly on
// original_source/pusl_lang's linearizer (`Expression::Assigment`), which
// returns `false` from its own "did this leave a value" flag: an
// assignment is a pure statement, not a value-yielding expression, so
// lowerExpr's dispatch (linearize.go) pushes a Null afterward only when
// the surrounding context demanded expand=true, and never calls this
// function expecting a value already on the stack.
//
// Stack order for field/index targets follows the source's own documented
// layout: target(s) pushed before the value, value on top at the
// Assign* opcode (`AssignField: 2 Stack Values (object - bottom, value -
// top)`, `AssignList: ... Bottom: ArrayReference, Array Index, Top:
// Value`). The source's conditional-assignment path for field/index
// targets leaves a stray object/index on the stack on the "already
// non-null, skip" branch (a real bug: it never pops the duplicated test
// value before jumping past the assignment) — spec.md §8 requires
// "operand-stack depth is identical across every execution reaching [an]
// address", so this implementation adds the missing Pop(s) on that
// branch instead of reproducing the inconsistency.
func lowerAssignment(e *emitter, n *parser.AssignmentExpr) error {
	isLet := n.Flags&parser.FlagLet != 0
	isCond := n.Flags&parser.FlagConditional != 0
	let := 0
	if isLet {
		let = 1
	}

	switch t := n.Target.(type) {
	case *parser.ReferenceAccess:
		refIdx := e.addRef(t.Name)
		var skip int
		hasSkip := false
		if isCond {
			e.emit(OpPushReference, refIdx)
			e.emit(OpIsNull)
			e.emit(OpNegate)
			skip = e.emitJumpPlaceholder(OpConditionalJump)
			hasSkip = true
		}
		if err := lowerAssignRHS(e, n.Target, n.Expression, isLet); err != nil {
			return err
		}
		e.emit(OpAssignReference, refIdx, let)
		if hasSkip {
			e.patchJump(skip)
		}
		return nil

	case *parser.FieldAssignAccess:
		if err := lowerValueOnly(e, t.Target); err != nil {
			return err
		}
		fieldIdx := e.addRef(t.Field)
		if isCond {
			e.emit(OpDuplicate)
			e.emit(OpFieldAccess, fieldIdx)
			e.emit(OpIsNull)
			e.emit(OpNegate)
			skip := e.emitJumpPlaceholder(OpConditionalJump)
			if err := lowerValue(e, n.Expression); err != nil {
				return err
			}
			e.emit(OpAssignField, fieldIdx, let)
			end := e.emitJumpPlaceholder(OpJump)
			e.patchJump(skip)
			e.emit(OpPop) // discard the duplicated object left by the null test
			e.patchJump(end)
			return nil
		}
		if err := lowerValue(e, n.Expression); err != nil {
			return err
		}
		e.emit(OpAssignField, fieldIdx, let)
		return nil

	case *parser.IndexAssignAccess:
		if err := lowerValueOnly(e, t.Target); err != nil {
			return err
		}
		if err := lowerValueOnly(e, t.Index); err != nil {
			return err
		}
		if isCond {
			e.emit(OpDuplicateMany, 2)
			e.emit(OpListAccess)
			e.emit(OpIsNull)
			e.emit(OpNegate)
			skip := e.emitJumpPlaceholder(OpConditionalJump)
			if err := lowerValue(e, n.Expression); err != nil {
				return err
			}
			e.emit(OpAssignList, let)
			end := e.emitJumpPlaceholder(OpJump)
			e.patchJump(skip)
			e.emit(OpPop) // discard duplicated index
			e.emit(OpPop) // discard duplicated target
			e.patchJump(end)
			return nil
		}
		if err := lowerValue(e, n.Expression); err != nil {
			return err
		}
		e.emit(OpAssignList, let)
		return nil

	default:
		return newLowerErr(UnsupportedConstruct, "no lowering for assignment target %T", n.Target)
	}
}

// lowerAssignRHS lowers an assignment's right-hand side, special-casing a
// function literal assigned by `let` straight to a bare name: the literal's
// SelfName is set so the VM can support direct recursion through that name
// (see lowerFunction). Every other right-hand side lowers normally.
func lowerAssignRHS(e *emitter, target parser.AssignAccess, rhs parser.Expression, isLet bool) error {
	if fn, ok := rhs.(*parser.FuncDeclExpr); ok && isLet {
		if ref, ok := target.(*parser.ReferenceAccess); ok {
			idx, err := lowerFunction(e, fn, ref.Name)
			if err != nil {
				return err
			}
			e.emit(OpPushFunction, idx)
			return nil
		}
	}
	return lowerValue(e, rhs)
}
