package compiler

import "github.com/pusl-lang/pusl/parser"

// Linearize walks a parsed file once and produces its (unresolved)
// ByteCodeFile — spec.md §4.3's `linearize_file(parsed, path)`. Import
// resolution (resolve.go) runs afterward, once every file reachable from
// the main file has been linearized.
func Linearize(pf *parser.ParsedFile, path string) (*ByteCodeFile, error) {
	e := newEmitter()
	if err := lowerStatement(e, pf.Root); err != nil {
		return nil, err
	}
	// Export every top-level `let` name onto the file's root object:
	// PushThis; PushReference(name); AssignField(name, let).
	if root, ok := pf.Root.(*parser.BlockExpr); ok {
		for _, stmt := range root.Statements {
			a, ok := stmt.(*parser.AssignmentExpr)
			if !ok || a.Flags&parser.FlagLet == 0 {
				continue
			}
			if ref, ok := a.Target.(*parser.ReferenceAccess); ok {
				e.emit(OpPushThis)
				e.emit(OpPushReference, e.addRef(ref.Name))
				e.emit(OpAssignField, e.addRef(ref.Name), 1)
			}
		}
	}

	var imports []ImportDecl
	for _, im := range pf.Imports {
		imports = append(imports, ImportDecl{Path: im.Path, Alias: im.Alias})
	}

	return &ByteCodeFile{
		Path:         path,
		BaseFunction: e.fn,
		Imports:      imports,
	}, nil
}

// lowerStatement lowers n in a context that wants no net stack growth.
func lowerStatement(e *emitter, n parser.Expression) error {
	return lowerExpr(e, n, false)
}

// lowerValue lowers n in a context that wants exactly one resulting value.
func lowerValue(e *emitter, n parser.Expression) error {
	return lowerExpr(e, n, true)
}

// lowerExpr is the top-level per-node dispatch. Control-transfer nodes
// (Return/Yield/Yeet) and BranchStmt are handled directly since they don't
// follow the uniform "always pushes one value" shape that lets the default
// case add a trailing Pop; everything else goes through lowerValueOnly and
// gets a Pop appended when expand is false.
func lowerExpr(e *emitter, n parser.Expression, expand bool) error {
	switch node := n.(type) {
	case nil:
		return nil
	case *parser.ReturnExpr:
		if node.Value != nil {
			if err := lowerValue(e, node.Value); err != nil {
				return err
			}
		} else {
			e.emit(OpLiteral, e.addLiteral(Literal{Kind: parser.LitNull}))
		}
		e.emit(OpReturn)
		return nil
	case *parser.YeetExpr:
		if err := lowerValue(e, node.Value); err != nil {
			return err
		}
		e.emit(OpYeet)
		if expand {
			e.emit(OpLiteral, e.addLiteral(Literal{Kind: parser.LitNull}))
		}
		return nil
	case *parser.YieldExpr:
		if err := lowerValue(e, node.Value); err != nil {
			return err
		}
		e.emit(OpYield)
		if !expand {
			e.emit(OpPop)
		}
		return nil
	case *parser.BranchStmt:
		if err := lowerBranch(e, node.Branch); err != nil {
			return err
		}
		return nil
	case *parser.BlockExpr:
		if err := lowerBlock(e, node); err != nil {
			return err
		}
		if expand {
			e.emit(OpLiteral, e.addLiteral(Literal{Kind: parser.LitNull}))
		}
		return nil

	case *parser.AssignmentExpr:
		// Assignment is a pure statement in this language (see
		// lower_assign.go's doc comment): it never leaves a value, so it
		// is handled here rather than in lowerValueOnly, matching the
		// BlockExpr case above.
		if err := lowerAssignment(e, node); err != nil {
			return err
		}
		if expand {
			e.emit(OpLiteral, e.addLiteral(Literal{Kind: parser.LitNull}))
		}
		return nil
	default:
		if err := lowerValueOnly(e, n); err != nil {
			return err
		}
		if !expand {
			e.emit(OpPop)
		}
		return nil
	}
}

// lowerBlock lowers every statement in sequence; a BlockExpr never itself
// yields a value (each of its statements is lowered as a statement).
func lowerBlock(e *emitter, n *parser.BlockExpr) error {
	for _, stmt := range n.Statements {
		if err := lowerStatement(e, stmt); err != nil {
			return err
		}
	}
	return nil
}

// lowerValueOnly lowers every node kind that always leaves exactly one
// value on the operand stack.
func lowerValueOnly(e *emitter, n parser.Expression) error {
	switch node := n.(type) {
	case *parser.LiteralExpr:
		e.emit(OpLiteral, e.addLiteral(Literal{Kind: node.Kind, Bool: node.Bool, Int: node.Int, Float: node.Float, Str: node.Str}))
		return nil

	case *parser.ReferenceExpr:
		e.emit(OpPushReference, e.addRef(node.Name))
		return nil

	case *parser.SelfExpr:
		e.emit(OpPushSelf)
		return nil

	case *parser.ThisExpr:
		e.emit(OpPushThis)
		return nil

	case *parser.FieldAccessExpr:
		if err := lowerValueOnly(e, node.Target); err != nil {
			return err
		}
		e.emit(OpFieldAccess, e.addRef(node.Field))
		return nil

	case *parser.ListAccessExpr:
		if err := lowerValueOnly(e, node.Target); err != nil {
			return err
		}
		if err := lowerValueOnly(e, node.Index); err != nil {
			return err
		}
		e.emit(OpListAccess)
		return nil

	case *parser.BinaryExpr:
		if err := lowerValueOnly(e, node.Left); err != nil {
			return err
		}
		if err := lowerValueOnly(e, node.Right); err != nil {
			return err
		}
		e.emit(binOpcode(node.Op))
		return nil

	case *parser.CompareExpr:
		if err := lowerValueOnly(e, node.Left); err != nil {
			return err
		}
		if err := lowerValueOnly(e, node.Right); err != nil {
			return err
		}
		e.emit(OpCompare, int(node.Op))
		return nil

	case *parser.UnaryExpr:
		// OpNot and OpNegate both lower to the VM's single Negate opcode:
		// Negate dispatches on the operand's tag (Boolean → logical not,
		// Integer/Float → arithmetic negation). This mirrors spec.md §4.3's
		// own elvis lowering, which reuses Negate the same way to invert
		// an IsNull result.
		if err := lowerValueOnly(e, node.Operand); err != nil {
			return err
		}
		e.emit(OpNegate)
		return nil

	case *parser.AndExpr:
		if err := lowerValueOnly(e, node.Left); err != nil {
			return err
		}
		if err := lowerValueOnly(e, node.Right); err != nil {
			return err
		}
		e.emit(OpAnd)
		return nil

	case *parser.OrExpr:
		if err := lowerValueOnly(e, node.Left); err != nil {
			return err
		}
		if err := lowerValueOnly(e, node.Right); err != nil {
			return err
		}
		e.emit(OpOr)
		return nil

	case *parser.ElvisExpr:
		// push a; duplicate; IsNull; Negate; ConditionalJump past-b; Pop;
		// push b; patch. (spec.md §4.3)
		if err := lowerValueOnly(e, node.Left); err != nil {
			return err
		}
		e.emit(OpDuplicate)
		e.emit(OpIsNull)
		e.emit(OpNegate)
		skip := e.emitJumpPlaceholder(OpConditionalJump)
		e.emit(OpPop)
		if err := lowerValueOnly(e, node.Right); err != nil {
			return err
		}
		e.patchJump(skip)
		return nil

	case *parser.CallExpr:
		if err := lowerValueOnly(e, node.Target); err != nil {
			return err
		}
		for _, a := range node.Args {
			if err := lowerValue(e, a); err != nil {
				return err
			}
		}
		e.emit(OpFunctionCall, len(node.Args))
		return nil

	case *parser.MethodCallExpr:
		// Evaluate target once, duplicate for `this`, FieldAccess for the
		// method, evaluate args, MethodCall(n) (spec.md §4.3).
		if err := lowerValueOnly(e, node.Target); err != nil {
			return err
		}
		e.emit(OpDuplicate)
		e.emit(OpFieldAccess, e.addRef(node.Method))
		for _, a := range node.Args {
			if err := lowerValue(e, a); err != nil {
				return err
			}
		}
		e.emit(OpMethodCall, len(node.Args))
		return nil

	case *parser.FuncDeclExpr:
		idx, err := lowerFunction(e, node, "")
		if err != nil {
			return err
		}
		e.emit(OpPushFunction, idx)
		return nil

	case *parser.ListDeclExpr:
		// NewList; per element: Duplicate; Duplicate; FieldAccess("push");
		// push element; MethodCall(1); Pop. FieldAccess consumes one copy
		// and MethodCall discards the receiver copy below the function,
		// so the second Duplicate keeps the list itself on the stack.
		e.emit(OpNewList)
		for _, el := range node.Elements {
			e.emit(OpDuplicate)
			e.emit(OpDuplicate)
			e.emit(OpFieldAccess, e.addRef("push"))
			if err := lowerValue(e, el); err != nil {
				return err
			}
			e.emit(OpMethodCall, 1)
			e.emit(OpPop)
		}
		return nil

	default:
		return newLowerErr(UnsupportedConstruct, "no lowering for expression node %T", n)
	}
}

func binOpcode(op parser.BinOp) OpCode {
	switch op {
	case parser.OpAdd:
		return OpAddition
	case parser.OpSub:
		return OpSubtraction
	case parser.OpMul:
		return OpMultiply
	case parser.OpDiv:
		return OpDivide
	case parser.OpDivTrunc:
		return OpDivideTruncate
	case parser.OpMod:
		return OpModulus
	case parser.OpExp:
		return OpExponent
	default:
		return OpAddition
	}
}
