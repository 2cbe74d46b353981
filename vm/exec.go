package vm

import (
	"github.com/pusl-lang/pusl/compiler"
	"github.com/pusl-lang/pusl/gc"
	"github.com/pusl-lang/pusl/parser"
	"github.com/pusl-lang/pusl/value"
)

// run executes the frame at the top of v.frames until it returns, yeets
// uncaught out of every one of its own try/yoink regions, or runs out of
// code (a frame with no more code returns Null to its caller, per spec.md
// §4.4). It owns popping exactly that one frame off v.frames on every
// return path, script calls recursing into run() again for the callee so
// a raised Yeet can unwind through Go's own call stack, one frame's worth
// of try/yoink regions at a time (see call.go's tryCatchDispatch).
func run(v *VM) (value.Value, error) {
	f := v.frames[len(v.frames)-1]
	defer func() {
		v.frames = v.frames[:len(v.frames)-1]
	}()

	for {
		if f.IP >= len(f.Fn.Code) {
			return value.Null(), nil
		}
		if v.interrupt != nil {
			v.interrupt(v)
		}

		instr := f.Fn.Code[f.IP]
		opIP := f.IP
		f.IP++

		switch instr.Op {
		case compiler.OpLiteral:
			val, err := v.literalValue(f.Fn.Literals[instr.Args[0]])
			if err != nil {
				return value.Value{}, err
			}
			f.push(val)

		case compiler.OpPushReference:
			name := f.Fn.References[instr.Args[0]]
			val, err := v.resolveReference(f, name)
			if err != nil {
				return value.Value{}, err
			}
			f.push(val)

		case compiler.OpPushBuiltin:
			name := f.Fn.References[instr.Args[0]]
			val, ok := v.builtins[name]
			if !ok {
				return value.Value{}, newRuntimeErr(UndeclaredVariable, "missing builtin %q", name)
			}
			f.push(val)

		case compiler.OpPushThis:
			if f.This.IsNull() {
				return value.Value{}, newRuntimeErr(WrongType, "cannot reference this: no bound receiver")
			}
			f.push(f.This)

		case compiler.OpPushSelf:
			f.push(value.Func(value.FunctionTarget{NativeIndex: -1, Bound: f.Closure, This: thisPtr(f.This)}))

		case compiler.OpPushFunction:
			val, err := v.pushFunction(f, instr.Args[0])
			if err != nil {
				return value.Value{}, err
			}
			f.push(val)

		case compiler.OpFunctionCall, compiler.OpMethodCall:
			result, err := v.dispatchCall(f, instr.Op == compiler.OpMethodCall, instr.Args[0])
			if err != nil {
				if yt, ok := err.(*Yeet); ok && tryCatchDispatch(f, opIP, yt) {
					continue
				}
				return value.Value{}, err
			}
			f.push(result)

		case compiler.OpFieldAccess:
			objVal, err := f.pop()
			if err != nil {
				return value.Value{}, err
			}
			if objVal.Tag != value.TagObject {
				return value.Value{}, newRuntimeErr(WrongType, "cannot access field of a %s value", objVal.Tag)
			}
			name := f.Fn.References[instr.Args[0]]
			fieldVal, ok := objVal.AsObject().Get(name)
			if !ok {
				return value.Value{}, newRuntimeErr(FieldMissing, "no field %q", name)
			}
			if fieldVal.Tag == value.TagFunction && fieldVal.Fn.This == nil {
				receiver := objVal
				fieldVal.Fn.This = &receiver
			}
			f.push(fieldVal)

		case compiler.OpListAccess:
			idxVal, err := f.pop()
			if err != nil {
				return value.Value{}, err
			}
			targetVal, err := f.pop()
			if err != nil {
				return value.Value{}, err
			}
			elem, err := listGet(targetVal, idxVal)
			if err != nil {
				return value.Value{}, err
			}
			f.push(elem)

		case compiler.OpAddition:
			rhs, err := f.pop()
			if err != nil {
				return value.Value{}, err
			}
			lhs, err := f.pop()
			if err != nil {
				return value.Value{}, err
			}
			if lhs.Tag == value.TagString && rhs.Tag == value.TagString {
				cell := v.heap.Alloc(&value.StringData{Value: lhs.AsString() + rhs.AsString()})
				f.push(value.Str(cell))
				continue
			}
			result, err := addition(lhs, rhs)
			if err != nil {
				return value.Value{}, err
			}
			f.push(result)

		case compiler.OpSubtraction:
			if err := binArith(f, subtraction); err != nil {
				return value.Value{}, err
			}
		case compiler.OpMultiply:
			if err := binArith(f, multiply); err != nil {
				return value.Value{}, err
			}
		case compiler.OpDivide:
			if err := binArith(f, divide); err != nil {
				return value.Value{}, err
			}
		case compiler.OpDivideTruncate:
			if err := binArith(f, divideTruncate); err != nil {
				return value.Value{}, err
			}
		case compiler.OpExponent:
			if err := binArith(f, exponent); err != nil {
				return value.Value{}, err
			}
		case compiler.OpModulus:
			if err := binArith(f, modulus); err != nil {
				return value.Value{}, err
			}

		case compiler.OpNegate:
			operand, err := f.pop()
			if err != nil {
				return value.Value{}, err
			}
			result, err := negate(operand)
			if err != nil {
				return value.Value{}, err
			}
			f.push(result)

		case compiler.OpCompare:
			rhs, err := f.pop()
			if err != nil {
				return value.Value{}, err
			}
			lhs, err := f.pop()
			if err != nil {
				return value.Value{}, err
			}
			result, err := compare(lhs, rhs, parser.CompareOp(instr.Args[0]))
			if err != nil {
				return value.Value{}, err
			}
			f.push(result)

		case compiler.OpAnd:
			if err := binLogic(f, true); err != nil {
				return value.Value{}, err
			}
		case compiler.OpOr:
			if err := binLogic(f, false); err != nil {
				return value.Value{}, err
			}

		case compiler.OpScopeUp:
			f.scopeUp()
		case compiler.OpScopeDown:
			f.scopeDown()

		case compiler.OpReturn:
			val, err := f.pop()
			if err != nil {
				return value.Value{}, err
			}
			return val, nil

		case compiler.OpConditionalJump:
			cond, err := f.pop()
			if err != nil {
				return value.Value{}, err
			}
			if cond.IsTruthy() {
				f.IP = instr.Args[0]
			}

		case compiler.OpComparisonJump:
			rhs, err := f.pop()
			if err != nil {
				return value.Value{}, err
			}
			lhs, err := f.pop()
			if err != nil {
				return value.Value{}, err
			}
			ord, ok := compareNumeric(lhs, rhs)
			if !ok {
				return value.Value{}, newRuntimeErr(WrongType, "ComparisonJump requires numeric operands")
			}
			switch {
			case ord > 0:
				f.IP = instr.Args[0] // greater
			case ord < 0:
				f.IP = instr.Args[1] // less
			default:
				f.IP = instr.Args[2] // equal
			}

		case compiler.OpJump:
			f.IP = instr.Args[0]

		case compiler.OpPop:
			if _, err := f.pop(); err != nil {
				return value.Value{}, err
			}

		case compiler.OpIsNull:
			val, err := f.pop()
			if err != nil {
				return value.Value{}, err
			}
			f.push(value.Bool(val.IsNull()))

		case compiler.OpDuplicate:
			val, err := f.peek()
			if err != nil {
				return value.Value{}, err
			}
			f.push(val)

		case compiler.OpDuplicateMany:
			n := instr.Args[0]
			if n > len(f.Operands) {
				return value.Value{}, newRuntimeErr(StackUnderflow, "DuplicateMany(%d): stack too shallow", n)
			}
			start := len(f.Operands) - n
			extra := append([]value.Value(nil), f.Operands[start:]...)
			f.Operands = append(f.Operands, extra...)

		case compiler.OpDuplicateDeep:
			k := instr.Args[0]
			idx := len(f.Operands) - 1 - k
			if idx < 0 {
				return value.Value{}, newRuntimeErr(StackUnderflow, "DuplicateDeep(%d): stack too shallow", k)
			}
			f.push(f.Operands[idx])

		case compiler.OpAssignReference:
			name := f.Fn.References[instr.Args[0]]
			isLet := instr.Args[1] != 0
			val, err := f.pop()
			if err != nil {
				return value.Value{}, err
			}
			if isLet {
				f.declareLocal(name, val)
			} else if !f.assignExisting(name, val) {
				return value.Value{}, newRuntimeErr(UndeclaredVariable, "assignment to undeclared variable %q", name)
			}

		case compiler.OpAssignField:
			name := f.Fn.References[instr.Args[0]]
			isLet := instr.Args[1] != 0
			val, err := f.pop()
			if err != nil {
				return value.Value{}, err
			}
			objVal, err := f.pop()
			if err != nil {
				return value.Value{}, err
			}
			if objVal.Tag != value.TagObject {
				return value.Value{}, newRuntimeErr(WrongType, "cannot assign field of a %s value", objVal.Tag)
			}
			obj := objVal.AsObject()
			if !isLet && !obj.HasOwn(name) {
				return value.Value{}, newRuntimeErr(FieldMissing, "non-let assignment to undeclared field %q", name)
			}
			obj.Fields[name] = val

		case compiler.OpAssignList:
			isLet := instr.Args[0] != 0
			val, err := f.pop()
			if err != nil {
				return value.Value{}, err
			}
			idxVal, err := f.pop()
			if err != nil {
				return value.Value{}, err
			}
			targetVal, err := f.pop()
			if err != nil {
				return value.Value{}, err
			}
			if err := listSet(targetVal, idxVal, val, isLet); err != nil {
				return value.Value{}, err
			}

		case compiler.OpNewList:
			f.push(value.Obj(v.newListCell()))

		case compiler.OpYield:
			if !f.Fn.IsGenerator {
				return value.Value{}, newRuntimeErr(WrongType, "yield outside a generator function")
			}
			// Generator suspension is not implemented: like the source this is grounded on, Yield only validates that it
			// occurs inside a generator and otherwise leaves the operand
			// stack untouched — the value to yield was already pushed by
			// the preceding expression and is popped by the surrounding
			// statement/expression context exactly as any other value
			// would be.

		case compiler.OpYeet:
			val, err := f.pop()
			if err != nil {
				return value.Value{}, err
			}
			yt := &Yeet{Value: val}
			if tryCatchDispatch(f, opIP, yt) {
				continue
			}
			return value.Value{}, yt

		default:
			return value.Value{}, newRuntimeErr(WrongType, "unimplemented opcode %s", instr.Op)
		}
	}
}

func binArith(f *Frame, op func(lhs, rhs value.Value) (value.Value, error)) error {
	rhs, err := f.pop()
	if err != nil {
		return err
	}
	lhs, err := f.pop()
	if err != nil {
		return err
	}
	result, err := op(lhs, rhs)
	if err != nil {
		return err
	}
	f.push(result)
	return nil
}

func binLogic(f *Frame, isAnd bool) error {
	rhs, err := f.pop()
	if err != nil {
		return err
	}
	lhs, err := f.pop()
	if err != nil {
		return err
	}
	result, err := logic(lhs, rhs, isAnd)
	if err != nil {
		return err
	}
	f.push(result)
	return nil
}

// literalValue materializes a compile-time Literal into a runtime Value,
// allocating a managed cell for strings (every String literal gets its own
// fresh cell on each execution, matching original_source's
// `literal.into_value(&state.gc)` allocate-on-push behavior).
func (v *VM) literalValue(lit compiler.Literal) (value.Value, error) {
	switch lit.Kind {
	case parser.LitNull:
		return value.Null(), nil
	case parser.LitBool:
		return value.Bool(lit.Bool), nil
	case parser.LitInt:
		return value.Int(lit.Int), nil
	case parser.LitFloat:
		return value.Float(lit.Float), nil
	case parser.LitString:
		return value.Str(v.heap.Alloc(&value.StringData{Value: lit.Str})), nil
	default:
		return value.Value{}, newRuntimeErr(WrongType, "unknown literal kind")
	}
}

// resolveReference implements PushReference's four-step lookup order
// (spec.md §4.4): locals, then the closure's captured bindings, then this
// file's imports (matched by alias), then the shared builtins map.
func (v *VM) resolveReference(f *Frame, name string) (value.Value, error) {
	if val, ok := f.lookupLocal(name); ok {
		return val, nil
	}
	if val, ok := f.lookupCaptured(name); ok {
		return val, nil
	}
	if f.Fn.Imports != nil {
		if cell, ok := f.Fn.Imports.Get(name); ok {
			return value.Obj(cell.(*gc.Cell)), nil
		}
	}
	if val, ok := v.builtins[name]; ok {
		return val, nil
	}
	return value.Value{}, newRuntimeErr(UndeclaredVariable, "undeclared variable %q", name)
}

// pushFunction implements PushFunction(idx): it resolves the new closure's
// bind names in the CURRENT frame with PushReference's own lookup order
// (locals, captured bindings, imports, builtins), builds the
// captured-value vector in Binds order, and allocates a fresh
// BoundFunctionData cell sharing this file's import table.
func (v *VM) pushFunction(f *Frame, idx int) (value.Value, error) {
	if idx < 0 || idx >= len(f.Fn.SubFunctions) {
		return value.Value{}, newRuntimeErr(WrongType, "invalid sub-function index %d", idx)
	}
	sub := f.Fn.SubFunctions[idx]
	rf := &compiler.ResolvedFunction{Function: sub, Imports: f.Fn.Imports}

	captured := make([]value.Value, len(sub.Binds))
	for i, name := range sub.Binds {
		val, err := v.resolveReference(f, name)
		if err != nil {
			return value.Value{}, newRuntimeErr(UndeclaredVariable, "undeclared variable %q captured by function literal", name)
		}
		captured[i] = val
	}

	bound := &value.BoundFunctionData{Fn: rf, Captured: captured}
	cell := v.heap.Alloc(bound)
	return value.Func(value.FunctionTarget{NativeIndex: -1, Bound: cell, This: nil}), nil
}

func thisPtr(v value.Value) *value.Value {
	if v.IsNull() {
		return nil
	}
	cp := v
	return &cp
}
