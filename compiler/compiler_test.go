package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pusl-lang/pusl/lexer"
	"github.com/pusl-lang/pusl/parser"
)

func mustLinearize(t *testing.T, src string) *ByteCodeFile {
	t.Helper()
	units, err := lexer.Lex(src)
	require.NoError(t, err)
	pf, err := parser.Parse(units)
	require.NoError(t, err)
	bcf, err := Linearize(pf, "<test>")
	require.NoError(t, err)
	return bcf
}

func opcodes(fn *Function) []OpCode {
	ops := make([]OpCode, len(fn.Code))
	for i, instr := range fn.Code {
		ops[i] = instr.Op
	}
	return ops
}

func TestLinearizeLiteralAndArithmetic(t *testing.T) {
	bcf := mustLinearize(t, "1 + 2 * 3")
	ops := opcodes(bcf.BaseFunction)
	// push 1, push 2, push 3, Multiply, Addition, Pop (statement context)
	assert.Equal(t, []OpCode{OpLiteral, OpLiteral, OpLiteral, OpMultiply, OpAddition, OpPop}, ops)
	assert.Len(t, bcf.BaseFunction.Literals, 3)
}

func TestLinearizeElvisShape(t *testing.T) {
	bcf := mustLinearize(t, "let y = null\nprint(y ?: 42)\n")
	ops := opcodes(bcf.BaseFunction)
	require.Contains(t, ops, OpIsNull)
	require.Contains(t, ops, OpConditionalJump)
	// the conditional jump target must land inside the function's code, not
	// past the end (verifies patchJump actually ran).
	for i, instr := range bcf.BaseFunction.Code {
		if instr.Op == OpConditionalJump {
			assert.LessOrEqual(t, instr.Args[0], len(bcf.BaseFunction.Code))
			assert.Greater(t, instr.Args[0], i)
		}
	}
}

func TestLinearizeListLiteralShape(t *testing.T) {
	bcf := mustLinearize(t, "let xs = [1, 2, 3]\n")
	ops := opcodes(bcf.BaseFunction)
	// NewList, then 3x (Duplicate, Duplicate, FieldAccess, Literal, MethodCall, Pop)
	count := 0
	for _, op := range ops {
		if op == OpNewList {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Contains(t, ops, OpMethodCall)
}

func TestLinearizeMethodCallShape(t *testing.T) {
	bcf := mustLinearize(t, "a.b.c(1, 2)")
	ops := opcodes(bcf.BaseFunction)
	assert.Contains(t, ops, OpMethodCall)
	assert.Contains(t, ops, OpFieldAccess)
}

func TestLinearizeIfElseJumpsStayInBounds(t *testing.T) {
	src := "if n < 2:\n  return n\nelse if n < 10:\n  return 0\nelse:\n  return 1\n"
	bcf := mustLinearize(t, src)
	for i, instr := range bcf.BaseFunction.Code {
		if instr.Op == OpConditionalJump || instr.Op == OpJump {
			assert.GreaterOrEqual(t, instr.Args[0], 0)
			assert.LessOrEqual(t, instr.Args[0], len(bcf.BaseFunction.Code))
			assert.NotEqual(t, i, instr.Args[0], "jump must not target itself")
		}
	}
}

func TestLinearizeWhileLoopJumpsBackward(t *testing.T) {
	src := "while i < 10:\n  i = i + 1\n"
	bcf := mustLinearize(t, src)
	var sawBackwardJump bool
	for i, instr := range bcf.BaseFunction.Code {
		if instr.Op == OpJump && instr.Args[0] < i {
			sawBackwardJump = true
		}
	}
	assert.True(t, sawBackwardJump, "while loop must end with a backward jump to its condition")
}

func TestLinearizeTryYoinkRecordsCatch(t *testing.T) {
	src := "try:\n  yeet \"boom\"\nyoink true as e:\n  print(e)\n"
	bcf := mustLinearize(t, src)
	require.Len(t, bcf.BaseFunction.Catches, 1)
	c := bcf.BaseFunction.Catches[0]
	assert.Less(t, c.Start, c.End)
	assert.GreaterOrEqual(t, c.Handler, c.End-0) // handler sits at/after the guarded range ends
	name := bcf.BaseFunction.References[c.VarRef]
	assert.Equal(t, "e", name)
}

func TestLinearizeForEachIsUnsupported(t *testing.T) {
	units, err := lexer.Lex("for x in xs:\n  print(x)\n")
	require.NoError(t, err)
	pf, err := parser.Parse(units)
	require.NoError(t, err)
	_, err = Linearize(pf, "<test>")
	require.Error(t, err)
	lerr, ok := err.(*LowerError)
	require.True(t, ok)
	assert.Equal(t, UnsupportedConstruct, lerr.Kind)
}

func TestLinearizeCompareIsUnsupported(t *testing.T) {
	units, err := lexer.Lex("compare a, b:\n  print(1)\n  print(0)\n  print(-1)\n")
	require.NoError(t, err)
	pf, err := parser.Parse(units)
	require.NoError(t, err)
	_, err = Linearize(pf, "<test>")
	require.Error(t, err)
	lerr, ok := err.(*LowerError)
	require.True(t, ok)
	assert.Equal(t, UnsupportedConstruct, lerr.Kind)
}

func TestLinearizeRecursiveFuncDeclSetsSelfNameNotBind(t *testing.T) {
	src := "let fib = fn(n):\n  if n < 2:\n    return n\n  return fib(n-1) + fib(n-2)\n"
	bcf := mustLinearize(t, src)
	require.Len(t, bcf.BaseFunction.SubFunctions, 1)
	fib := bcf.BaseFunction.SubFunctions[0]
	assert.Equal(t, "fib", fib.SelfName)
	assert.NotContains(t, fib.Binds, "fib")
}

func TestLinearizeClosureCapturesOuterName(t *testing.T) {
	src := "let make = fn(base):\n  let add = fn(n): return base + n\n  return add\n"
	bcf := mustLinearize(t, src)
	require.Len(t, bcf.BaseFunction.SubFunctions, 1)
	makeFn := bcf.BaseFunction.SubFunctions[0]
	require.Len(t, makeFn.SubFunctions, 1)
	add := makeFn.SubFunctions[0]
	assert.Contains(t, add.Binds, "base")
	assert.Equal(t, "add", add.SelfName)
}

func TestLinearizeFieldAssignmentArrowSugar(t *testing.T) {
	bcf := mustLinearize(t, "A.x <- 7\n")
	ops := opcodes(bcf.BaseFunction)
	assert.Contains(t, ops, OpAssignField)
	for _, instr := range bcf.BaseFunction.Code {
		if instr.Op == OpAssignField {
			assert.Equal(t, 1, instr.Args[1], "<- must set the let flag")
		}
	}
}

func TestLinearizeConditionalAssignmentReadsBeforeWriting(t *testing.T) {
	bcf := mustLinearize(t, "x ?= 5\n")
	ops := opcodes(bcf.BaseFunction)
	// must read current value (PushReference) before the conditional jump
	var pushIdx, jumpIdx int = -1, -1
	for i, op := range ops {
		if op == OpPushReference && pushIdx == -1 {
			pushIdx = i
		}
		if op == OpConditionalJump && jumpIdx == -1 {
			jumpIdx = i
		}
	}
	require.NotEqual(t, -1, pushIdx)
	require.NotEqual(t, -1, jumpIdx)
	assert.Less(t, pushIdx, jumpIdx)
}

func TestLinearizeLiteralPoolDeduplicates(t *testing.T) {
	bcf := mustLinearize(t, "1 + 1 + 1\n")
	assert.Len(t, bcf.BaseFunction.Literals, 1)
}

func TestLinearizeReferencePoolDeduplicates(t *testing.T) {
	bcf := mustLinearize(t, "x + x + x\n")
	assert.Len(t, bcf.BaseFunction.References, 1)
}
