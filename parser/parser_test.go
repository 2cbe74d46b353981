package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pusl-lang/pusl/lexer"
)

func mustParse(t *testing.T, src string) *ParsedFile {
	t.Helper()
	units, err := lexer.Lex(src)
	require.NoError(t, err)
	pf, err := Parse(units)
	require.NoError(t, err)
	return pf
}

func firstExpr(t *testing.T, pf *ParsedFile) Expression {
	t.Helper()
	root, ok := pf.Root.(*BlockExpr)
	require.True(t, ok)
	require.Len(t, root.Statements, 1)
	return root.Statements[0]
}

func TestPrecedenceMultiplyBeforeAdd(t *testing.T) {
	pf := mustParse(t, "1 + 2 * 3")
	bin, ok := firstExpr(t, pf).(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, OpAdd, bin.Op)
	right, ok := bin.Right.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, OpMul, right.Op)
}

func TestPrecedenceUnaryMinusVsSubtraction(t *testing.T) {
	pf := mustParse(t, "-1 - 2")
	bin, ok := firstExpr(t, pf).(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, OpSub, bin.Op)
	left, ok := bin.Left.(*UnaryExpr)
	require.True(t, ok)
	assert.Equal(t, OpNegate, left.Op)
}

func TestPrecedenceElvis(t *testing.T) {
	pf := mustParse(t, "y ?: 42")
	elvis, ok := firstExpr(t, pf).(*ElvisExpr)
	require.True(t, ok)
	ref, ok := elvis.Left.(*ReferenceExpr)
	require.True(t, ok)
	assert.Equal(t, "y", ref.Name)
	lit, ok := elvis.Right.(*LiteralExpr)
	require.True(t, ok)
	assert.EqualValues(t, 42, lit.Int)
}

func TestFieldAccessAndMethodCallChain(t *testing.T) {
	pf := mustParse(t, "a.b.c(1, 2)")
	call, ok := firstExpr(t, pf).(*MethodCallExpr)
	require.True(t, ok)
	assert.Equal(t, "c", call.Method)
	require.Len(t, call.Args, 2)
	field, ok := call.Target.(*FieldAccessExpr)
	require.True(t, ok)
	assert.Equal(t, "b", field.Field)
}

func TestListLiteralAndIndexAccess(t *testing.T) {
	pf := mustParse(t, "xs[3]")
	access, ok := firstExpr(t, pf).(*ListAccessExpr)
	require.True(t, ok)
	ref, ok := access.Target.(*ReferenceExpr)
	require.True(t, ok)
	assert.Equal(t, "xs", ref.Name)

	pf2 := mustParse(t, "[1, 2, 3]")
	list, ok := firstExpr(t, pf2).(*ListDeclExpr)
	require.True(t, ok)
	assert.Len(t, list.Elements, 3)
}

func TestCallChaining(t *testing.T) {
	pf := mustParse(t, "a(x)(y)")
	outer, ok := firstExpr(t, pf).(*CallExpr)
	require.True(t, ok)
	require.Len(t, outer.Args, 1)
	inner, ok := outer.Target.(*CallExpr)
	require.True(t, ok)
	require.Len(t, inner.Args, 1)
	ref, ok := inner.Target.(*ReferenceExpr)
	require.True(t, ok)
	assert.Equal(t, "a", ref.Name)
}

func TestLetAssignment(t *testing.T) {
	pf := mustParse(t, "let xs = [1, 2, 3]")
	assign, ok := firstExpr(t, pf).(*AssignmentExpr)
	require.True(t, ok)
	assert.NotZero(t, assign.Flags&FlagLet)
	target, ok := assign.Target.(*ReferenceAccess)
	require.True(t, ok)
	assert.Equal(t, "xs", target.Name)
}

func TestConditionalAssignment(t *testing.T) {
	pf := mustParse(t, "x ?= 5")
	assign, ok := firstExpr(t, pf).(*AssignmentExpr)
	require.True(t, ok)
	assert.NotZero(t, assign.Flags&FlagConditional)
}

func TestArrowFieldLetAssignment(t *testing.T) {
	pf := mustParse(t, "A.x <- 7")
	assign, ok := firstExpr(t, pf).(*AssignmentExpr)
	require.True(t, ok)
	assert.NotZero(t, assign.Flags&FlagLet)
	target, ok := assign.Target.(*FieldAssignAccess)
	require.True(t, ok)
	assert.Equal(t, "x", target.Field)
}

func TestIfElseIfElseChain(t *testing.T) {
	src := "if n < 2:\n  return n\nelse if n < 10:\n  return 0\nelse:\n  return 1\n"
	pf := mustParse(t, src)
	root, ok := pf.Root.(*BlockExpr)
	require.True(t, ok)
	require.Len(t, root.Statements, 1)
	stmt, ok := root.Statements[0].(*BranchStmt)
	require.True(t, ok)
	br, ok := stmt.Branch.(*IfBranch)
	require.True(t, ok)
	assert.Len(t, br.Conditions, 2)
	assert.NotNil(t, br.Else)
}

func TestInlineIfOneLiner(t *testing.T) {
	pf := mustParse(t, "if n < 2: return n")
	stmt, ok := firstExpr(t, pf).(*BranchStmt)
	require.True(t, ok)
	_, ok = stmt.Branch.(*IfBranch)
	assert.True(t, ok)
}

func TestWhileLoop(t *testing.T) {
	src := "while i < 10:\n  i = i + 1\n"
	pf := mustParse(t, src)
	stmt, ok := firstExpr(t, pf).(*BranchStmt)
	require.True(t, ok)
	br, ok := stmt.Branch.(*WhileBranch)
	require.True(t, ok)
	cond, ok := br.Cond.(*CompareExpr)
	require.True(t, ok)
	assert.Equal(t, CmpLt, cond.Op)
}

func TestForEachLoop(t *testing.T) {
	src := "for x in xs:\n  print(x)\n"
	pf := mustParse(t, src)
	stmt, ok := firstExpr(t, pf).(*BranchStmt)
	require.True(t, ok)
	br, ok := stmt.Branch.(*ForEachBranch)
	require.True(t, ok)
	assert.Equal(t, "x", br.VarName)
}

func TestTryYoinkChain(t *testing.T) {
	src := "try:\n  yeet \"boom\"\nyoink true as e:\n  print(e)\n"
	pf := mustParse(t, src)
	stmt, ok := firstExpr(t, pf).(*BranchStmt)
	require.True(t, ok)
	br, ok := stmt.Branch.(*TryBranch)
	require.True(t, ok)
	assert.Equal(t, "e", br.CatchVar)
}

func TestCompareBranchThreeArms(t *testing.T) {
	src := "compare a, b:\n  print(1)\n  print(0)\n  print(-1)\n"
	pf := mustParse(t, src)
	stmt, ok := firstExpr(t, pf).(*BranchStmt)
	require.True(t, ok)
	br, ok := stmt.Branch.(*CompareBranch)
	require.True(t, ok)
	assert.NotNil(t, br.Greater)
	assert.NotNil(t, br.Equal)
	assert.NotNil(t, br.Less)
}

func TestFuncDeclWithLetBinding(t *testing.T) {
	src := "let greet = fn(): print(\"hi\")"
	pf := mustParse(t, src)
	assign, ok := firstExpr(t, pf).(*AssignmentExpr)
	require.True(t, ok)
	fn, ok := assign.Expression.(*FuncDeclExpr)
	require.True(t, ok)
	assert.Empty(t, fn.Params)
	assert.NotNil(t, fn.Body)
}

func TestFuncDeclWithParamsAndBlockBody(t *testing.T) {
	src := "let fib = fn(n):\n  if n < 2:\n    return n\n  return fib(n-1) + fib(n-2)\n"
	pf := mustParse(t, src)
	assign, ok := firstExpr(t, pf).(*AssignmentExpr)
	require.True(t, ok)
	fn, ok := assign.Expression.(*FuncDeclExpr)
	require.True(t, ok)
	require.Len(t, fn.Params, 1)
	assert.Equal(t, "n", fn.Params[0])
	block, ok := fn.Body.(*BlockExpr)
	require.True(t, ok)
	assert.Len(t, block.Statements, 2)
}

func TestImportWithAlias(t *testing.T) {
	units, err := lexer.Lex("import m as m2\nm2.greet()\n")
	require.NoError(t, err)
	pf, err := Parse(units)
	require.NoError(t, err)
	require.Len(t, pf.Imports, 1)
	assert.Equal(t, []string{"m"}, pf.Imports[0].Path)
	assert.Equal(t, "m2", pf.Imports[0].Alias)
}

func TestInvalidAssignmentTargetRejected(t *testing.T) {
	units, err := lexer.Lex("1 + 2 = 3")
	require.NoError(t, err)
	_, err = Parse(units)
	require.Error(t, err)
	perr, ok := err.(*ParseError)
	require.True(t, ok)
	assert.Equal(t, InvalidAssignmentTarget, perr.Kind)
}
