// Package parser turns a lexer.LexUnit tree into a Pusl abstract syntax
// tree using a precedence-based rewrite pipeline, per SPEC_FULL.md §4.2.
//
// Grounded on the teacher's parser package file split
// (parser_precedence.go, parser_conditionals.go, parser_loops.go,
// parser_collections.go, parser_assignments.go) and its ParseError
// diagnostic style, generalized from the teacher's brace/semicolon
// grammar to Pusl's indentation-block grammar.
package parser

import "github.com/pusl-lang/pusl/lexer"

// Position locates a syntax element for diagnostics.
type Position struct {
	Line   int
	Column int
}

// Node is implemented by every AST element.
type Node interface {
	Pos() Position
}

// Expression is Pusl's expression sum type (spec.md §3 "Expression").
type Expression interface {
	Node
	exprNode()
}

// Branch is Pusl's control-flow sum type (spec.md §3 "Branch").
type Branch interface {
	Node
	branchNode()
}

// base embeds a Position into every concrete node so each type only has
// to implement Pos() once.
type base struct{ P Position }

func (b base) Pos() Position { return b.P }

// --- Expression variants ---

type LiteralKind int

const (
	LitNull LiteralKind = iota
	LitBool
	LitInt
	LitFloat
	LitString
)

type LiteralExpr struct {
	base
	Kind  LiteralKind
	Bool  bool
	Int   int64
	Float float64
	Str   string
}

func (*LiteralExpr) exprNode() {}

type ReferenceExpr struct {
	base
	Name string
}

func (*ReferenceExpr) exprNode() {}

type SelfExpr struct{ base }

func (*SelfExpr) exprNode() {}

type ThisExpr struct{ base }

func (*ThisExpr) exprNode() {}

type FieldAccessExpr struct {
	base
	Target Expression
	Field  string
}

func (*FieldAccessExpr) exprNode() {}

type ListAccessExpr struct {
	base
	Target Expression
	Index  Expression
}

func (*ListAccessExpr) exprNode() {}

// BinOp enumerates every binary arithmetic/bitwise operator lowered by
// the multiplicative/additive/bitwise precedence passes.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpDivTrunc
	OpMod
	OpExp
)

type BinaryExpr struct {
	base
	Op          BinOp
	Left, Right Expression
}

func (*BinaryExpr) exprNode() {}

// CompareOp enumerates every comparison/equality sub-op.
type CompareOp int

const (
	CmpEq CompareOp = iota
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

type CompareExpr struct {
	base
	Op          CompareOp
	Left, Right Expression
}

func (*CompareExpr) exprNode() {}

type UnaryOp int

const (
	OpNegate UnaryOp = iota
	OpNot
)

type UnaryExpr struct {
	base
	Op      UnaryOp
	Operand Expression
}

func (*UnaryExpr) exprNode() {}

type AndExpr struct {
	base
	Left, Right Expression
}

func (*AndExpr) exprNode() {}

type OrExpr struct {
	base
	Left, Right Expression
}

func (*OrExpr) exprNode() {}

type ElvisExpr struct {
	base
	Left, Right Expression
}

func (*ElvisExpr) exprNode() {}

// AssignFlags is a bitmask of the flags spec.md §3 attaches to
// Assignment: LET (introduce a new binding/field) and CONDITIONAL (only
// assign if the current value is null, i.e. `?=`).
type AssignFlags int

const (
	FlagLet AssignFlags = 1 << iota
	FlagConditional
)

// AssignAccess is the sum type of valid assignment targets: a bare name,
// a field access chain, or a list-index access.
type AssignAccess interface {
	Node
	assignAccessNode()
}

type ReferenceAccess struct {
	base
	Name string
}

func (*ReferenceAccess) assignAccessNode() {}

type FieldAssignAccess struct {
	base
	Target Expression
	Field  string
}

func (*FieldAssignAccess) assignAccessNode() {}

type IndexAssignAccess struct {
	base
	Target Expression
	Index  Expression
}

func (*IndexAssignAccess) assignAccessNode() {}

type AssignmentExpr struct {
	base
	Target     AssignAccess
	Expression Expression
	Flags      AssignFlags
}

func (*AssignmentExpr) exprNode() {}

type CallExpr struct {
	base
	Target Expression // nil only between initialPass and callFieldPass, which attaches the preceding slot
	Args   []Expression
}

func (*CallExpr) exprNode() {}

type MethodCallExpr struct {
	base
	Target Expression
	Method string
	Args   []Expression
}

func (*MethodCallExpr) exprNode() {}

type FuncDeclExpr struct {
	base
	Binds  []string
	Params []string
	Body   Expression
}

func (*FuncDeclExpr) exprNode() {}

type ListDeclExpr struct {
	base
	Elements []Expression
}

func (*ListDeclExpr) exprNode() {}

type ReturnExpr struct {
	base
	Value Expression // nil for a bare `return`
}

func (*ReturnExpr) exprNode() {}

type YieldExpr struct {
	base
	Value Expression
}

func (*YieldExpr) exprNode() {}

type YeetExpr struct {
	base
	Value Expression
}

func (*YeetExpr) exprNode() {}

// BlockExpr joins a sequence of statements into a single expression, used
// for multi-line bodies; spec.md §4.2 calls this "a joiner expression
// over children parsed recursively".
type BlockExpr struct {
	base
	Statements []Expression
}

func (*BlockExpr) exprNode() {}

// --- Branch variants ---

type IfBranch struct {
	base
	Conditions []Expression // one per if/elseif arm
	Bodies     []Expression // aligned with Conditions
	Else       Expression   // nil if no else arm
}

func (*IfBranch) branchNode() {}

type WhileBranch struct {
	base
	Cond Expression
	Body Expression
}

func (*WhileBranch) branchNode() {}

type ForEachBranch struct {
	base
	VarName  string
	Iterable Expression
	Body     Expression
}

func (*ForEachBranch) branchNode() {}

// CompareBranch models the `compare` block's three-way dispatch
// (greater/equal/less); see SPEC_FULL.md §4.3 — linearization of this
// branch kind is deliberately unimplemented.
type CompareBranch struct {
	base
	Left, Right      Expression
	Greater          Expression
	Equal            Expression
	Less             Expression
}

func (*CompareBranch) branchNode() {}

type TryBranch struct {
	base
	TryBody    Expression
	YoinkGuard Expression // the expression after `yoink` (e.g. `true`)
	CatchVar   string
	CatchBody  Expression
}

func (*TryBranch) branchNode() {}

// Import is one `import path.segments as alias` statement.
type Import struct {
	Path  []string
	Alias string
}

// ParsedFile is the parser's output: one root expression (a BlockExpr
// over the file's top-level statements) plus its ordered imports.
type ParsedFile struct {
	Root    Expression
	Imports []Import
}

// posOf converts a token's line/column into a Position, so error
// messages can reference source position before an expression node
// exists yet.
func posOf(t lexer.Token) Position {
	return Position{Line: t.Line, Column: t.Column}
}
