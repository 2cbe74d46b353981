// Package compiler is Pusl's linearizer: it walks a parser.ParsedFile once
// per function and emits a flat bytecode array plus literal/reference/
// sub-function pools, per SPEC_FULL.md §4.3.
//
// Grounded on the teacher's tree-walking Evaluator (github.com/akashmaji946/
// go-mix/eval) for the shape of per-node-kind lowering, and on
// clarete-langlang's instruction/bytecode split (go/vm_instructions.go,
// go/vm.go) for representing a fixed opcode set plus an argument-carrying
// instruction type, adapted from per-instruction struct types to a single
// OpCode enum with a generic argument list (REDESIGN FLAGS: "a safe
// equivalent uses a sum type for OpCode with its own variant-payload width
// table").
package compiler

// OpCode enumerates every bytecode instruction Pusl's VM understands,
// matching spec.md §5's opcode set exactly.
type OpCode int

const (
	OpModulus OpCode = iota
	OpLiteral
	OpPushReference
	OpPushFunction
	OpPushThis
	OpPushSelf
	OpPushBuiltin
	OpFunctionCall
	OpMethodCall
	OpFieldAccess
	OpListAccess
	OpAddition
	OpSubtraction
	OpNegate
	OpMultiply
	OpDivide
	OpDivideTruncate
	OpExponent
	OpCompare
	OpAnd
	OpOr
	OpScopeUp
	OpScopeDown
	OpReturn
	OpConditionalJump
	OpComparisonJump
	OpJump
	OpPop
	OpIsNull
	OpDuplicate
	OpDuplicateMany
	OpDuplicateDeep
	OpAssignReference
	OpAssignField
	OpAssignList
	OpNewList
	OpYield
	OpYeet
)

func (op OpCode) String() string {
	switch op {
	case OpModulus:
		return "Modulus"
	case OpLiteral:
		return "Literal"
	case OpPushReference:
		return "PushReference"
	case OpPushFunction:
		return "PushFunction"
	case OpPushThis:
		return "PushThis"
	case OpPushSelf:
		return "PushSelf"
	case OpPushBuiltin:
		return "PushBuiltin"
	case OpFunctionCall:
		return "FunctionCall"
	case OpMethodCall:
		return "MethodCall"
	case OpFieldAccess:
		return "FieldAccess"
	case OpListAccess:
		return "ListAccess"
	case OpAddition:
		return "Addition"
	case OpSubtraction:
		return "Subtraction"
	case OpNegate:
		return "Negate"
	case OpMultiply:
		return "Multiply"
	case OpDivide:
		return "Divide"
	case OpDivideTruncate:
		return "DivideTruncate"
	case OpExponent:
		return "Exponent"
	case OpCompare:
		return "Compare"
	case OpAnd:
		return "And"
	case OpOr:
		return "Or"
	case OpScopeUp:
		return "ScopeUp"
	case OpScopeDown:
		return "ScopeDown"
	case OpReturn:
		return "Return"
	case OpConditionalJump:
		return "ConditionalJump"
	case OpComparisonJump:
		return "ComparisonJump"
	case OpJump:
		return "Jump"
	case OpPop:
		return "Pop"
	case OpIsNull:
		return "IsNull"
	case OpDuplicate:
		return "Duplicate"
	case OpDuplicateMany:
		return "DuplicateMany"
	case OpDuplicateDeep:
		return "DuplicateDeep"
	case OpAssignReference:
		return "AssignReference"
	case OpAssignField:
		return "AssignField"
	case OpAssignList:
		return "AssignList"
	case OpNewList:
		return "NewList"
	case OpYield:
		return "Yield"
	case OpYeet:
		return "Yeet"
	default:
		return "Unknown"
	}
}

// Instruction is one opcode plus its argument words. Argument meaning is
// opcode-specific:
//
//	Literal/PushReference/PushFunction/PushBuiltin/FieldAccess: [poolIndex]
//	FunctionCall/MethodCall/DuplicateMany/DuplicateDeep:        [n]
//	Compare:                                                    [parser.CompareOp]
//	ConditionalJump/Jump:                                       [targetIndex]
//	ComparisonJump:                                             [gtIndex, ltIndex, eqIndex]
//	AssignReference/AssignField:                                [poolIndex, isLet(0|1)]
//	AssignList:                                                 [isLet(0|1)]
//	everything else:                                            no args
//
// Jump targets are instruction indices into Function.Code, not byte
// offsets: this implementation represents code as a Go slice of
// Instruction rather than a packed byte buffer, so "absolute byte offset"
// (spec.md §5) becomes "absolute instruction index", its direct safe
// equivalent.
type Instruction struct {
	Op   OpCode
	Args []int
}
