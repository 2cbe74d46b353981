package compiler

import "github.com/pusl-lang/pusl/parser"

// lowerFunction linearizes a nested function literal into its own
// Function, appends it to the enclosing emitter's sub-function table, and
// returns its index for a PushFunction(idx) to reference. selfName, when
// non-empty, names the `let`-bound variable this literal is the direct
// right-hand side of (e.g. `let fib = fn(n): ...`): the VM seeds a call
// frame's variable stack with that name bound to the callee's own bound-
// function value before binding parameters, which is how named recursion
// works without requiring the closure to capture its own not-yet-assigned
// binding (see DESIGN.md).
func lowerFunction(parent *emitter, node *parser.FuncDeclExpr, selfName string) (int, error) {
	sub := newEmitter()
	sub.fn.Params = node.Params
	sub.fn.SelfName = selfName
	binds := freeVariables(node.Params, node.Body)
	if selfName != "" {
		filtered := binds[:0]
		for _, b := range binds {
			if b != selfName {
				filtered = append(filtered, b)
			}
		}
		binds = filtered
	}
	sub.fn.Binds = binds

	if err := lowerStatement(sub, node.Body); err != nil {
		return 0, err
	}
	// A function whose body falls off the end (no explicit return)
	// returns Null to its caller; an explicit trailing Return makes this
	// redundant but harmless (dead code after a Return is never reached).
	sub.emit(OpLiteral, sub.addLiteral(Literal{Kind: parser.LitNull}))
	sub.emit(OpReturn)

	idx := len(parent.fn.SubFunctions)
	parent.fn.SubFunctions = append(parent.fn.SubFunctions, sub.fn)
	return idx, nil
}
