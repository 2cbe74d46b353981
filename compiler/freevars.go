package compiler

import "github.com/pusl-lang/pusl/parser"

// freeVariables computes a function literal's bind-name list: every
// ReferenceExpr name used anywhere in its body (including, conservatively,
// inside nested function literals — a nested closure's own free variables
// must also be resolvable in this function's scope, since it captures them
// from here) minus the function's own parameters, the parameters of any
// nested literal, and any name it `let`-declares anywhere in its body.
// This is the standard free-variable
// algorithm; the "let-declares anywhere in body" approximation (rather than
// precise block scoping) is conservative in the safe direction — it can
// only omit a capture that turns out to be genuinely local, never
// mis-capture an outer name that's actually shadowed.
func freeVariables(params []string, body parser.Expression) []string {
	bound := map[string]bool{}
	for _, p := range params {
		bound[p] = true
	}
	collectBound(body, bound)

	used := map[string]bool{}
	collectUsed(body, used)

	var binds []string
	for name := range used {
		if !bound[name] {
			binds = append(binds, name)
		}
	}
	sortStrings(binds)
	return binds
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// collectBound walks every node reachable from n, recording every name
// introduced by a `let` (or `<-`, its sugar) assignment anywhere, including
// inside nested function literals, plus nested literals' parameters and
// catch/loop variables.
func collectBound(n parser.Expression, bound map[string]bool) {
	walkExpr(n, func(e parser.Expression) {
		if a, ok := e.(*parser.AssignmentExpr); ok && a.Flags&parser.FlagLet != 0 {
			if ref, ok := a.Target.(*parser.ReferenceAccess); ok {
				bound[ref.Name] = true
			}
		}
		if fd, ok := e.(*parser.FuncDeclExpr); ok {
			for _, p := range fd.Params {
				bound[p] = true
			}
		}
	}, func(b parser.Branch) {
		switch br := b.(type) {
		case *parser.ForEachBranch:
			bound[br.VarName] = true
		case *parser.TryBranch:
			bound[br.CatchVar] = true
		}
	})
}

// collectUsed walks every node reachable from n, recording every
// ReferenceExpr name encountered.
func collectUsed(n parser.Expression, used map[string]bool) {
	walkExpr(n, func(e parser.Expression) {
		if ref, ok := e.(*parser.ReferenceExpr); ok {
			used[ref.Name] = true
		}
	}, func(parser.Branch) {})
}
