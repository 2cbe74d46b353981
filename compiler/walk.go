package compiler

import "github.com/pusl-lang/pusl/parser"

// walkExpr visits every Expression and Branch node reachable from n
// (including through nested function literal bodies), calling onExpr for
// each expression and onBranch for each branch. Used only by freevars.go's
// conservative whole-subtree scans — it is not a general-purpose AST
// visitor for lowering (lowering has its own direct recursion in
// linearize.go, since it must also track emission order and stack depth).
func walkExpr(n parser.Expression, onExpr func(parser.Expression), onBranch func(parser.Branch)) {
	if n == nil {
		return
	}
	onExpr(n)
	switch e := n.(type) {
	case *parser.LiteralExpr, *parser.ReferenceExpr, *parser.SelfExpr, *parser.ThisExpr:
		// leaves
	case *parser.FieldAccessExpr:
		walkExpr(e.Target, onExpr, onBranch)
	case *parser.ListAccessExpr:
		walkExpr(e.Target, onExpr, onBranch)
		walkExpr(e.Index, onExpr, onBranch)
	case *parser.BinaryExpr:
		walkExpr(e.Left, onExpr, onBranch)
		walkExpr(e.Right, onExpr, onBranch)
	case *parser.CompareExpr:
		walkExpr(e.Left, onExpr, onBranch)
		walkExpr(e.Right, onExpr, onBranch)
	case *parser.UnaryExpr:
		walkExpr(e.Operand, onExpr, onBranch)
	case *parser.AndExpr:
		walkExpr(e.Left, onExpr, onBranch)
		walkExpr(e.Right, onExpr, onBranch)
	case *parser.OrExpr:
		walkExpr(e.Left, onExpr, onBranch)
		walkExpr(e.Right, onExpr, onBranch)
	case *parser.ElvisExpr:
		walkExpr(e.Left, onExpr, onBranch)
		walkExpr(e.Right, onExpr, onBranch)
	case *parser.AssignmentExpr:
		walkAssignTarget(e.Target, onExpr, onBranch)
		walkExpr(e.Expression, onExpr, onBranch)
	case *parser.CallExpr:
		walkExpr(e.Target, onExpr, onBranch)
		for _, a := range e.Args {
			walkExpr(a, onExpr, onBranch)
		}
	case *parser.MethodCallExpr:
		walkExpr(e.Target, onExpr, onBranch)
		for _, a := range e.Args {
			walkExpr(a, onExpr, onBranch)
		}
	case *parser.FuncDeclExpr:
		walkExpr(e.Body, onExpr, onBranch)
	case *parser.ListDeclExpr:
		for _, el := range e.Elements {
			walkExpr(el, onExpr, onBranch)
		}
	case *parser.ReturnExpr:
		walkExpr(e.Value, onExpr, onBranch)
	case *parser.YieldExpr:
		walkExpr(e.Value, onExpr, onBranch)
	case *parser.YeetExpr:
		walkExpr(e.Value, onExpr, onBranch)
	case *parser.BlockExpr:
		for _, s := range e.Statements {
			walkExpr(s, onExpr, onBranch)
		}
	case *parser.BranchStmt:
		walkBranch(e.Branch, onExpr, onBranch)
	}
}

func walkAssignTarget(t parser.AssignAccess, onExpr func(parser.Expression), onBranch func(parser.Branch)) {
	switch a := t.(type) {
	case *parser.FieldAssignAccess:
		walkExpr(a.Target, onExpr, onBranch)
	case *parser.IndexAssignAccess:
		walkExpr(a.Target, onExpr, onBranch)
		walkExpr(a.Index, onExpr, onBranch)
	}
}

func walkBranch(b parser.Branch, onExpr func(parser.Expression), onBranch func(parser.Branch)) {
	if b == nil {
		return
	}
	onBranch(b)
	switch br := b.(type) {
	case *parser.IfBranch:
		for _, c := range br.Conditions {
			walkExpr(c, onExpr, onBranch)
		}
		for _, body := range br.Bodies {
			walkExpr(body, onExpr, onBranch)
		}
		walkExpr(br.Else, onExpr, onBranch)
	case *parser.WhileBranch:
		walkExpr(br.Cond, onExpr, onBranch)
		walkExpr(br.Body, onExpr, onBranch)
	case *parser.ForEachBranch:
		walkExpr(br.Iterable, onExpr, onBranch)
		walkExpr(br.Body, onExpr, onBranch)
	case *parser.CompareBranch:
		walkExpr(br.Left, onExpr, onBranch)
		walkExpr(br.Right, onExpr, onBranch)
		walkExpr(br.Greater, onExpr, onBranch)
		walkExpr(br.Equal, onExpr, onBranch)
		walkExpr(br.Less, onExpr, onBranch)
	case *parser.TryBranch:
		walkExpr(br.TryBody, onExpr, onBranch)
		walkExpr(br.YoinkGuard, onExpr, onBranch)
		walkExpr(br.CatchBody, onExpr, onBranch)
	}
}
