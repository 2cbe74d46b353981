package parser

import "github.com/pusl-lang/pusl/lexer"

// findTopLevelAssign scans for a top-level '=', '?=', or '<-' (ignoring
// anything nested inside parens/brackets), per SPEC_FULL.md §4.2.
func findTopLevelAssign(tokens []lexer.Token) (int, lexer.TokenType) {
	depth := 0
	for i, t := range tokens {
		switch t.Type {
		case lexer.LPAREN, lexer.LBRACKET:
			depth++
		case lexer.RPAREN, lexer.RBRACKET:
			depth--
		case lexer.ASSIGN, lexer.COND_ASSN, lexer.ARROW:
			if depth == 0 {
				return i, t.Type
			}
		}
	}
	return -1, ""
}

// parseAssignTarget parses tokens as an expression and narrows the result
// to a valid assignment target: a bare reference, a field access chain, or
// a list-index access.
func parseAssignTarget(tokens []lexer.Token) (AssignAccess, error) {
	expr, err := parseExpressionTokens(tokens)
	if err != nil {
		return nil, err
	}
	switch e := expr.(type) {
	case *ReferenceExpr:
		return &ReferenceAccess{base: e.base, Name: e.Name}, nil
	case *FieldAccessExpr:
		return &FieldAssignAccess{base: e.base, Target: e.Target, Field: e.Field}, nil
	case *ListAccessExpr:
		return &IndexAssignAccess{base: e.base, Target: e.Target, Index: e.Index}, nil
	default:
		return nil, newErr(InvalidAssignmentTarget, expr.Pos(), "invalid assignment target")
	}
}

// parseStatement is the top-level entry for one inline statement: it
// strips a leading 'let', looks for a top-level assignment operator, and
// otherwise falls through to the expression pipeline.
func parseStatement(tokens []lexer.Token) (Expression, error) {
	if len(tokens) == 0 {
		return nil, newErr(MissingBody, Position{1, 1}, "empty statement")
	}

	flags := AssignFlags(0)
	rest := tokens
	if tokens[0].Type == lexer.KW_LET {
		flags |= FlagLet
		rest = tokens[1:]
	}

	idx, opType := findTopLevelAssign(rest)
	if idx < 0 {
		if flags&FlagLet != 0 {
			return nil, newErr(InvalidAssignmentTarget, posOf(tokens[0]), "'let' requires an assignment")
		}
		return parseExpressionTokens(rest)
	}

	switch opType {
	case lexer.COND_ASSN:
		flags |= FlagConditional
	case lexer.ARROW:
		flags |= FlagLet
	}

	target, err := parseAssignTarget(rest[:idx])
	if err != nil {
		return nil, err
	}
	value, err := parseExpressionTokens(rest[idx+1:])
	if err != nil {
		return nil, err
	}
	return &AssignmentExpr{base: base{target.Pos()}, Target: target, Expression: value, Flags: flags}, nil
}
