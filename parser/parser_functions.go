package parser

import "github.com/pusl-lang/pusl/lexer"

// parseFuncDecl handles a lex unit the lexer flagged BlockFuncDecl: its
// header is either a bare `fn(params):` or an assignment whose right-hand
// side is the function literal (e.g. `let greet = fn(): ...`), and its
// body (inline tail or children) becomes the function's Body.
func parseFuncDecl(u lexer.LexUnit) (Expression, error) {
	var header Expression
	body, err := parseConditionBody(u, func(h []lexer.Token) error {
		expr, err := parseFuncDeclHeader(h)
		if err != nil {
			return err
		}
		header = expr
		return nil
	})
	if err != nil {
		return nil, err
	}

	if fn, ok := header.(*FuncDeclExpr); ok {
		fn.Body = body
		return fn, nil
	}

	assign, ok := header.(*AssignmentExpr)
	if !ok {
		return nil, newErr(UnexpectedToken, header.Pos(), "expected function declaration")
	}
	fn, ok := assign.Expression.(*FuncDeclExpr)
	if !ok {
		return nil, newErr(UnexpectedToken, header.Pos(), "expected function declaration on right-hand side")
	}
	fn.Body = body
	return assign, nil
}

// parseFuncDeclHeader parses everything before the block's colon: either a
// bare function literal, or an assignment target followed by one.
func parseFuncDeclHeader(header []lexer.Token) (Expression, error) {
	idx, opType := findTopLevelAssign(header)
	if idx < 0 {
		return parseFuncExpr(header)
	}

	flags := AssignFlags(0)
	left := header[:idx]
	if len(left) > 0 && left[0].Type == lexer.KW_LET {
		flags |= FlagLet
		left = left[1:]
	}
	switch opType {
	case lexer.COND_ASSN:
		flags |= FlagConditional
	case lexer.ARROW:
		flags |= FlagLet
	}

	target, err := parseAssignTarget(left)
	if err != nil {
		return nil, err
	}
	fnExpr, err := parseFuncExpr(header[idx+1:])
	if err != nil {
		return nil, err
	}
	return &AssignmentExpr{base: base{target.Pos()}, Target: target, Expression: fnExpr, Flags: flags}, nil
}

// parseFuncExpr parses `fn(<params>)` with no body attached yet; the
// caller fills in Body once the block's children or inline tail is known.
// The captured-binding list (FuncDeclExpr.Binds) is left empty here — free
// variables are discovered later by the linearizer, not written in source.
func parseFuncExpr(tokens []lexer.Token) (*FuncDeclExpr, error) {
	if len(tokens) < 3 || tokens[0].Type != lexer.KW_FN || tokens[1].Type != lexer.LPAREN {
		return nil, newErr(UnexpectedToken, posOf(tokens[0]), "expected 'fn(params)'")
	}
	j, err := matchEnclosure(tokens, 1, lexer.LPAREN, lexer.RPAREN)
	if err != nil {
		return nil, err
	}
	if j != len(tokens)-1 {
		return nil, newErr(UnexpectedToken, posOf(tokens[j+1]), "unexpected tokens after function parameter list")
	}

	var params []string
	inner := tokens[2:j]
	if len(inner) > 0 {
		for _, seg := range splitTopLevelCommas(inner) {
			if len(seg) != 1 || seg[0].Type != lexer.IDENTIFIER {
				return nil, newErr(UnexpectedToken, posOf(tokens[0]), "function parameters must be plain names")
			}
			params = append(params, seg[0].Literal)
		}
	}

	return &FuncDeclExpr{base: base{posOf(tokens[0])}, Params: params}, nil
}
