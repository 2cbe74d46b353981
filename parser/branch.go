package parser

import "github.com/pusl-lang/pusl/lexer"

// parseIfChain merges one `if` lex unit with any immediately following
// `elseif`/`else` siblings into a single IfBranch, since the lexer
// already separated them into sibling lex units (SPEC_FULL.md §4.1: an
// `else` is promoted to `elseif` when followed by `if`).
func parseIfChain(chain []lexer.LexUnit) (*IfBranch, error) {
	br := &IfBranch{base: base{posOf(chain[0].Tokens[0])}}

	for _, u := range chain {
		if u.Kind == lexer.BlockElse {
			body, err := parseConditionBody(u, func(header []lexer.Token) error {
				if len(header) != 1 { // just "else"
					return newErr(UnexpectedToken, posOf(header[0]), "'else' takes no condition")
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
			br.Else = body
			continue
		}

		var cond Expression
		consume := func(header []lexer.Token) error {
			skip := 1 // "if"
			if u.Kind == lexer.BlockElseIf {
				skip = 2 // "else", "if"
			}
			c, err := parseExpressionTokens(header[skip:])
			if err != nil {
				return err
			}
			cond = c
			return nil
		}
		body, err := parseConditionBody(u, consume)
		if err != nil {
			return nil, err
		}
		br.Conditions = append(br.Conditions, cond)
		br.Bodies = append(br.Bodies, body)
	}

	return br, nil
}

func parseWhile(u lexer.LexUnit) (*WhileBranch, error) {
	br := &WhileBranch{base: base{posOf(u.Tokens[0])}}
	body, err := parseConditionBody(u, func(header []lexer.Token) error {
		cond, err := parseExpressionTokens(header[1:])
		if err != nil {
			return err
		}
		br.Cond = cond
		return nil
	})
	if err != nil {
		return nil, err
	}
	br.Body = body
	return br, nil
}

// parseForEach parses `for <name> in <iterable>:`.
func parseForEach(u lexer.LexUnit) (*ForEachBranch, error) {
	br := &ForEachBranch{base: base{posOf(u.Tokens[0])}}
	body, err := parseConditionBody(u, func(header []lexer.Token) error {
		if len(header) < 4 || header[1].Type != lexer.IDENTIFIER || header[2].Type != lexer.KW_IN {
			return newErr(UnexpectedToken, posOf(header[0]), "expected 'for <name> in <iterable>'")
		}
		br.VarName = header[1].Literal
		iter, err := parseExpressionTokens(header[3:])
		if err != nil {
			return err
		}
		br.Iterable = iter
		return nil
	})
	if err != nil {
		return nil, err
	}
	br.Body = body
	return br, nil
}

// parseCompare parses `compare <left>, <right>:` with exactly three
// children in source order (greater, equal, less); the arms are told apart
// by position only, with no keyword of their own.
func parseCompare(u lexer.LexUnit) (*CompareBranch, error) {
	br := &CompareBranch{base: base{posOf(u.Tokens[0])}}

	colonIdx := -1
	for i, t := range u.Tokens {
		if t.Type == lexer.COLON {
			colonIdx = i
			break
		}
	}
	if colonIdx < 0 {
		return nil, newErr(MissingBody, posOf(u.Tokens[0]), "'compare' block missing ':'")
	}
	header := u.Tokens[1:colonIdx]
	commaIdx := -1
	for i, t := range header {
		if t.Type == lexer.COMMA {
			commaIdx = i
			break
		}
	}
	if commaIdx < 0 {
		return nil, newErr(UnexpectedToken, posOf(u.Tokens[0]), "expected 'compare <left>, <right>:'")
	}
	left, err := parseExpressionTokens(header[:commaIdx])
	if err != nil {
		return nil, err
	}
	right, err := parseExpressionTokens(header[commaIdx+1:])
	if err != nil {
		return nil, err
	}
	br.Left, br.Right = left, right

	arms, err := parseUnitList(u.Children)
	if err != nil {
		return nil, err
	}
	if len(arms) != 3 {
		return nil, newErr(MissingBody, posOf(u.Tokens[0]), "'compare' requires exactly three arms (greater, equal, less)")
	}
	br.Greater, br.Equal, br.Less = arms[0], arms[1], arms[2]
	return br, nil
}

// parseTryChain merges a `try` lex unit with its mandatory following
// `yoink <guard> as <name>:` sibling.
func parseTryChain(tryUnit, yoinkUnit lexer.LexUnit) (*TryBranch, error) {
	br := &TryBranch{base: base{posOf(tryUnit.Tokens[0])}}

	tryBody, err := parseConditionBody(tryUnit, func(header []lexer.Token) error {
		if len(header) != 1 {
			return newErr(UnexpectedToken, posOf(header[0]), "'try' takes no condition")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	br.TryBody = tryBody

	catchBody, err := parseConditionBody(yoinkUnit, func(header []lexer.Token) error {
		// yoink <guard-expr> as <name>
		asIdx := -1
		for i, t := range header {
			if t.Type == lexer.KW_AS {
				asIdx = i
				break
			}
		}
		if asIdx < 0 || asIdx+1 >= len(header) || header[asIdx+1].Type != lexer.IDENTIFIER {
			return newErr(UnexpectedToken, posOf(header[0]), "expected 'yoink <expr> as <name>'")
		}
		guard, err := parseExpressionTokens(header[1:asIdx])
		if err != nil {
			return err
		}
		br.YoinkGuard = guard
		br.CatchVar = header[asIdx+1].Literal
		return nil
	})
	if err != nil {
		return nil, err
	}
	br.CatchBody = catchBody
	return br, nil
}
