package parser

import (
	"strconv"

	"github.com/pusl-lang/pusl/lexer"
)

// slot is one element of the InBetween list the precedence pipeline rewrites:
// either a raw token awaiting a later pass (Lexeme) or an already-parsed
// subtree (Parsed). Grounded on the teacher's staged precedence-level design
// (parser_precedence.go) but reworked from Pratt climbing over a token
// cursor into repeated passes over a flat slot list, per SPEC_FULL.md §4.2.
type slot struct {
	tok    lexer.Token
	expr   Expression
	parsed bool
}

func tokSlot(t lexer.Token) slot { return slot{tok: t} }
func exprSlot(e Expression) slot { return slot{expr: e, parsed: true} }

func slotPos(s slot) Position {
	if s.parsed && s.expr != nil {
		return s.expr.Pos()
	}
	if s.tok.Line != 0 {
		return posOf(s.tok)
	}
	return Position{Line: 1, Column: 1}
}

// parseExpressionTokens runs the full fixed-order precedence pipeline over a
// flat token span and returns the single surviving expression.
func parseExpressionTokens(tokens []lexer.Token) (Expression, error) {
	if len(tokens) == 0 {
		return nil, newErr(MissingBody, Position{1, 1}, "expected expression")
	}

	slots, err := initialPass(tokens)
	if err != nil {
		return nil, err
	}

	passes := []func([]slot) ([]slot, error){
		callFieldPass,
		notPass,
		expPass,
		unaryMinusPass,
		mulPass,
		addPass,
		bitAndPass,
		bitOrPass,
		comparePass,
		elvisPass,
		statementKeywordPass,
	}
	for _, p := range passes {
		slots, err = p(slots)
		if err != nil {
			return nil, err
		}
	}

	if len(slots) != 1 || !slots[0].parsed {
		return nil, newErr(UnexpectedToken, slotPos(firstUnresolved(slots)), "could not reduce expression")
	}
	return slots[0].expr, nil
}

func firstUnresolved(slots []slot) slot {
	for _, s := range slots {
		if !s.parsed {
			return s
		}
	}
	if len(slots) > 0 {
		return slots[0]
	}
	return slot{}
}

// initialPass converts literal/reference/this/self tokens to parsed
// subtrees and resolves parenthesis and bracket enclosures. A paren or
// bracket immediately following a parsed slot produces a null-target
// call/index node that callFieldPass attaches to its target; a standalone
// paren recurses on its contents, and a standalone bracket is a list
// literal.
func initialPass(tokens []lexer.Token) ([]slot, error) {
	var out []slot
	i := 0
	for i < len(tokens) {
		t := tokens[i]
		switch t.Type {
		case lexer.INT_LIT:
			n, err := strconv.ParseInt(t.Literal, 10, 64)
			if err != nil {
				return nil, newErr(UnexpectedToken, posOf(t), "bad integer literal %q", t.Literal)
			}
			out = append(out, exprSlot(&LiteralExpr{base: base{posOf(t)}, Kind: LitInt, Int: n}))
			i++
		case lexer.FLOAT_LIT:
			f, err := strconv.ParseFloat(t.Literal, 64)
			if err != nil {
				return nil, newErr(UnexpectedToken, posOf(t), "bad float literal %q", t.Literal)
			}
			out = append(out, exprSlot(&LiteralExpr{base: base{posOf(t)}, Kind: LitFloat, Float: f}))
			i++
		case lexer.STRING_LIT:
			out = append(out, exprSlot(&LiteralExpr{base: base{posOf(t)}, Kind: LitString, Str: t.Literal}))
			i++
		case lexer.KW_TRUE, lexer.KW_FALSE:
			out = append(out, exprSlot(&LiteralExpr{base: base{posOf(t)}, Kind: LitBool, Bool: t.Type == lexer.KW_TRUE}))
			i++
		case lexer.KW_NULL:
			out = append(out, exprSlot(&LiteralExpr{base: base{posOf(t)}, Kind: LitNull}))
			i++
		case lexer.KW_SELF:
			out = append(out, exprSlot(&SelfExpr{base{posOf(t)}}))
			i++
		case lexer.KW_THIS:
			out = append(out, exprSlot(&ThisExpr{base{posOf(t)}}))
			i++
		case lexer.IDENTIFIER:
			out = append(out, exprSlot(&ReferenceExpr{base: base{posOf(t)}, Name: t.Literal}))
			i++
		case lexer.LPAREN:
			j, err := matchEnclosure(tokens, i, lexer.LPAREN, lexer.RPAREN)
			if err != nil {
				return nil, err
			}
			inner := tokens[i+1 : j]
			if len(out) > 0 && out[len(out)-1].parsed {
				args, err := parseArgList(inner)
				if err != nil {
					return nil, err
				}
				out = append(out, exprSlot(&CallExpr{base: base{posOf(t)}, Target: nil, Args: args}))
			} else {
				if len(inner) == 0 {
					return nil, newErr(UnexpectedToken, posOf(t), "empty parenthesized expression")
				}
				inExpr, err := parseExpressionTokens(inner)
				if err != nil {
					return nil, err
				}
				out = append(out, exprSlot(inExpr))
			}
			i = j + 1
		case lexer.RPAREN:
			return nil, newErr(UnbalancedEnclosure, posOf(t), "unmatched ')'")
		case lexer.LBRACKET:
			j, err := matchEnclosure(tokens, i, lexer.LBRACKET, lexer.RBRACKET)
			if err != nil {
				return nil, err
			}
			inner := tokens[i+1 : j]
			if len(out) > 0 && out[len(out)-1].parsed {
				if len(inner) == 0 {
					return nil, newErr(UnexpectedToken, posOf(t), "empty index expression")
				}
				idx, err := parseExpressionTokens(inner)
				if err != nil {
					return nil, err
				}
				out = append(out, exprSlot(&ListAccessExpr{base: base{posOf(t)}, Target: nil, Index: idx}))
			} else {
				elems, err := parseArgList(inner)
				if err != nil {
					return nil, err
				}
				out = append(out, exprSlot(&ListDeclExpr{base: base{posOf(t)}, Elements: elems}))
			}
			i = j + 1
		case lexer.RBRACKET:
			return nil, newErr(UnbalancedEnclosure, posOf(t), "unmatched ']'")
		default:
			out = append(out, tokSlot(t))
			i++
		}
	}
	return out, nil
}

// matchEnclosure finds the index of the closing token balancing the opening
// token at tokens[start], tracking nested depth.
func matchEnclosure(tokens []lexer.Token, start int, open, close lexer.TokenType) (int, error) {
	depth := 0
	for i := start; i < len(tokens); i++ {
		switch tokens[i].Type {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, newErr(UnbalancedEnclosure, posOf(tokens[start]), "unmatched %q", string(open))
}

// splitTopLevelCommas splits tokens on commas that are not nested inside a
// paren or bracket; an empty input yields a single empty segment.
func splitTopLevelCommas(tokens []lexer.Token) [][]lexer.Token {
	var segments [][]lexer.Token
	depth := 0
	start := 0
	for i, t := range tokens {
		switch t.Type {
		case lexer.LPAREN, lexer.LBRACKET:
			depth++
		case lexer.RPAREN, lexer.RBRACKET:
			depth--
		case lexer.COMMA:
			if depth == 0 {
				segments = append(segments, tokens[start:i])
				start = i + 1
			}
		}
	}
	segments = append(segments, tokens[start:])
	return segments
}

// parseArgList parses a comma-separated argument/element list; an empty
// token span is zero arguments, not one empty argument.
func parseArgList(tokens []lexer.Token) ([]Expression, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	var args []Expression
	for _, seg := range splitTopLevelCommas(tokens) {
		e, err := parseExpressionTokens(seg)
		if err != nil {
			return nil, err
		}
		args = append(args, e)
	}
	return args, nil
}

// callFieldPass attaches null-target call/index nodes to their preceding
// target and resolves dot field-access, promoting a dotted call into a
// MethodCallExpr instead of a plain CallExpr of a bare reference.
func callFieldPass(in []slot) ([]slot, error) {
	var out []slot
	i := 0
	for i < len(in) {
		s := in[i]

		if !s.parsed && s.tok.Type == lexer.DOT {
			if len(out) == 0 || !out[len(out)-1].parsed {
				return nil, newErr(UnexpectedToken, posOf(s.tok), "'.' with no preceding expression")
			}
			if i+1 >= len(in) || !in[i+1].parsed {
				return nil, newErr(UnexpectedToken, posOf(s.tok), "expected field name after '.'")
			}
			ref, ok := in[i+1].expr.(*ReferenceExpr)
			if !ok {
				return nil, newErr(UnexpectedToken, posOf(s.tok), "expected field name after '.'")
			}
			target := out[len(out)-1].expr
			out = out[:len(out)-1]

			if i+2 < len(in) && in[i+2].parsed {
				if call, ok := in[i+2].expr.(*CallExpr); ok && call.Target == nil {
					out = append(out, exprSlot(&MethodCallExpr{base: base{target.Pos()}, Target: target, Method: ref.Name, Args: call.Args}))
					i += 3
					continue
				}
			}
			out = append(out, exprSlot(&FieldAccessExpr{base: base{target.Pos()}, Target: target, Field: ref.Name}))
			i += 2
			continue
		}

		if s.parsed {
			if call, ok := s.expr.(*CallExpr); ok && call.Target == nil {
				if len(out) == 0 || !out[len(out)-1].parsed {
					return nil, newErr(UnexpectedToken, slotPos(s), "call with no target")
				}
				target := out[len(out)-1].expr
				out = out[:len(out)-1]
				out = append(out, exprSlot(&CallExpr{base: base{target.Pos()}, Target: target, Args: call.Args}))
				i++
				continue
			}
			if la, ok := s.expr.(*ListAccessExpr); ok && la.Target == nil {
				if len(out) == 0 || !out[len(out)-1].parsed {
					return nil, newErr(UnexpectedToken, slotPos(s), "index with no target")
				}
				target := out[len(out)-1].expr
				out = out[:len(out)-1]
				out = append(out, exprSlot(&ListAccessExpr{base: base{target.Pos()}, Target: target, Index: la.Index}))
				i++
				continue
			}
		}

		out = append(out, s)
		i++
	}
	return out, nil
}

// unaryPrefixPass scans right-to-left so chained prefix operators (e.g. a
// double negation) associate correctly: the rightmost operator always
// finds its operand first.
func unaryPrefixPass(in []slot, opType lexer.TokenType, build func(op lexer.Token, operand Expression) Expression) ([]slot, error) {
	out := make([]slot, len(in))
	copy(out, in)
	for i := len(out) - 2; i >= 0; i-- {
		if !out[i].parsed && out[i].tok.Type == opType {
			if i+1 >= len(out) || !out[i+1].parsed {
				return nil, newErr(UnexpectedToken, posOf(out[i].tok), "unary operator with no operand")
			}
			combined := exprSlot(build(out[i].tok, out[i+1].expr))
			out = append(out[:i], append([]slot{combined}, out[i+2:]...)...)
		}
	}
	return out, nil
}

func notPass(in []slot) ([]slot, error) {
	return unaryPrefixPass(in, lexer.NOT, func(op lexer.Token, operand Expression) Expression {
		return &UnaryExpr{base: base{posOf(op)}, Op: OpNot, Operand: operand}
	})
}

// unaryMinusPass treats '-' as unary negation only where the left neighbor
// is not itself a parsed subtree; otherwise it is left for addPass to
// consume as binary subtraction.
func unaryMinusPass(in []slot) ([]slot, error) {
	out := make([]slot, len(in))
	copy(out, in)
	for i := len(out) - 2; i >= 0; i-- {
		if out[i].parsed || out[i].tok.Type != lexer.MINUS {
			continue
		}
		if i > 0 && out[i-1].parsed {
			continue // binary minus, handled by addPass
		}
		if i+1 >= len(out) || !out[i+1].parsed {
			return nil, newErr(UnexpectedToken, posOf(out[i].tok), "unary '-' with no operand")
		}
		combined := exprSlot(&UnaryExpr{base: base{posOf(out[i].tok)}, Op: OpNegate, Operand: out[i+1].expr})
		out = append(out[:i], append([]slot{combined}, out[i+2:]...)...)
	}
	return out, nil
}

// binaryPass folds every `[Parsed, Lexeme(op), Parsed]` run left to right,
// giving left associativity.
func binaryPass(in []slot, matchOp func(lexer.TokenType) bool, build func(op lexer.Token, left, right Expression) Expression) ([]slot, error) {
	var out []slot
	i := 0
	for i < len(in) {
		s := in[i]
		if !s.parsed && matchOp(s.tok.Type) {
			if len(out) == 0 || !out[len(out)-1].parsed {
				return nil, newErr(UnexpectedToken, posOf(s.tok), "operator %q with no left operand", s.tok.Literal)
			}
			if i+1 >= len(in) || !in[i+1].parsed {
				return nil, newErr(UnexpectedToken, posOf(s.tok), "operator %q with no right operand", s.tok.Literal)
			}
			left := out[len(out)-1].expr
			right := in[i+1].expr
			out = out[:len(out)-1]
			out = append(out, exprSlot(build(s.tok, left, right)))
			i += 2
			continue
		}
		out = append(out, s)
		i++
	}
	return out, nil
}

func isOneOf(types ...lexer.TokenType) func(lexer.TokenType) bool {
	return func(t lexer.TokenType) bool {
		for _, ty := range types {
			if ty == t {
				return true
			}
		}
		return false
	}
}

func expPass(in []slot) ([]slot, error) {
	return binaryPass(in, isOneOf(lexer.DSTAR), func(op lexer.Token, l, r Expression) Expression {
		return &BinaryExpr{base: base{posOf(op)}, Op: OpExp, Left: l, Right: r}
	})
}

func mulPass(in []slot) ([]slot, error) {
	return binaryPass(in, isOneOf(lexer.STAR, lexer.SLASH, lexer.DSLASH, lexer.PERCENT), func(op lexer.Token, l, r Expression) Expression {
		var bo BinOp
		switch op.Type {
		case lexer.STAR:
			bo = OpMul
		case lexer.SLASH:
			bo = OpDiv
		case lexer.DSLASH:
			bo = OpDivTrunc
		case lexer.PERCENT:
			bo = OpMod
		}
		return &BinaryExpr{base: base{posOf(op)}, Op: bo, Left: l, Right: r}
	})
}

func addPass(in []slot) ([]slot, error) {
	return binaryPass(in, isOneOf(lexer.PLUS, lexer.MINUS), func(op lexer.Token, l, r Expression) Expression {
		bo := OpAdd
		if op.Type == lexer.MINUS {
			bo = OpSub
		}
		return &BinaryExpr{base: base{posOf(op)}, Op: bo, Left: l, Right: r}
	})
}

// bitAndPass and bitOrPass fold '&' and '|'; these lower straight to the
// VM's And/Or opcodes (there is no separate bitwise-integer opcode), so the
// AST records them as logical AndExpr/OrExpr.
func bitAndPass(in []slot) ([]slot, error) {
	return binaryPass(in, isOneOf(lexer.AMP), func(op lexer.Token, l, r Expression) Expression {
		return &AndExpr{base: base{posOf(op)}, Left: l, Right: r}
	})
}

func bitOrPass(in []slot) ([]slot, error) {
	return binaryPass(in, isOneOf(lexer.PIPE), func(op lexer.Token, l, r Expression) Expression {
		return &OrExpr{base: base{posOf(op)}, Left: l, Right: r}
	})
}

func comparePass(in []slot) ([]slot, error) {
	return binaryPass(in, isOneOf(lexer.EQ, lexer.NE, lexer.LT, lexer.LE, lexer.GT, lexer.GE), func(op lexer.Token, l, r Expression) Expression {
		var co CompareOp
		switch op.Type {
		case lexer.EQ:
			co = CmpEq
		case lexer.NE:
			co = CmpNe
		case lexer.LT:
			co = CmpLt
		case lexer.LE:
			co = CmpLe
		case lexer.GT:
			co = CmpGt
		case lexer.GE:
			co = CmpGe
		}
		return &CompareExpr{base: base{posOf(op)}, Op: co, Left: l, Right: r}
	})
}

func elvisPass(in []slot) ([]slot, error) {
	return binaryPass(in, isOneOf(lexer.ELVIS), func(op lexer.Token, l, r Expression) Expression {
		return &ElvisExpr{base: base{posOf(op)}, Left: l, Right: r}
	})
}

// statementKeywordPass handles the unary statement keywords return/yield/
// yeet, which take the whole remaining expression (if any) as their
// operand. Only valid leading the slot list, since they are statement
// prefixes rather than sub-expression operators.
func statementKeywordPass(in []slot) ([]slot, error) {
	if len(in) == 0 || in[0].parsed {
		return in, nil
	}
	kw := in[0].tok
	switch kw.Type {
	case lexer.KW_RETURN:
		rest := in[1:]
		if len(rest) == 0 {
			return []slot{exprSlot(&ReturnExpr{base: base{posOf(kw)}})}, nil
		}
		if len(rest) != 1 || !rest[0].parsed {
			return nil, newErr(UnexpectedToken, posOf(kw), "malformed 'return'")
		}
		return []slot{exprSlot(&ReturnExpr{base: base{posOf(kw)}, Value: rest[0].expr})}, nil
	case lexer.KW_YIELD:
		rest := in[1:]
		if len(rest) != 1 || !rest[0].parsed {
			return nil, newErr(UnexpectedToken, posOf(kw), "expected expression after 'yield'")
		}
		return []slot{exprSlot(&YieldExpr{base: base{posOf(kw)}, Value: rest[0].expr})}, nil
	case lexer.KW_YEET:
		rest := in[1:]
		if len(rest) != 1 || !rest[0].parsed {
			return nil, newErr(UnexpectedToken, posOf(kw), "expected expression after 'yeet'")
		}
		return []slot{exprSlot(&YeetExpr{base: base{posOf(kw)}, Value: rest[0].expr})}, nil
	}
	return in, nil
}
