package parser

import "github.com/pusl-lang/pusl/lexer"

// BranchStmt wraps a Branch so it can live inside a BlockExpr's statement
// list alongside plain expressions — spec.md keeps Expression and Branch
// as separate sum types, but a block's children are a mix of both.
type BranchStmt struct {
	base
	Branch Branch
}

func (*BranchStmt) exprNode() {}

// Parse turns a lex-unit tree into a ParsedFile: leading `import`
// statements at the root are consumed first, then every remaining lex
// unit becomes a branch (blocks) or an expression (statements), collected
// into one root BlockExpr.
func Parse(units []lexer.LexUnit) (*ParsedFile, error) {
	idx := 0
	imports, err := parseImports(units, &idx)
	if err != nil {
		return nil, err
	}

	stmts, err := parseUnitList(units[idx:])
	if err != nil {
		return nil, err
	}

	return &ParsedFile{Root: &BlockExpr{Statements: stmts}, Imports: imports}, nil
}

// parseImports consumes every leading `import path.segments [as alias]`
// statement at the root, advancing *idx past them.
func parseImports(units []lexer.LexUnit, idx *int) ([]Import, error) {
	var imports []Import
	for *idx < len(units) {
		u := units[*idx]
		if u.IsBlock || len(u.Tokens) == 0 || u.Tokens[0].Type != lexer.KW_IMPORT {
			break
		}
		imp, err := parseOneImport(u.Tokens)
		if err != nil {
			return nil, err
		}
		imports = append(imports, imp)
		*idx++
	}
	return imports, nil
}

func parseOneImport(tokens []lexer.Token) (Import, error) {
	if len(tokens) < 2 {
		return Import{}, newErr(UnexpectedToken, posOf(tokens[0]), "import requires a path")
	}
	i := 1
	var path []string
	for i < len(tokens) {
		if tokens[i].Type != lexer.IDENTIFIER {
			break
		}
		path = append(path, tokens[i].Literal)
		i++
		if i < len(tokens) && tokens[i].Type == lexer.DOT {
			i++
			continue
		}
		break
	}
	if len(path) == 0 {
		return Import{}, newErr(UnexpectedToken, posOf(tokens[0]), "import path must have at least one segment")
	}
	alias := path[len(path)-1]
	if i < len(tokens) && tokens[i].Type == lexer.KW_AS {
		i++
		if i >= len(tokens) || tokens[i].Type != lexer.IDENTIFIER {
			return Import{}, newErr(UnexpectedToken, posOf(tokens[0]), "expected identifier after 'as'")
		}
		alias = tokens[i].Literal
		i++
	}
	if i != len(tokens) {
		return Import{}, newErr(UnexpectedToken, posOf(tokens[i]), "unexpected token after import")
	}
	return Import{Path: path, Alias: alias}, nil
}

// parseUnitList turns a sibling run of lex units into a statement list,
// each becoming a Branch (wrapped) or an Expression.
func parseUnitList(units []lexer.LexUnit) ([]Expression, error) {
	stmts := make([]Expression, 0, len(units))
	i := 0
	for i < len(units) {
		u := units[i]

		if u.IsBlock && u.Kind == lexer.BlockIf {
			chain := []lexer.LexUnit{u}
			j := i + 1
			for j < len(units) && units[j].IsBlock &&
				(units[j].Kind == lexer.BlockElseIf || units[j].Kind == lexer.BlockElse) {
				chain = append(chain, units[j])
				isElse := units[j].Kind == lexer.BlockElse
				j++
				if isElse {
					break
				}
			}
			br, err := parseIfChain(chain)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, &BranchStmt{base{br.Pos()}, br})
			i = j
			continue
		}

		if u.IsBlock && (u.Kind == lexer.BlockElseIf || u.Kind == lexer.BlockElse) {
			return nil, newErr(UnexpectedToken, posOf(u.Tokens[0]), "'else' with no preceding 'if'")
		}

		if u.IsBlock && u.Kind == lexer.BlockTry {
			if i+1 >= len(units) || !units[i+1].IsBlock || units[i+1].Kind != lexer.BlockYoink {
				return nil, newErr(MissingBody, posOf(u.Tokens[0]), "'try' must be followed by a 'yoink' block")
			}
			br, err := parseTryChain(u, units[i+1])
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, &BranchStmt{base{br.Pos()}, br})
			i += 2
			continue
		}

		if u.IsBlock && u.Kind == lexer.BlockYoink {
			return nil, newErr(UnexpectedToken, posOf(u.Tokens[0]), "'yoink' with no preceding 'try'")
		}

		expr, err := parseUnit(u)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, expr)
		i++
	}
	return stmts, nil
}

// parseUnit dispatches one lex unit (that is not part of an if/try chain,
// which parseUnitList handles directly) to its branch or expression
// parser.
func parseUnit(u lexer.LexUnit) (Expression, error) {
	if !u.IsBlock {
		return parseStatement(u.Tokens)
	}

	switch u.Kind {
	case lexer.BlockWhile:
		br, err := parseWhile(u)
		if err != nil {
			return nil, err
		}
		return &BranchStmt{base{br.Pos()}, br}, nil
	case lexer.BlockFor:
		br, err := parseForEach(u)
		if err != nil {
			return nil, err
		}
		return &BranchStmt{base{br.Pos()}, br}, nil
	case lexer.BlockCompare:
		br, err := parseCompare(u)
		if err != nil {
			return nil, err
		}
		return &BranchStmt{base{br.Pos()}, br}, nil
	case lexer.BlockFuncDecl:
		return parseFuncDecl(u)
	default:
		return nil, newErr(UnexpectedToken, posOf(u.Tokens[0]), "unrecognized block kind")
	}
}

// parseConditionBody is the single skeleton every branch handler uses
// (spec.md §4.2): a caller-supplied consumer parses the header tokens up
// to (but not including) the colon, then the remainder becomes the body —
// the inline tokens after the colon alone (no children), or a joiner
// BlockExpr over the inline statement (if any) followed by the parsed
// children. An inline body starting with `if` is parsed as a one-line
// if block of its own.
func parseConditionBody(u lexer.LexUnit, consume func(header []lexer.Token) error) (Expression, error) {
	colonIdx := -1
	for i, t := range u.Tokens {
		if t.Type == lexer.COLON {
			colonIdx = i
			break
		}
	}
	if colonIdx < 0 {
		return nil, newErr(MissingBody, posOf(u.Tokens[0]), "block header missing ':'")
	}
	if err := consume(u.Tokens[:colonIdx]); err != nil {
		return nil, err
	}

	inline := u.Tokens[colonIdx+1:]
	if len(u.Children) == 0 && len(inline) == 0 {
		return nil, newErr(MissingBody, posOf(u.Tokens[0]), "block has no body")
	}
	units := u.Children
	if len(inline) != 0 {
		units = append([]lexer.LexUnit{{Tokens: inline, IsBlock: inline[0].Type == lexer.KW_IF, Kind: lexer.BlockIf}}, units...)
	}
	stmts, err := parseUnitList(units)
	if err != nil {
		return nil, err
	}
	if len(u.Children) == 0 {
		return stmts[0], nil
	}
	return &BlockExpr{Statements: stmts}, nil
}
