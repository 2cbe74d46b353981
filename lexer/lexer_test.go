package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pusl-lang/pusl/lexer"
)

func TestTokenizeLineSymbolsAndKeywords(t *testing.T) {
	units, err := lexer.Lex("let fib = fn(n):\n  return n")
	require.NoError(t, err)
	require.Len(t, units, 1)

	header := units[0]
	assert.True(t, header.IsBlock)
	assert.Equal(t, lexer.BlockFuncDecl, header.Kind)
	assert.Equal(t, lexer.KW_LET, header.Tokens[0].Type)
	assert.Equal(t, lexer.KW_FN, header.Tokens[3].Type)

	require.Len(t, header.Children, 1)
	assert.Equal(t, lexer.KW_RETURN, header.Children[0].Tokens[0].Type)
}

func TestTwoCharOperators(t *testing.T) {
	units, err := lexer.Lex("x = a ** b // c ?: d")
	require.NoError(t, err)
	require.Len(t, units, 1)
	types := tokenTypes(units[0].Tokens)
	assert.Contains(t, types, lexer.DSTAR)
	assert.Contains(t, types, lexer.DSLASH)
	assert.Contains(t, types, lexer.ELVIS)
}

func TestStringEscapes(t *testing.T) {
	units, err := lexer.Lex(`print("a\nb\tc\\d\"e")`)
	require.NoError(t, err)
	str := units[0].Tokens[2]
	assert.Equal(t, lexer.STRING_LIT, str.Type)
	assert.Equal(t, "a\nb\tc\\d\"e", str.Literal)
}

func TestUnterminatedString(t *testing.T) {
	_, err := lexer.Lex(`print("unterminated`)
	require.Error(t, err)
	var synErr *lexer.SyntaxError
	require.ErrorAs(t, err, &synErr)
	assert.Equal(t, lexer.UnterminatedString, synErr.Kind)
}

func TestMixedIndentationRejected(t *testing.T) {
	src := "if true:\n\t print(1)"
	_, err := lexer.Lex(src)
	require.Error(t, err)
	var synErr *lexer.SyntaxError
	require.ErrorAs(t, err, &synErr)
	assert.Equal(t, lexer.BadIndentation, synErr.Kind)
}

func TestMissingColonOnBlock(t *testing.T) {
	_, err := lexer.Lex("if true\n  print(1)")
	require.Error(t, err)
	var synErr *lexer.SyntaxError
	require.ErrorAs(t, err, &synErr)
	assert.Equal(t, lexer.MissingColon, synErr.Kind)
}

func TestElseIfPromotion(t *testing.T) {
	src := "if a:\n  print(1)\nelse if b:\n  print(2)"
	units, err := lexer.Lex(src)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, lexer.BlockElseIf, units[1].Kind)
}

func TestInlineOneLinerBlockHasNoChildren(t *testing.T) {
	units, err := lexer.Lex("if n < 2: return n")
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.True(t, units[0].IsBlock)
	assert.Empty(t, units[0].Children)
	// the inline body tokens (return n) remain part of the header line
	assert.Equal(t, lexer.KW_RETURN, units[0].Tokens[len(units[0].Tokens)-2].Type)
}

func TestSiblingIndentMismatchRejected(t *testing.T) {
	src := "if a:\n  print(1)\n   print(2)"
	_, err := lexer.Lex(src)
	require.Error(t, err)
	var synErr *lexer.SyntaxError
	require.ErrorAs(t, err, &synErr)
	assert.Equal(t, lexer.BadIndentation, synErr.Kind)
}

func tokenTypes(tokens []lexer.Token) []lexer.TokenType {
	out := make([]lexer.TokenType, len(tokens))
	for i, t := range tokens {
		out[i] = t.Type
	}
	return out
}
