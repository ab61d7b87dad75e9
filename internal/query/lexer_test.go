package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLex_SimplePredicate(t *testing.T) {
	tokens, err := Lex(`ext == rs`)
	require.NoError(t, err)

	require.Len(t, tokens, 4) // ext, ==, rs, EOF
	assert.Equal(t, Token{Kind: TokWord, Text: "ext", Offset: 0}, tokens[0])
	assert.Equal(t, Token{Kind: TokOp, Text: "==", Offset: 4}, tokens[1])
	assert.Equal(t, Token{Kind: TokWord, Text: "rs", Offset: 7}, tokens[2])
	assert.Equal(t, TokEOF, tokens[3].Kind)
}

func TestLex_OperatorsMaximalMunch(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"size >= 10", ">="},
		{"size <= 10", "<="},
		{"size > 10", ">"},
		{"size <> 10", "<>"},
		{"name != x", "!="},
		{"name ~= x", "~="},
		{"name =~ x", "=~"},
		{"name = x", "="},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := Lex(tt.input)
			require.NoError(t, err)
			require.Equal(t, TokOp, tokens[1].Kind)
			assert.Equal(t, tt.want, tokens[1].Text)
		})
	}
}

func TestLex_NoSpacesAroundOperator(t *testing.T) {
	tokens, err := Lex(`size>1024`)
	require.NoError(t, err)

	require.Len(t, tokens, 4)
	assert.Equal(t, "size", tokens[0].Text)
	assert.Equal(t, ">", tokens[1].Text)
	assert.Equal(t, "1024", tokens[2].Text)
}

func TestLex_BangIsNotUnlessNotEquals(t *testing.T) {
	tokens, err := Lex(`!name != x`)
	require.NoError(t, err)

	assert.Equal(t, TokNot, tokens[0].Kind)
	assert.Equal(t, TokWord, tokens[1].Kind)
	assert.Equal(t, TokOp, tokens[2].Kind)
	assert.Equal(t, "!=", tokens[2].Text)
}

func TestLex_QuotedStrings(t *testing.T) {
	tokens, err := Lex(`name == "hello world"`)
	require.NoError(t, err)
	assert.Equal(t, Token{Kind: TokString, Text: "hello world", Offset: 8}, tokens[2])

	tokens, err = Lex(`name == 'single'`)
	require.NoError(t, err)
	assert.Equal(t, TokString, tokens[2].Kind)
	assert.Equal(t, "single", tokens[2].Text)

	tokens, err = Lex(`name == "tab\there"`)
	require.NoError(t, err)
	assert.Equal(t, "tab\there", tokens[2].Text)

	tokens, err = Lex(`name == "quote\"d"`)
	require.NoError(t, err)
	assert.Equal(t, `quote"d`, tokens[2].Text)

	tokens, err = Lex(`name == "back\\slash"`)
	require.NoError(t, err)
	assert.Equal(t, `back\slash`, tokens[2].Text)
}

func TestLex_InvalidEscape(t *testing.T) {
	_, err := Lex(`name == "^1\."`)
	require.Error(t, err)

	var syntaxErr *SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, 11, syntaxErr.Offset, "offset should point at the backslash")
	assert.Contains(t, syntaxErr.Error(), `invalid escape sequence '\.'`)
}

func TestLex_UnterminatedString(t *testing.T) {
	_, err := Lex(`name == "oops`)
	require.Error(t, err)
	assert.True(t, IsSyntaxError(err))

	var syntaxErr *SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, 8, syntaxErr.Offset, "offset should point at the opening quote")
}

func TestLex_Sets(t *testing.T) {
	tokens, err := Lex(`ext in [rs, js, ts]`)
	require.NoError(t, err)

	require.Equal(t, TokSet, tokens[2].Kind)
	assert.Equal(t, "rs, js, ts", tokens[2].Text, "set token holds the raw interior")
}

func TestLex_SetWithQuotedCommas(t *testing.T) {
	tokens, err := Lex(`name in ["foo, bar", baz]`)
	require.NoError(t, err)

	require.Equal(t, TokSet, tokens[2].Kind)
	assert.Equal(t, `"foo, bar", baz`, tokens[2].Text)
}

func TestLex_UnterminatedSet(t *testing.T) {
	_, err := Lex(`ext in [rs, js`)
	require.Error(t, err)
	assert.True(t, IsSyntaxError(err))
}

func TestLex_StructuredSelectorKeepsBrackets(t *testing.T) {
	// Brackets after a format prefix belong to the path, not a set.
	tokens, err := Lex(`yaml:.items[*].enabled == true`)
	require.NoError(t, err)

	require.Equal(t, TokWord, tokens[0].Kind)
	assert.Equal(t, "yaml:.items[*].enabled", tokens[0].Text)
	assert.Equal(t, "==", tokens[1].Text)
	assert.Equal(t, "true", tokens[2].Text)
}

func TestLex_BooleanKeywords(t *testing.T) {
	tokens, err := Lex(`a AND b or c NOT d && e || f`)
	require.NoError(t, err)

	kinds := make([]TokenKind, 0, len(tokens))
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []TokenKind{
		TokWord, TokAnd, TokWord, TokOr, TokWord, TokNot,
		TokWord, TokAnd, TokWord, TokOr, TokWord, TokEOF,
	}, kinds)
}

func TestLex_RelativeTimeValue(t *testing.T) {
	// "-7d" must stay one word; '-' is a word character.
	tokens, err := Lex(`modified > -7d`)
	require.NoError(t, err)

	assert.Equal(t, "-7d", tokens[2].Text)
}

func TestLex_BareCommaSet(t *testing.T) {
	// Unbracketed sets stay one word: "rs,js,ts" is a single token.
	tokens, err := Lex(`ext in rs,js,ts`)
	require.NoError(t, err)

	require.Len(t, tokens, 4)
	assert.Equal(t, TokWord, tokens[2].Kind)
	assert.Equal(t, "rs,js,ts", tokens[2].Text)
}

func TestLex_SingleAmpersandAndPipe(t *testing.T) {
	tokens, err := Lex(`a & b | c`)
	require.NoError(t, err)

	assert.Equal(t, TokAnd, tokens[1].Kind)
	assert.Equal(t, TokOr, tokens[3].Kind)
}

func TestLex_Offsets(t *testing.T) {
	tokens, err := Lex(`(size > 1kb)`)
	require.NoError(t, err)

	assert.Equal(t, 0, tokens[0].Offset)  // (
	assert.Equal(t, 1, tokens[1].Offset)  // size
	assert.Equal(t, 6, tokens[2].Offset)  // >
	assert.Equal(t, 8, tokens[3].Offset)  // 1kb
	assert.Equal(t, 11, tokens[4].Offset) // )
	assert.Equal(t, 12, tokens[5].Offset) // EOF
}
