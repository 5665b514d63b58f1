package internal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizer_Classify(t *testing.T) {
	testData := []struct {
		content    string
		expectedTP TokenType
	}{
		{content: "{", expectedTP: LeftBraceTP},
		{content: "}", expectedTP: RightBraceTP},
		{content: "(", expectedTP: LeftParenTP},
		{content: ";", expectedTP: SemiColonTP},
		{content: ":", expectedTP: ColonTP},
		{content: "~", expectedTP: TildeTP},
		{content: "+", expectedTP: AddTP},
		{content: "==", expectedTP: IsTP},
		{content: "!=", expectedTP: IsntTP},
		{content: "<=", expectedTP: LessEqualTP},
		{content: ">=", expectedTP: GreaterEqualTP},
		{content: "&&", expectedTP: AndTP},
		{content: "||", expectedTP: OrTP},
		{content: "[]", expectedTP: IndexTP},
		{content: "/*", expectedTP: MultipleLineOpenCommentTP},
		{content: "*/", expectedTP: MultipleLineCloseCommentTP},
		{content: "//", expectedTP: SingleLineCommentTP},
		{content: "cast", expectedTP: CastTP},
		{content: "verbatim", expectedTP: VerbatimTP},
		{content: "struct", expectedTP: StructTP},
		{content: "enum", expectedTP: EnumTP},
		{content: "while", expectedTP: WhileTP},
		{content: "true", expectedTP: TrueTP},
		{content: "null", expectedTP: NullTP},
		{content: "101", expectedTP: IntegerTP},
		{content: "10.5", expectedTP: RealTP},
		{content: "varA", expectedTP: IdentifierTP},
		// Primitive type names are ordinary identifiers.
		{content: "int", expectedTP: IdentifierTP},
		{content: "boolean", expectedTP: IdentifierTP},
	}
	for _, testD := range testData {
		assert.Equal(t, testD.expectedTP, classifyLexeme(testD.content), testD.content)
	}
}

func TestTokenizer_Tokenize(t *testing.T) {
	tokenizer := &Tokenizer{}
	tokens := tokenizer.Tokenize("test.orange", []byte("int a = 1 + 2.5;"))
	expected := []TokenType{IdentifierTP, IdentifierTP, EqualTP, IntegerTP, AddTP, RealTP, SemiColonTP, EOFTP}
	assert.Equal(t, len(expected), len(tokens))
	for i, tp := range expected {
		assert.Equal(t, tp, tokens[i].tp)
	}
	assert.Equal(t, "2.5", tokens[5].content)
}

func TestTokenizer_EmptyInput(t *testing.T) {
	tokenizer := &Tokenizer{}
	tokens := tokenizer.Tokenize("test.orange", nil)
	assert.Equal(t, 1, len(tokens))
	assert.Equal(t, EOFTP, tokens[0].tp)
}

func TestTokenizer_Lines(t *testing.T) {
	tokenizer := &Tokenizer{}
	tokens := tokenizer.Tokenize("test.orange", []byte("a\nb\n\nc"))
	last := 0
	for _, token := range tokens {
		assert.True(t, token.line >= last)
		last = token.line
	}
	assert.Equal(t, 1, tokens[0].line)
	assert.Equal(t, 2, tokens[2].line)
	assert.Equal(t, 4, tokens[5].line)
	eofCount := 0
	for _, token := range tokens {
		if token.tp == EOFTP {
			eofCount++
		}
	}
	assert.Equal(t, 1, eofCount)
}

func TestTokenizer_QuotedLexemes(t *testing.T) {
	tokenizer := &Tokenizer{}
	tokens := tokenizer.Tokenize("test.orange", []byte(`'a' "hello"`))
	assert.Equal(t, CharacterTP, tokens[0].tp)
	assert.Equal(t, "a", tokens[0].content)
	assert.Equal(t, StringTP, tokens[1].tp)
	assert.Equal(t, "hello", tokens[1].content)
}

func TestTokenizer_TrailingDotNumber(t *testing.T) {
	tokenizer := &Tokenizer{}
	tokens := tokenizer.Tokenize("test.orange", []byte("1. 2.5 3"))
	assert.Equal(t, IdentifierTP, tokens[0].tp)
	assert.Equal(t, "1.", tokens[0].content)
	assert.Equal(t, RealTP, tokens[1].tp)
	assert.Equal(t, "2.5", tokens[1].content)
	assert.Equal(t, IntegerTP, tokens[2].tp)
}

func TestTokenizer_UnmatchedQuote(t *testing.T) {
	tokenizer := &Tokenizer{}
	tokens := tokenizer.Tokenize("test.orange", []byte(`"never closed`))
	assert.Equal(t, 2, len(tokens))
	assert.Equal(t, StringTP, tokens[0].tp)
	assert.Equal(t, "never closed", tokens[0].content)
	assert.Equal(t, EOFTP, tokens[1].tp)
}

func TestTokenizer_BracketTerminatesPunctuation(t *testing.T) {
	tokenizer := &Tokenizer{}
	tokens := tokenizer.Tokenize("test.orange", []byte("a[1]"))
	expected := []TokenType{IdentifierTP, LeftBracketTP, IntegerTP, RightBracketTP, EOFTP}
	for i, tp := range expected {
		assert.Equal(t, tp, tokens[i].tp)
	}
}

func TestTokenizer_UnknownByteBecomesIdentifier(t *testing.T) {
	tokenizer := &Tokenizer{}
	tokens := tokenizer.Tokenize("test.orange", []byte("a @ b"))
	assert.Equal(t, IdentifierTP, tokens[1].tp)
	assert.Equal(t, "@", tokens[1].content)
}

func TestTokenizer_LongLexemeTruncated(t *testing.T) {
	tokenizer := &Tokenizer{}
	tokens := tokenizer.Tokenize("test.orange", []byte(strings.Repeat("a", 300)))
	assert.Equal(t, IdentifierTP, tokens[0].tp)
	assert.Equal(t, maxLexemeLen, len(tokens[0].content))
}

func TestTokenizer_CommentTokens(t *testing.T) {
	tokenizer := &Tokenizer{}
	tokens := tokenizer.Tokenize("test.orange", []byte("/* note */ a // rest"))
	expected := []TokenType{MultipleLineOpenCommentTP, IdentifierTP, MultipleLineCloseCommentTP,
		IdentifierTP, SingleLineCommentTP, IdentifierTP, EOFTP}
	assert.Equal(t, len(expected), len(tokens))
	for i, tp := range expected {
		assert.Equal(t, tp, tokens[i].tp)
	}
}
