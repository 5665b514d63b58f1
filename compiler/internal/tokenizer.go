package internal

import (
	"github.com/orange-lang/orange/util"
)

// A simple Tokenizer for orange. The scanner is a small state machine: the
// begin state dispatches on the first character of a token, the other states
// (text, integer, float, char, string, punctuation) accumulate the lexeme and
// hand it to classifyLexeme. Lexing never fails: unrecognized punctuation
// becomes an identifier token bearing the text, an unmatched quote consumes to
// the end of the input.

type Tokenizer struct {
	src         []byte
	currentPos  int
	currentLine int
	currentFile string
	tokens      []*Token
}

// singleCharTokenSet holds the characters that always form a one-character
// token on their own.
var singleCharTokenSet = map[byte]bool{
	'{': true, '}': true, '(': true, ')': true, ';': true, ',': true,
	'.': true, '+': true, '-': true, '^': true, '~': true, ':': true,
}

// punctuationSet holds the characters that open the punctuation state.
var punctuationSet = map[byte]bool{
	'<': true, '>': true, '=': true, '[': true, ']': true,
	'&': true, '|': true, '!': true, '/': true, '*': true,
}

// Tokenize scans src and returns the token sequence, terminated by a single
// EOF sentinel. Line numbers are 1-based and monotone non-decreasing.
func (tokenizer *Tokenizer) Tokenize(fileName string, src []byte) []*Token {
	tokenizer.currentFile, tokenizer.src = fileName, src
	tokenizer.currentPos, tokenizer.currentLine = 0, 1
	tokenizer.tokens = nil
	for tokenizer.hasRemainCharacters() {
		tokenizer.trimSpace()
		if !tokenizer.hasRemainCharacters() {
			break
		}
		b := tokenizer.src[tokenizer.currentPos]
		switch {
		case b == '\n':
			tokenizer.tokenNewline()
		case singleCharTokenSet[b]:
			tokenizer.tokenSingleChar()
		case util.IsLetterOrUnderscore(b):
			tokenizer.tokenText()
		case util.IsNumber(b):
			tokenizer.tokenNumber()
		case b == '\'':
			tokenizer.tokenQuoted('\'', CharacterTP)
		case b == '"':
			tokenizer.tokenQuoted('"', StringTP)
		case punctuationSet[b]:
			tokenizer.tokenPunctuation()
		default:
			// An unrecognized byte yields an identifier bearing the text.
			tokenizer.appendToken(string(b), IdentifierTP)
			tokenizer.currentPos++
		}
	}
	tokenizer.appendToken("", EOFTP)
	return tokenizer.tokens
}

// trimSpace steps forward through src and skips all continuous space.
// Newlines are not space: they are emitted as tokens to drive line counting.
func (tokenizer *Tokenizer) trimSpace() {
	for tokenizer.hasRemainCharacters() {
		b := tokenizer.src[tokenizer.currentPos]
		if b == ' ' || b == '\t' || b == '\r' {
			tokenizer.currentPos++
			continue
		}
		break
	}
}

func (tokenizer *Tokenizer) hasRemainCharacters() bool {
	return tokenizer.currentPos < len(tokenizer.src)
}

func (tokenizer *Tokenizer) tokenNewline() {
	tokenizer.appendToken("\n", NewlineTP)
	tokenizer.currentLine++
	tokenizer.currentPos++
}

func (tokenizer *Tokenizer) tokenSingleChar() {
	lexeme := string(tokenizer.src[tokenizer.currentPos])
	tokenizer.appendToken(lexeme, classifyLexeme(lexeme))
	tokenizer.currentPos++
}

// tokenText accumulates while the character is alphanumeric or underscore.
func (tokenizer *Tokenizer) tokenText() {
	startPos := tokenizer.currentPos
	for tokenizer.hasRemainCharacters() {
		if util.IsLetterOrUnderscoreOrNumber(tokenizer.src[tokenizer.currentPos]) {
			tokenizer.currentPos++
			continue
		}
		break
	}
	lexeme := tokenizer.clipLexeme(startPos, tokenizer.currentPos)
	tokenizer.appendToken(lexeme, classifyLexeme(lexeme))
}

// tokenNumber accumulates digits; any dot transitions to the float state,
// which accumulates digits only. The lexeme is classified afterwards, so a
// trailing dot falls out as an identifier.
func (tokenizer *Tokenizer) tokenNumber() {
	startPos := tokenizer.currentPos
	for tokenizer.hasRemainCharacters() && util.IsNumber(tokenizer.src[tokenizer.currentPos]) {
		tokenizer.currentPos++
	}
	if tokenizer.hasRemainCharacters() && tokenizer.src[tokenizer.currentPos] == '.' {
		tokenizer.currentPos++
		for tokenizer.hasRemainCharacters() && util.IsNumber(tokenizer.src[tokenizer.currentPos]) {
			tokenizer.currentPos++
		}
	}
	lexeme := tokenizer.clipLexeme(startPos, tokenizer.currentPos)
	tokenizer.appendToken(lexeme, classifyLexeme(lexeme))
}

// tokenQuoted accumulates verbatim through the matching closing delimiter.
// No escape processing beyond retention; an unmatched quote consumes to the
// end of the input.
func (tokenizer *Tokenizer) tokenQuoted(quote byte, tp TokenType) {
	line := tokenizer.currentLine
	startPos := tokenizer.currentPos
	tokenizer.currentPos++
	for tokenizer.hasRemainCharacters() {
		b := tokenizer.src[tokenizer.currentPos]
		tokenizer.currentPos++
		if b == '\n' {
			tokenizer.currentLine++
			continue
		}
		if b == quote {
			break
		}
	}
	// The surrounding quotes are stripped from the lexeme.
	endPos := tokenizer.currentPos
	if endPos > startPos+1 && tokenizer.src[endPos-1] == quote {
		endPos--
	}
	lexeme := tokenizer.clipLexeme(startPos+1, endPos)
	tokenizer.tokens = append(tokenizer.tokens, &Token{
		tp:       tp,
		content:  lexeme,
		fileName: tokenizer.currentFile,
		line:     line,
	})
}

// tokenPunctuation accumulates while the character is in the punctuation set.
// A consumed ']' terminates the token greedily, so ']' always closes within
// one character of where it opened.
func (tokenizer *Tokenizer) tokenPunctuation() {
	startPos := tokenizer.currentPos
	for tokenizer.hasRemainCharacters() {
		b := tokenizer.src[tokenizer.currentPos]
		if !punctuationSet[b] {
			break
		}
		tokenizer.currentPos++
		if b == ']' {
			break
		}
	}
	lexeme := tokenizer.clipLexeme(startPos, tokenizer.currentPos)
	tokenizer.appendToken(lexeme, classifyLexeme(lexeme))
}

func (tokenizer *Tokenizer) clipLexeme(startPos, endPos int) string {
	if endPos-startPos > maxLexemeLen {
		endPos = startPos + maxLexemeLen
	}
	return string(tokenizer.src[startPos:endPos])
}

func (tokenizer *Tokenizer) appendToken(lexeme string, tp TokenType) {
	tokenizer.tokens = append(tokenizer.tokens, &Token{
		tp:       tp,
		content:  lexeme,
		fileName: tokenizer.currentFile,
		line:     tokenizer.currentLine,
	})
}

// classifyLexeme maps a scanned lexeme to its token type: exact multi-char
// operators first, then single-char symbols, then reserved words, then
// numeric forms, and finally identifier.
func classifyLexeme(lexeme string) TokenType {
	if tp, ok := multiCharTokenTPMap[lexeme]; ok {
		return tp
	}
	if tp, ok := simpleSymbolTokenTPMap[lexeme]; ok {
		return tp
	}
	if tp, ok := keyWordTokenTPMap[lexeme]; ok {
		return tp
	}
	if isIntegerLexeme(lexeme) {
		return IntegerTP
	}
	if isRealLexeme(lexeme) {
		return RealTP
	}
	return IdentifierTP
}

func isIntegerLexeme(lexeme string) bool {
	if len(lexeme) == 0 {
		return false
	}
	for i := 0; i < len(lexeme); i++ {
		if !util.IsNumber(lexeme[i]) {
			return false
		}
	}
	return true
}

func isRealLexeme(lexeme string) bool {
	dot := -1
	for i := 0; i < len(lexeme); i++ {
		if lexeme[i] == '.' {
			if dot >= 0 {
				return false
			}
			dot = i
			continue
		}
		if !util.IsNumber(lexeme[i]) {
			return false
		}
	}
	return dot > 0 && dot < len(lexeme)-1
}

func (tokenizer *Tokenizer) Reset() {
	tokenizer.src, tokenizer.currentPos, tokenizer.currentLine, tokenizer.currentFile = nil, 0, 0, ""
	tokenizer.tokens = nil
}
