// Package tokenizer provides text tokenisation for the news index.
// It lower-cases input and splits on every rune that is not a letter, a
// digit or an underscore. Stop-words are kept and no stemming is applied:
// stemming is a separate index built over the vocabulary.
package tokenizer

import (
	"strings"
	"unicode"
)

// Token represents a single normalised term and its offset in the token
// sequence of the original text.
type Token struct {
	Term     string
	Position int
}

// Tokenize breaks text into lowercased Tokens with consecutive zero-based
// positions.
func Tokenize(text string) []Token {
	words := Terms(text)
	tokens := make([]Token, len(words))
	for i, word := range words {
		tokens[i] = Token{Term: word, Position: i}
	}
	return tokens
}

// Terms returns only the term strings of Tokenize(text).
func Terms(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), isSeparator)
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
}
