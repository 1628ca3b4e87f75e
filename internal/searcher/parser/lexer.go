package parser

import (
	"strings"
	"unicode"

	apperrors "github.com/sarnews/newsearch/pkg/errors"
)

// PhraseSeparator replaces whitespace inside a quoted phrase so the phrase
// survives as a single token.
const PhraseSeparator = '|'

// Lex lowercases query and splits it into tokens. Parentheses outside quotes
// become tokens of their own; the spaces of a quoted phrase are replaced by
// PhraseSeparator.
func Lex(query string) ([]string, error) {
	var (
		toks    []string
		cur     strings.Builder
		inQuote bool
	)
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range strings.ToLower(query) {
		switch {
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
		case inQuote && unicode.IsSpace(r):
			cur.WriteRune(PhraseSeparator)
		case !inQuote && (r == '(' || r == ')'):
			flush()
			toks = append(toks, string(r))
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	if inQuote {
		return nil, apperrors.Syntaxf(query, len(toks), "unterminated quote")
	}
	flush()
	return toks, nil
}
