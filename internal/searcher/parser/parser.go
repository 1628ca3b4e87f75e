// Package parser turns a boolean query string into an expression tree.
//
// The grammar is a flat sequence of operands joined by "and" or "or",
// folded strictly left to right with no operator precedence:
//
//	query    = operand { ("and" | "or") operand }
//	operand  = "(" query ")" | "not" "(" query ")" | "not" term | term
//	term     = [field ":"] (word | pattern | '"' words '"')
//
// so "a or b and c" means "(a or b) and c".
package parser

import (
	"strings"

	"github.com/sarnews/newsearch/internal/indexer/index"
	"github.com/sarnews/newsearch/internal/indexer/permuterm"
	"github.com/sarnews/newsearch/internal/indexer/tokenizer"
	apperrors "github.com/sarnews/newsearch/pkg/errors"
)

const (
	opAnd = "and"
	opOr  = "or"
	opNot = "not"
)

type parser struct {
	query string
	toks  []string
	pos   int
}

// Parse lexes and parses query. Malformed input yields a
// *errors.QuerySyntaxError carrying the offending token index.
func Parse(query string) (Node, error) {
	toks, err := Lex(query)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, apperrors.Syntaxf(query, -1, "empty query")
	}
	p := &parser{query: query, toks: toks}
	n, err := p.parseSequence()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		return nil, p.errorf(p.pos, "unbalanced %q", p.toks[p.pos])
	}
	return n, nil
}

func (p *parser) errorf(tok int, format string, args ...any) error {
	return apperrors.Syntaxf(p.query, tok, format, args...)
}

func (p *parser) parseSequence() (Node, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	for p.pos < len(p.toks) {
		op := p.toks[p.pos]
		if op == ")" {
			return left, nil
		}
		if op != opAnd && op != opOr {
			return nil, p.errorf(p.pos, "expected and/or before %q", op)
		}
		p.pos++
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		if op == opAnd {
			left = &And{Left: left, Right: right}
		} else {
			left = &Or{Left: left, Right: right}
		}
	}
	return left, nil
}

func (p *parser) parseOperand() (Node, error) {
	if p.pos >= len(p.toks) {
		return nil, p.errorf(p.pos, "missing operand at end of query")
	}
	tok := p.toks[p.pos]
	switch tok {
	case "(":
		return p.parseGroup()
	case ")":
		return nil, p.errorf(p.pos, "unexpected )")
	case opAnd, opOr:
		return nil, p.errorf(p.pos, "operator %q without operand", tok)
	case opNot:
		p.pos++
		if p.pos >= len(p.toks) {
			return nil, p.errorf(p.pos-1, "not without operand")
		}
		switch next := p.toks[p.pos]; next {
		case "(":
			g, err := p.parseGroup()
			if err != nil {
				return nil, err
			}
			return &Not{Operand: g}, nil
		case ")", opAnd, opOr, opNot:
			return nil, p.errorf(p.pos, "not followed by %q", next)
		default:
			p.pos++
			t, err := p.parseTerm(next, p.pos-1)
			if err != nil {
				return nil, err
			}
			return &Not{Operand: t}, nil
		}
	default:
		p.pos++
		return p.parseTerm(tok, p.pos-1)
	}
}

func (p *parser) parseGroup() (Node, error) {
	open := p.pos
	p.pos++
	if p.pos < len(p.toks) && p.toks[p.pos] == ")" {
		return nil, p.errorf(open, "empty group")
	}
	n, err := p.parseSequence()
	if err != nil {
		return nil, err
	}
	if p.pos >= len(p.toks) {
		return nil, p.errorf(open, "unclosed (")
	}
	p.pos++
	return n, nil
}

// parseTerm classifies one token as a phrase, wildcard pattern or word and
// splits off its field qualifier.
func (p *parser) parseTerm(tok string, at int) (Node, error) {
	field, text := index.DefaultField, tok
	if i := strings.IndexByte(tok, ':'); i > 0 && !strings.ContainsRune(tok[:i], '"') {
		field, text = tok[:i], tok[i+1:]
	}
	if text == "" {
		return nil, p.errorf(at, "empty term for field %q", field)
	}
	switch {
	case strings.ContainsRune(text, '"'):
		return p.parsePhrase(field, text, at)
	case permuterm.IsPattern(text):
		pat, err := permuterm.ParsePattern(text)
		if err != nil {
			return nil, p.errorf(at, "%v", err)
		}
		return &Wildcard{Field: field, Pattern: pat}, nil
	default:
		return &Term{Field: field, Text: text}, nil
	}
}

func (p *parser) parsePhrase(field, text string, at int) (Node, error) {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' || strings.Count(text, `"`) != 2 {
		return nil, p.errorf(at, "malformed phrase %s", text)
	}
	inner := strings.ReplaceAll(text[1:len(text)-1], string(PhraseSeparator), " ")
	terms := tokenizer.Terms(inner)
	if len(terms) == 0 {
		return nil, p.errorf(at, "empty phrase")
	}
	return &Phrase{Field: field, Terms: terms, Text: strings.Join(strings.Fields(inner), " ")}, nil
}
