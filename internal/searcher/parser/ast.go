package parser

import (
	"strings"

	"github.com/sarnews/newsearch/internal/indexer/permuterm"
)

// Node is a parsed query expression. String renders a canonical, fully
// parenthesised form: two queries with the same String evaluate to the same
// result on the same index.
type Node interface {
	String() string
	node()
}

// Term is a single word looked up in Field.
type Term struct {
	Field string
	Text  string
}

// Phrase matches items where Terms occur at consecutive positions. Text is
// the quoted text with whitespace collapsed; untokenized fields match it
// whole.
type Phrase struct {
	Field string
	Terms []string
	Text  string
}

// Wildcard expands Pattern against the field vocabulary.
type Wildcard struct {
	Field   string
	Pattern permuterm.Pattern
}

// Not complements its operand against every indexed item.
type Not struct {
	Operand Node
}

type And struct {
	Left, Right Node
}

type Or struct {
	Left, Right Node
}

func (*Term) node()     {}
func (*Phrase) node()   {}
func (*Wildcard) node() {}
func (*Not) node()      {}
func (*And) node()      {}
func (*Or) node()       {}

func (t *Term) String() string { return t.Field + ":" + t.Text }

func (p *Phrase) String() string {
	return p.Field + `:"` + strings.Join(p.Terms, " ") + `"`
}

func (w *Wildcard) String() string { return w.Field + ":" + w.Pattern.Raw }

func (n *Not) String() string { return "not (" + n.Operand.String() + ")" }

func (a *And) String() string {
	return "(" + a.Left.String() + " and " + a.Right.String() + ")"
}

func (o *Or) String() string {
	return "(" + o.Left.String() + " or " + o.Right.String() + ")"
}

// Leaves returns the term expressions of n from left to right.
func Leaves(n Node) []Node {
	var out []Node
	var walk func(Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case *Not:
			walk(v.Operand)
		case *And:
			walk(v.Left)
			walk(v.Right)
		case *Or:
			walk(v.Left)
			walk(v.Right)
		default:
			out = append(out, n)
		}
	}
	walk(n)
	return out
}
