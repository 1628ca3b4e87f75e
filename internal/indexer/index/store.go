// Package index holds the term indices of a news collection: a per-field
// inverted index, optional positional postings, and the stem and permuterm
// indices derived from each field's vocabulary.
package index

import (
	"time"

	"github.com/sarnews/newsearch/internal/indexer/permuterm"
	"github.com/sarnews/newsearch/internal/indexer/stem"
)

// Store is the frozen product of a Builder. It is never mutated, so any
// number of goroutines may query it.
type Store struct {
	opts     Options
	docs     []Document
	news     []NewsItem
	fields   map[string]*FieldIndex
	order    []string
	universe PostingList
	tokens   int64
	builtAt  time.Time
}

// Field returns the index of the named field, or nil when that field was
// not indexed.
func (s *Store) Field(name string) *FieldIndex {
	return s.fields[name]
}

// Fields returns the indexed field names in declaration order.
func (s *Store) Fields() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Document returns the source document with the given id.
func (s *Store) Document(id int) (Document, bool) {
	if id < 0 || id >= len(s.docs) {
		return Document{}, false
	}
	return s.docs[id], true
}

// News returns the metadata of one news item.
func (s *Store) News(id int) (NewsItem, bool) {
	if id < 0 || id >= len(s.news) {
		return NewsItem{}, false
	}
	return s.news[id], true
}

// NumDocuments is the number of indexed collection files.
func (s *Store) NumDocuments() int { return len(s.docs) }

// NumNews is the number of indexed news items.
func (s *Store) NumNews() int { return len(s.news) }

// Universe returns every NewsItem id. Callers must not modify it.
func (s *Store) Universe() PostingList { return s.universe }

// Options returns the options the store was built with.
func (s *Store) Options() Options { return s.opts }

// Stemmer returns the stemmer used to build the stem indices, or nil.
func (s *Store) Stemmer() stem.Stemmer { return s.opts.Stemmer }

// BuiltAt is when Freeze produced the store.
func (s *Store) BuiltAt() time.Time { return s.builtAt }

// FieldStats summarises one field's index sizes.
type FieldStats struct {
	Field      string `json:"field"`
	Terms      int    `json:"terms"`
	Stems      int    `json:"stems,omitempty"`
	Permuterms int    `json:"permuterms,omitempty"`
}

// Stats summarises the whole store.
type Stats struct {
	Documents  int          `json:"documents"`
	News       int          `json:"news"`
	Tokens     int64        `json:"tokens"`
	MultiField bool         `json:"multifield"`
	Positional bool         `json:"positional"`
	Stemming   bool         `json:"stemming"`
	Permuterm  bool         `json:"permuterm"`
	Fields     []FieldStats `json:"fields"`
	BuiltAt    time.Time    `json:"built_at"`
}

// Stats summarises the store for the stats endpoint and the CLI.
func (s *Store) Stats() Stats {
	st := Stats{
		Documents:  len(s.docs),
		News:       len(s.news),
		Tokens:     s.tokens,
		MultiField: s.opts.MultiField,
		Positional: s.opts.Positional,
		Stemming:   s.opts.Stemming,
		Permuterm:  s.opts.Permuterm,
		BuiltAt:    s.builtAt,
	}
	for _, name := range s.order {
		f := s.fields[name]
		fs := FieldStats{Field: name, Terms: len(f.vocab), Stems: len(f.stems)}
		if f.permuterm != nil {
			fs.Permuterms = f.permuterm.Len()
		}
		st.Fields = append(st.Fields, fs)
	}
	return st
}

// FieldIndex is the set of indices built over one article field.
type FieldIndex struct {
	name      string
	tokenized bool
	postings  map[string]PostingList
	positions map[string]Positions
	stems     map[string][]string
	permuterm *permuterm.Index
	vocab     []string
}

func (f *FieldIndex) Name() string    { return f.name }
func (f *FieldIndex) Tokenized() bool { return f.tokenized }

// Postings returns the posting list of term, empty when the term is absent.
// The returned slice is shared and must not be modified.
func (f *FieldIndex) Postings(term string) PostingList {
	return f.postings[term]
}

// HasPositions reports whether positional postings were recorded.
func (f *FieldIndex) HasPositions() bool { return f.positions != nil }

// Positions returns the per-item offsets of term.
func (f *FieldIndex) Positions(term string) (Positions, bool) {
	p, ok := f.positions[term]
	return p, ok
}

// HasStems reports whether a stem index was built for this field.
func (f *FieldIndex) HasStems() bool { return f.stems != nil }

// StemTerms returns the vocabulary terms sharing the given stem.
func (f *FieldIndex) StemTerms(stem string) []string {
	return f.stems[stem]
}

// Permuterm returns the field's permuterm index, or nil.
func (f *FieldIndex) Permuterm() *permuterm.Index { return f.permuterm }

// Vocabulary returns the field's terms in lexicographic order. The slice is
// shared and must not be modified.
func (f *FieldIndex) Vocabulary() []string { return f.vocab }
