// Package stem builds the stem index: a map from a morphological root to the
// distinct surface terms of the vocabulary that reduce to it.
package stem

import (
	"fmt"
	"sort"

	"github.com/kljensen/snowball"

	apperrors "github.com/sarnews/newsearch/pkg/errors"
)

// Stemmer reduces a term to its stem.
type Stemmer interface {
	Stem(term string) string
}

// StemmerFunc adapts a plain function to the Stemmer interface.
type StemmerFunc func(term string) string

func (f StemmerFunc) Stem(term string) string { return f(term) }

// Snowball stems with the Snowball algorithm for one natural language.
type Snowball struct {
	language string
}

// NewSnowball returns a Snowball stemmer for language (e.g. "spanish",
// "english"). Unsupported languages are rejected up front so query-time
// stemming cannot fail.
func NewSnowball(language string) (*Snowball, error) {
	if _, err := snowball.Stem("prueba", language, true); err != nil {
		return nil, fmt.Errorf("snowball language %q: %w", language, apperrors.ErrInvalidInput)
	}
	return &Snowball{language: language}, nil
}

// Stem returns the stem of term, or term itself if the stemmer fails.
func (s *Snowball) Stem(term string) string {
	stemmed, err := snowball.Stem(term, s.language, true)
	if err != nil || stemmed == "" {
		return term
	}
	return stemmed
}

// Language reports the configured language.
func (s *Snowball) Language() string {
	return s.language
}

// Build stems every vocabulary term and groups the terms by stem. Each
// term list is sorted and duplicate-free.
func Build(vocabulary []string, stemmer Stemmer) map[string][]string {
	groups := make(map[string]map[string]struct{})
	for _, term := range vocabulary {
		root := stemmer.Stem(term)
		set, ok := groups[root]
		if !ok {
			set = make(map[string]struct{})
			groups[root] = set
		}
		set[term] = struct{}{}
	}
	index := make(map[string][]string, len(groups))
	for root, set := range groups {
		terms := make([]string, 0, len(set))
		for term := range set {
			terms = append(terms, term)
		}
		sort.Strings(terms)
		index[root] = terms
	}
	return index
}
