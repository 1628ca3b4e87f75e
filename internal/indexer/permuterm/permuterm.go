// Package permuterm implements the permuterm index used for single-wildcard
// term lookup. Every term t contributes all cyclic rotations of t+"$"; a
// pattern prefix*suffix is answered by the rotation keys starting with
// suffix+"$"+prefix.
package permuterm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Sentinel terminates every term before rotation.
const Sentinel = '$'

// Wildcard runes accepted in patterns.
const (
	AnySuffix = '*'
	OneRune   = '?'
)

// ErrInvalidPattern is returned for patterns without exactly one wildcard.
var ErrInvalidPattern = errors.New("invalid wildcard pattern")

// checkEvery bounds how many keys are scanned between context checks.
const checkEvery = 512

// Index maps rotation keys to the terms they were derived from.
type Index struct {
	keys  []string
	terms map[string][]string
}

// Rotations returns the len(term)+1 rotations of term+"$", rotating by rune.
func Rotations(term string) []string {
	s := []rune(term + string(Sentinel))
	out := make([]string, len(s))
	for i := range s {
		out[i] = string(s[i:]) + string(s[:i])
	}
	return out
}

// Build creates the permuterm index over vocabulary. A key maps to a set of
// terms rather than a single term so colliding rotations never overwrite
// each other.
func Build(vocabulary []string) *Index {
	sets := make(map[string]map[string]struct{}, len(vocabulary)*6)
	for _, term := range vocabulary {
		for _, key := range Rotations(term) {
			set, ok := sets[key]
			if !ok {
				set = make(map[string]struct{}, 1)
				sets[key] = set
			}
			set[term] = struct{}{}
		}
	}
	ix := &Index{
		keys:  make([]string, 0, len(sets)),
		terms: make(map[string][]string, len(sets)),
	}
	for key, set := range sets {
		ix.keys = append(ix.keys, key)
		terms := make([]string, 0, len(set))
		for term := range set {
			terms = append(terms, term)
		}
		sort.Strings(terms)
		ix.terms[key] = terms
	}
	sort.Strings(ix.keys)
	return ix
}

// Len returns the number of rotation keys.
func (ix *Index) Len() int {
	return len(ix.keys)
}

// Terms returns the terms registered under an exact rotation key.
func (ix *Index) Terms(key string) []string {
	return ix.terms[key]
}

// Pattern is a parsed single-wildcard pattern.
type Pattern struct {
	Raw      string
	Prefix   string
	Suffix   string
	Wildcard rune
}

// ParsePattern splits raw at its only wildcard.
func ParsePattern(raw string) (Pattern, error) {
	n := strings.Count(raw, string(AnySuffix)) + strings.Count(raw, string(OneRune))
	if n != 1 {
		return Pattern{}, fmt.Errorf("%q has %d wildcards, want exactly 1: %w", raw, n, ErrInvalidPattern)
	}
	if strings.ContainsRune(raw, Sentinel) {
		return Pattern{}, fmt.Errorf("%q contains the reserved %q: %w", raw, Sentinel, ErrInvalidPattern)
	}
	i := strings.IndexAny(raw, string(AnySuffix)+string(OneRune))
	wc, size := utf8.DecodeRuneInString(raw[i:])
	return Pattern{
		Raw:      raw,
		Prefix:   raw[:i],
		Suffix:   raw[i+size:],
		Wildcard: wc,
	}, nil
}

// IsPattern reports whether s contains a wildcard rune.
func IsPattern(s string) bool {
	return strings.ContainsAny(s, string(AnySuffix)+string(OneRune))
}

// Matches reports whether term satisfies the pattern.
func (p Pattern) Matches(term string) bool {
	if !strings.HasPrefix(term, p.Prefix) || !strings.HasSuffix(term, p.Suffix) {
		return false
	}
	if len(term) < len(p.Prefix)+len(p.Suffix) {
		return false
	}
	if p.Wildcard == OneRune {
		return utf8.RuneCountInString(term) == utf8.RuneCountInString(p.Raw)
	}
	return true
}

// Lookup returns the sorted distinct terms matching p. The scan over
// matching keys honours ctx cancellation.
func (ix *Index) Lookup(ctx context.Context, p Pattern) ([]string, error) {
	probe := p.Suffix + string(Sentinel) + p.Prefix
	start := sort.SearchStrings(ix.keys, probe)
	seen := make(map[string]struct{})
	for i := start; i < len(ix.keys) && strings.HasPrefix(ix.keys[i], probe); i++ {
		if (i-start)%checkEvery == checkEvery-1 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for _, term := range ix.terms[ix.keys[i]] {
			if p.Wildcard == OneRune && utf8.RuneCountInString(term) != utf8.RuneCountInString(p.Raw) {
				continue
			}
			seen[term] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for term := range seen {
		out = append(out, term)
	}
	sort.Strings(out)
	return out, nil
}
