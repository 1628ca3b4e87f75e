package executor

import (
	"context"
	"fmt"
	"slices"

	"github.com/sarnews/newsearch/internal/indexer/index"
	"github.com/sarnews/newsearch/internal/searcher/parser"
	"github.com/sarnews/newsearch/internal/searcher/posting"
	apperrors "github.com/sarnews/newsearch/pkg/errors"
)

// resolvePhrase returns the items where the phrase terms occur at
// consecutive positions of the field. On an untokenized field the quoted
// text is looked up as a single value.
func (e *Executor) resolvePhrase(ctx context.Context, p *parser.Phrase) (index.PostingList, error) {
	f := e.store.Field(p.Field)
	if f == nil {
		return index.PostingList{}, nil
	}
	if !f.Tokenized() {
		return clone(f.Postings(p.Text)), nil
	}
	if !f.HasPositions() {
		return nil, fmt.Errorf("phrase %s needs a positional index: %w", p, apperrors.ErrFeatureDisabled)
	}

	positions := make([]index.Positions, len(p.Terms))
	for i, term := range p.Terms {
		pos, ok := f.Positions(term)
		if !ok {
			return index.PostingList{}, nil
		}
		positions[i] = pos
	}

	candidates := clone(f.Postings(p.Terms[0]))
	for _, term := range p.Terms[1:] {
		candidates = posting.And(candidates, f.Postings(term))
	}

	out := make(index.PostingList, 0, len(candidates))
	for i, id := range candidates {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, deadline(err)
			}
		}
		if consecutiveIn(positions, id) {
			out = append(out, id)
		}
	}
	return out, nil
}

// consecutiveIn reports whether some offset s of the first term in item id
// has term k at offset s+k for every k.
func consecutiveIn(positions []index.Positions, id int) bool {
	for _, start := range positions[0][id] {
		found := true
		for k := 1; k < len(positions); k++ {
			if _, ok := slices.BinarySearch(positions[k][id], start+k); !ok {
				found = false
				break
			}
		}
		if found {
			return true
		}
	}
	return false
}
