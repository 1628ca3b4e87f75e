package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/sarnews/newsearch/internal/indexer/index"
	"github.com/sarnews/newsearch/internal/searcher/parser"
	"github.com/sarnews/newsearch/internal/searcher/posting"
	apperrors "github.com/sarnews/newsearch/pkg/errors"
)

// resolveWildcard unions the postings of every vocabulary term matching the
// pattern. Matched terms are looked up directly, never stem-expanded.
func (e *Executor) resolveWildcard(ctx context.Context, w *parser.Wildcard) (index.PostingList, error) {
	f := e.store.Field(w.Field)
	if f == nil {
		return index.PostingList{}, nil
	}
	pt := f.Permuterm()
	if pt == nil {
		return nil, fmt.Errorf("wildcard %s needs a permuterm index: %w", w, apperrors.ErrFeatureDisabled)
	}
	terms, err := pt.Lookup(ctx, w.Pattern)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, deadline(err)
		}
		return nil, fmt.Errorf("expanding %s: %w", w, err)
	}
	var ids []int
	for _, t := range terms {
		ids = append(ids, f.Postings(t)...)
	}
	return posting.FromUnsorted(ids), nil
}
