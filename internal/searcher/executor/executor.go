package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sarnews/newsearch/internal/indexer/index"
	"github.com/sarnews/newsearch/internal/searcher/parser"
	"github.com/sarnews/newsearch/internal/searcher/posting"
	"github.com/sarnews/newsearch/internal/searcher/ranker"
	apperrors "github.com/sarnews/newsearch/pkg/errors"
	"github.com/sarnews/newsearch/pkg/logger"
	"github.com/sarnews/newsearch/pkg/metrics"
)

// checkEvery bounds how many candidates a resolution loop visits between
// context checks.
const checkEvery = 256

// Hit is one matching news item with the location of its source document.
type Hit struct {
	index.NewsItem
	Path  string  `json:"path"`
	Score float64 `json:"score,omitempty"`
}

type SearchResult struct {
	Query     string `json:"query"`
	Parsed    string `json:"parsed"`
	TotalHits int    `json:"total_hits"`
	Results   []Hit  `json:"results"`
}

// Executor evaluates parsed queries against a frozen index.Store. It holds no
// mutable state and is safe for concurrent use.
type Executor struct {
	store    *index.Store
	stemming bool
	ranking  bool
	scorer   ranker.Scorer
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

type Option func(*Executor)

// WithStemming resolves plain terms through the stem index when the store
// has one.
func WithStemming(on bool) Option {
	return func(e *Executor) { e.stemming = on }
}

// WithScorer enables ranking with s.
func WithScorer(s ranker.Scorer) Option {
	return func(e *Executor) {
		e.scorer = s
		e.ranking = s != nil
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

func New(store *index.Store, opts ...Option) *Executor {
	e := &Executor{
		store:  store,
		logger: slog.Default().With("component", "query-executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Executor) Store() *index.Store { return e.store }

// Stemming reports whether plain terms are stem-expanded.
func (e *Executor) Stemming() bool { return e.stemming }

// Execute parses and evaluates query, returning at most limit hits (all of
// them when limit <= 0). TotalHits always counts every match.
func (e *Executor) Execute(ctx context.Context, query string, limit int) (*SearchResult, error) {
	start := time.Now()
	log := e.logger
	if id := logger.RequestID(ctx); id != "" {
		log = log.With("request_id", id)
	}

	node, err := parser.Parse(query)
	if err != nil {
		e.observe("syntax_error", start, -1)
		return nil, err
	}
	ids, err := e.Evaluate(ctx, node)
	if err != nil {
		e.observe("error", start, -1)
		log.Warn("query failed", "query", query, "error", err)
		return nil, err
	}

	result := &SearchResult{
		Query:     query,
		Parsed:    node.String(),
		TotalHits: len(ids),
		Results:   e.hits(ids, node, limit),
	}
	outcome := "hit"
	if len(ids) == 0 {
		outcome = "zero_result"
	}
	e.observe(outcome, start, len(ids))
	log.Info("query executed",
		"query", query,
		"parsed", result.Parsed,
		"hits", result.TotalHits,
		"duration", time.Since(start),
	)
	return result, nil
}

// Count evaluates query and returns the number of matching items.
func (e *Executor) Count(ctx context.Context, query string) (int, error) {
	node, err := parser.Parse(query)
	if err != nil {
		return 0, err
	}
	ids, err := e.Evaluate(ctx, node)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (e *Executor) hits(ids index.PostingList, node parser.Node, limit int) []Hit {
	if e.ranking {
		items := make([]index.NewsItem, 0, len(ids))
		for _, id := range ids {
			it, _ := e.store.News(id)
			items = append(items, it)
		}
		scored := ranker.Rank(items, node, e.scorer, limit)
		out := make([]Hit, 0, len(scored))
		for _, s := range scored {
			h := e.hit(s.Item)
			h.Score = s.Score
			out = append(out, h)
		}
		return out
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]Hit, 0, len(ids))
	for _, id := range ids {
		it, _ := e.store.News(id)
		out = append(out, e.hit(it))
	}
	return out
}

func (e *Executor) hit(it index.NewsItem) Hit {
	doc, _ := e.store.Document(it.DocID)
	return Hit{NewsItem: it, Path: doc.Path}
}

func (e *Executor) observe(outcome string, start time.Time, hits int) {
	if e.metrics == nil {
		return
	}
	e.metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	e.metrics.SearchLatency.WithLabelValues("none").Observe(time.Since(start).Seconds())
	if hits >= 0 {
		e.metrics.SearchResultsCount.Observe(float64(hits))
	}
}

// Evaluate walks node and returns the matching NewsItem ids in ascending
// order. The result is owned by the caller.
func (e *Executor) Evaluate(ctx context.Context, node parser.Node) (index.PostingList, error) {
	if err := ctx.Err(); err != nil {
		return nil, deadline(err)
	}
	switch n := node.(type) {
	case *parser.Term:
		return e.resolveTerm(n), nil
	case *parser.Phrase:
		return e.resolvePhrase(ctx, n)
	case *parser.Wildcard:
		return e.resolveWildcard(ctx, n)
	case *parser.Not:
		p, err := e.Evaluate(ctx, n.Operand)
		if err != nil {
			return nil, err
		}
		return posting.Minus(e.store.Universe(), p), nil
	case *parser.And:
		l, r, err := e.operands(ctx, n.Left, n.Right)
		if err != nil {
			return nil, err
		}
		return posting.And(l, r), nil
	case *parser.Or:
		l, r, err := e.operands(ctx, n.Left, n.Right)
		if err != nil {
			return nil, err
		}
		return posting.Or(l, r), nil
	default:
		return nil, fmt.Errorf("evaluating %T: %w", node, apperrors.ErrInternal)
	}
}

func (e *Executor) operands(ctx context.Context, left, right parser.Node) (index.PostingList, index.PostingList, error) {
	l, err := e.Evaluate(ctx, left)
	if err != nil {
		return nil, nil, err
	}
	r, err := e.Evaluate(ctx, right)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

// resolveTerm looks a word up directly, or through the stem index when
// stemming is on and the field has one.
func (e *Executor) resolveTerm(t *parser.Term) index.PostingList {
	f := e.store.Field(t.Field)
	if f == nil {
		return index.PostingList{}
	}
	if e.stemming && f.HasStems() && e.store.Stemmer() != nil {
		return e.expandStem(f, t.Text)
	}
	return clone(f.Postings(t.Text))
}

func (e *Executor) expandStem(f *index.FieldIndex, term string) index.PostingList {
	terms := f.StemTerms(e.store.Stemmer().Stem(term))
	lists := make([]index.PostingList, 0, len(terms))
	for _, t := range terms {
		lists = append(lists, f.Postings(t))
	}
	return posting.Union(lists...)
}

func clone(pl index.PostingList) index.PostingList {
	out := make(index.PostingList, len(pl))
	copy(out, pl)
	return out
}

// deadline maps a context error to ErrTimeout, keeping the cause in the chain.
func deadline(err error) error {
	if errors.Is(err, apperrors.ErrTimeout) {
		return err
	}
	return fmt.Errorf("evaluating query: %w: %w", apperrors.ErrTimeout, err)
}
