// Package indexer turns a corpus.Source into a frozen index.Store.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sarnews/newsearch/internal/corpus"
	"github.com/sarnews/newsearch/internal/indexer/index"
	"github.com/sarnews/newsearch/internal/indexer/stem"
	"github.com/sarnews/newsearch/pkg/config"
	apperrors "github.com/sarnews/newsearch/pkg/errors"
	"github.com/sarnews/newsearch/pkg/metrics"
	"github.com/sarnews/newsearch/pkg/tracing"
)

type Engine struct {
	cfg     config.IndexerConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewEngine returns an Engine building the structures enabled in cfg. m may
// be nil.
func NewEngine(cfg config.IndexerConfig, m *metrics.Metrics) *Engine {
	return &Engine{
		cfg:     cfg,
		metrics: m,
		logger:  slog.Default().With("component", "indexer"),
	}
}

// Options translates the configuration into builder options, creating the
// stemmer when stemming is enabled.
func (e *Engine) Options() (index.Options, error) {
	opts := index.Options{
		MultiField: e.cfg.MultiField,
		Positional: e.cfg.Positional,
		Stemming:   e.cfg.Stemming,
		Permuterm:  e.cfg.Permuterm,
	}
	if opts.Stemming {
		s, err := stem.NewSnowball(e.cfg.StemLanguage)
		if err != nil {
			return index.Options{}, fmt.Errorf("creating stemmer: %w", err)
		}
		opts.Stemmer = s
	}
	return opts, nil
}

// Build loads every batch from src, indexes it in source order and freezes
// the result.
func (e *Engine) Build(ctx context.Context, src corpus.Source) (*index.Store, error) {
	opts, err := e.Options()
	if err != nil {
		return nil, err
	}
	builder, err := index.NewBuilder(opts)
	if err != nil {
		return nil, err
	}

	ctx, root := tracing.StartSpan(ctx, "index.build", tracing.NewTraceID())
	defer func() {
		root.End()
		root.Log(e.logger)
	}()

	_, span := tracing.StartChildSpan(ctx, "load")
	batches, err := src.Batches(ctx)
	span.SetAttr("batches", len(batches))
	e.endPhase(span, "load")
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}

	_, span = tracing.StartChildSpan(ctx, "index")
	for _, b := range batches {
		if err := ctx.Err(); err != nil {
			e.endPhase(span, "index")
			return nil, fmt.Errorf("indexing %s: %w: %w", b.Location, apperrors.ErrTimeout, err)
		}
		if _, err := builder.AddDocument(b.Location, b.Articles); err != nil {
			e.endPhase(span, "index")
			return nil, fmt.Errorf("indexing %s: %w", b.Location, err)
		}
		if e.metrics != nil {
			e.metrics.DocsIndexedTotal.Inc()
			e.metrics.NewsIndexedTotal.Add(float64(len(b.Articles)))
		}
		e.logger.Debug("document indexed", "path", b.Location, "news", len(b.Articles))
	}
	span.SetAttr("news", builder.NumNews())
	e.endPhase(span, "index")

	_, span = tracing.StartChildSpan(ctx, "freeze")
	store, err := builder.Freeze()
	e.endPhase(span, "freeze")
	if err != nil {
		return nil, fmt.Errorf("freezing index: %w", err)
	}

	st := store.Stats()
	for _, fs := range st.Fields {
		if e.metrics != nil {
			e.metrics.VocabularySize.WithLabelValues(fs.Field).Set(float64(fs.Terms))
			e.metrics.PermutermKeys.WithLabelValues(fs.Field).Set(float64(fs.Permuterms))
		}
	}
	root.SetAttr("documents", st.Documents)
	root.SetAttr("news", st.News)
	e.logger.Info("index built",
		"documents", st.Documents,
		"news", st.News,
		"tokens", st.Tokens,
		"multifield", st.MultiField,
		"positional", st.Positional,
		"stemming", st.Stemming,
		"permuterm", st.Permuterm,
	)
	return store, nil
}

func (e *Engine) endPhase(span *tracing.Span, phase string) {
	span.End()
	if e.metrics != nil {
		e.metrics.IndexBuildDuration.WithLabelValues(phase).Observe(span.Duration.Seconds())
	}
}

// BuildFromDir is a convenience wrapper indexing every collection file under
// root.
func (e *Engine) BuildFromDir(ctx context.Context, root string, workers int) (*index.Store, error) {
	start := time.Now()
	store, err := e.Build(ctx, corpus.DirSource{Root: root, Workers: workers})
	if err != nil {
		return nil, err
	}
	e.logger.Info("directory indexed", "root", root, "duration", time.Since(start))
	return store, nil
}
