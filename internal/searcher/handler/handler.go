package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sarnews/newsearch/internal/analytics"
	"github.com/sarnews/newsearch/internal/indexer/index"
	"github.com/sarnews/newsearch/internal/searcher/cache"
	"github.com/sarnews/newsearch/internal/searcher/executor"
	"github.com/sarnews/newsearch/pkg/config"
	apperrors "github.com/sarnews/newsearch/pkg/errors"
	"github.com/sarnews/newsearch/pkg/logger"
	"github.com/sarnews/newsearch/pkg/resilience"
)

// SearchExecutor is satisfied by *executor.Executor.
type SearchExecutor interface {
	Execute(ctx context.Context, query string, limit int) (*executor.SearchResult, error)
	Stemming() bool
	Store() *index.Store
}

type Handler struct {
	executor     SearchExecutor
	cache        *cache.QueryCache
	collector    *analytics.Collector
	aggregator   *analytics.Aggregator
	defaultLimit int
	maxResults   int
	queryTimeout time.Duration
	logger       *slog.Logger
}

type Option func(*Handler)

// WithCache serves repeated queries from c.
func WithCache(c *cache.QueryCache) Option {
	return func(h *Handler) { h.cache = c }
}

// WithCollector publishes one QueryEvent per search request.
func WithCollector(c *analytics.Collector) Option {
	return func(h *Handler) { h.collector = c }
}

// WithAggregator folds every QueryEvent into a.
func WithAggregator(a *analytics.Aggregator) Option {
	return func(h *Handler) { h.aggregator = a }
}

func New(exec SearchExecutor, cfg config.SearchConfig, opts ...Option) *Handler {
	h := &Handler{
		executor:     exec,
		defaultLimit: cfg.DefaultLimit,
		maxResults:   cfg.MaxResults,
		queryTimeout: cfg.QueryTimeout,
		logger:       slog.Default().With("component", "search-handler"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeQueryError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "query parameter 'q' is required"))
		return
	}

	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeQueryError(w, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "limit %q must be a positive integer", limitStr))
			return
		}
		if parsed > h.maxResults {
			parsed = h.maxResults
		}
		limit = parsed
	}

	var result *executor.SearchResult
	cacheHit := false
	err := resilience.WithTimeout(ctx, h.queryTimeout, "search", func(ctx context.Context) error {
		var (
			res *executor.SearchResult
			hit bool
			err error
		)
		if h.cache != nil {
			res, hit, err = h.cache.GetOrCompute(ctx, query, limit, func() (*executor.SearchResult, error) {
				return h.executor.Execute(ctx, query, limit)
			})
		} else {
			res, err = h.executor.Execute(ctx, query, limit)
		}
		result, cacheHit = res, hit
		return err
	})

	event := analytics.QueryEvent{
		Query:     query,
		Stemming:  h.executor.Stemming(),
		LatencyMs: time.Since(start).Milliseconds(),
		Timestamp: time.Now().UTC(),
		RequestID: logger.RequestID(ctx),
	}

	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		event.Error = err.Error()
		h.track(event)
		if status == http.StatusInternalServerError {
			log.Error("search execution failed", "query", query, "error", err)
			h.writeError(w, status, "search failed")
			return
		}
		if errors.Is(err, context.Canceled) {
			log.Info("search abandoned by client", "query", query)
		} else {
			log.Info("search rejected", "query", query, "status", status, "error", err)
		}
		h.writeQueryError(w, err)
		return
	}

	event.Parsed = result.Parsed
	event.TotalHits = result.TotalHits
	event.Returned = len(result.Results)
	event.CacheHit = cacheHit
	h.track(event)

	log.Info("search completed",
		"query", query,
		"total_hits", result.TotalHits,
		"returned", len(result.Results),
		"cache_hit", cacheHit,
		"latency_ms", event.LatencyMs,
	)
	h.writeJSON(w, http.StatusOK, result)
}

// Stats reports the shape of the loaded index.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.executor.Store().Stats())
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) track(event analytics.QueryEvent) {
	event.Classify()
	if h.aggregator != nil {
		h.aggregator.Record(event)
	}
	if h.collector != nil {
		h.collector.Track(event)
	}
}

type queryError struct {
	Error string `json:"error"`
	Token *int   `json:"token,omitempty"`
}

// writeQueryError answers with the status HTTPStatusCode assigns to err and,
// for syntax errors, the index of the offending token.
func (h *Handler) writeQueryError(w http.ResponseWriter, err error) {
	body := queryError{Error: err.Error()}
	var qe *apperrors.QuerySyntaxError
	if errors.As(err, &qe) && qe.Token >= 0 {
		body.Token = &qe.Token
	}
	h.writeJSON(w, apperrors.HTTPStatusCode(err), body)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
