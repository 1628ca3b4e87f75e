package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sarnews/newsearch/internal/analytics"
	"github.com/sarnews/newsearch/internal/corpus"
	"github.com/sarnews/newsearch/internal/indexer"
	"github.com/sarnews/newsearch/internal/searcher/cache"
	"github.com/sarnews/newsearch/internal/searcher/executor"
	"github.com/sarnews/newsearch/internal/searcher/handler"
	"github.com/sarnews/newsearch/pkg/config"
	"github.com/sarnews/newsearch/pkg/health"
	"github.com/sarnews/newsearch/pkg/kafka"
	"github.com/sarnews/newsearch/pkg/logger"
	"github.com/sarnews/newsearch/pkg/metrics"
	"github.com/sarnews/newsearch/pkg/middleware"
	"github.com/sarnews/newsearch/pkg/postgres"
	pkgredis "github.com/sarnews/newsearch/pkg/redis"
	"github.com/sarnews/newsearch/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (defaults plus NS_* environment when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port, "source", cfg.Corpus.Source)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	checker := health.NewChecker()

	var src corpus.Source
	switch cfg.Corpus.Source {
	case config.SourcePostgres:
		var pg *postgres.Client
		err := resilience.Retry(ctx, "postgres-connect", resilience.RetryConfig{MaxAttempts: 5}, func() error {
			var err error
			pg, err = postgres.New(ctx, cfg.Postgres)
			return err
		})
		if err != nil {
			slog.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		checker.Register("postgres", health.PingCheck(pg, true))
		src = corpus.PostgresSource{DB: pg.DB, Table: cfg.Corpus.Table}
	default:
		src = corpus.DirSource{Root: cfg.Corpus.Dir, Workers: cfg.Corpus.Workers}
	}

	store, err := indexer.NewEngine(cfg.Indexer, m).Build(ctx, src)
	if err != nil {
		slog.Error("failed to build index", "error", err)
		os.Exit(1)
	}
	checker.Register("index", health.StaticCheck(health.StatusUp,
		fmt.Sprintf("%d news in %d documents", store.NumNews(), store.NumDocuments())))

	if cfg.Search.UseRanking {
		slog.Warn("ranking requested but no scorer is configured, results stay in id order")
	}
	exec := executor.New(store,
		executor.WithStemming(cfg.Search.UseStemming),
		executor.WithMetrics(m),
	)

	opts := []handler.Option{}

	if cfg.Redis.Enabled {
		var redisClient *pkgredis.Client
		err := resilience.Retry(ctx, "redis-connect", resilience.RetryConfig{}, func() error {
			var err error
			redisClient, err = pkgredis.NewClient(ctx, cfg.Redis)
			return err
		})
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
			checker.Register("redis", health.StaticCheck(health.StatusDegraded, "unavailable at startup"))
		} else {
			defer redisClient.Close()
			variant := "plain"
			if exec.Stemming() {
				variant = "stem"
			}
			opts = append(opts, handler.WithCache(cache.New(redisClient, cfg.Redis.CacheTTL, variant, m)))
			checker.Register("redis", health.PingCheck(redisClient, true))
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka)
		defer producer.Close()
		collector := analytics.NewCollector(producer, cfg.Kafka.EventBuffer, m.EventsDroppedTotal)
		collector.Start(ctx)
		defer collector.Close()
		opts = append(opts, handler.WithCollector(collector))
	}

	aggregator := analytics.NewAggregator()
	opts = append(opts, handler.WithAggregator(aggregator))
	analyticsH := analytics.NewHandler(aggregator)

	h := handler.New(exec, cfg.Search, opts...)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	mws := []func(http.Handler) http.Handler{middleware.RequestID, middleware.Metrics(m)}
	if cfg.Server.RateLimit > 0 {
		limiter := middleware.NewLimiter(cfg.Server.RateLimit, time.Minute)
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					limiter.Prune()
				}
			}
		}()
		mws = append(mws, middleware.RateLimit(limiter))
	}
	mws = append(mws, middleware.Timeout(cfg.Server.WriteTimeout))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      middleware.Chain(mux, mws...),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		slog.Error("failed to listen", "addr", server.Addr, "error", err)
		os.Exit(1)
	}
	slog.Info("search service listening", "addr", server.Addr)
	if err := serve(ctx, server, ln, cfg.Server.ShutdownTimeout); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}

// serve runs server on ln until ctx is done, then shuts it down. It returns
// only after in-flight requests have drained or shutdownTimeout has passed,
// so the caller's deferred closes never race a running handler.
func serve(ctx context.Context, server *http.Server, ln net.Listener, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
