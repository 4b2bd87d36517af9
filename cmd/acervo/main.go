package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/juristech/acervo/internal/chunker"
	"github.com/juristech/acervo/internal/config"
	dbPostgres "github.com/juristech/acervo/internal/db/postgres"
	dbRedis "github.com/juristech/acervo/internal/db/redis"
	"github.com/juristech/acervo/internal/domain"
	logpkg "github.com/juristech/acervo/internal/logger"
	"github.com/juristech/acervo/internal/metrics"
	"github.com/juristech/acervo/internal/repository/chunkstore"
	"github.com/juristech/acervo/internal/repository/docstore"
	"github.com/juristech/acervo/internal/repository/embcache"
	"github.com/juristech/acervo/internal/repository/jobqueue"
	chiTransport "github.com/juristech/acervo/internal/transport/chi"
	openaiTransport "github.com/juristech/acervo/internal/transport/openai"
	healthuc "github.com/juristech/acervo/internal/usecase/health"
	ingestuc "github.com/juristech/acervo/internal/usecase/ingest"
	jobsuc "github.com/juristech/acervo/internal/usecase/jobs"
	searchuc "github.com/juristech/acervo/internal/usecase/search"
	"github.com/juristech/acervo/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting acervo server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
	)

	ctx := context.Background()

	// Postgres: documents, chunks, job queue
	db, err := dbPostgres.New(ctx, cfg.Database.DSN, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer db.Close()

	if err := db.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	if err := db.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure schema", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Redis: optional query-embedding cache
	var cache *dbRedis.Store
	if len(cfg.Cache.Addrs) > 0 {
		cache, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cache.Close()

		if err := cache.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache store not ready", zap.Error(err))
		}
		logger.Info("Connected to embedding cache")
	} else {
		logger.Info("Embedding cache disabled")
	}

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterIngestMetrics()

	// Embedders. Document embeddings always go to the
	// provider; query embeddings are cached when Redis is configured.
	docEmbedder := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		MaxChars:   cfg.Embedding.MaxChars,
		Logger:     logger,
	})

	var queryEmbedder domain.Embedder = docEmbedder
	if cache != nil {
		queryEmbedder = embcache.New(
			docEmbedder, cache,
			time.Duration(cfg.Cache.TTLDays)*24*time.Hour,
			metrics.EmbeddingCacheTotal, logger,
		)
	}
	logger.Info("Embedders created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("query_cache", cache != nil),
	)

	var summarizer domain.Summarizer
	if cfg.Enrichment.Enabled {
		summarizer = openaiTransport.NewSummarizer(&openaiTransport.SummarizerConfig{
			APIKey:  cfg.Embedding.APIKey,
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Enrichment.Model,
			Logger:  logger,
		})
	}

	// Repositories
	docs := docstore.New(db.Pool())
	chunks := chunkstore.New(db.Pool())
	queue := jobqueue.New(db.Pool())

	// Use case services
	jobsSvc := jobsuc.New(queue, docs, chunks, logger)

	resultCache := searchuc.NewResultCache(
		time.Duration(cfg.Search.ResultCacheSec)*time.Second, searchuc.SystemClock{})
	searchSvc := searchuc.New(chunks, queryEmbedder, searchuc.Weights{
		Vector:  cfg.Search.VectorWeight,
		Lexical: cfg.Search.LexicalWeight,
	}, resultCache, logger)

	var cachePinger healthuc.CachePinger
	if cache != nil {
		cachePinger = cache
	}
	healthSvc := healthuc.New(db, cachePinger, docEmbedder)

	// Background ingestion worker
	worker := ingestuc.New(
		queue, docs, chunks,
		chunker.New(chunker.DefaultOptions(), chunker.NewLegalSectionDetector()),
		docEmbedder, summarizer,
		ingestuc.Options{
			PollInterval:  time.Duration(cfg.Ingest.PollIntervalSec) * time.Second,
			ChunkDelay:    time.Duration(cfg.Ingest.ChunkDelayMs) * time.Millisecond,
			ProgressEvery: cfg.Ingest.ProgressEvery,
			EnrichEnabled: cfg.Enrichment.Enabled,
			EnrichTimeout: time.Duration(cfg.Enrichment.TimeoutSec) * time.Second,
			EmbedTimeout:  time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
			PreviewChars:  cfg.Enrichment.PreviewChars,
		},
		logger,
	)

	workerCtx, stopWorker := context.WithCancel(ctx)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(workerCtx)
	}()

	// HTTP server
	server := chiTransport.NewServer(jobsSvc, searchSvc, healthSvc, logger).
		WithSearchDefaults(cfg.Search.DefaultLimit, cfg.Search.DefaultThreshold)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	stopWorker()

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		logger.Warn("Worker did not stop before shutdown deadline")
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain
// text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates
// X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
