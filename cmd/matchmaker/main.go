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

	"github.com/kailas-cloud/matchmaker/internal/config"
	dbRedis "github.com/kailas-cloud/matchmaker/internal/db/redis"
	"github.com/kailas-cloud/matchmaker/internal/domain"
	"github.com/kailas-cloud/matchmaker/internal/domain/lexicon"
	logpkg "github.com/kailas-cloud/matchmaker/internal/logger"
	"github.com/kailas-cloud/matchmaker/internal/metrics"
	"github.com/kailas-cloud/matchmaker/internal/repository/embcache"
	jobsrepo "github.com/kailas-cloud/matchmaker/internal/repository/jobs"
	vectorsrepo "github.com/kailas-cloud/matchmaker/internal/repository/vectors"
	httpTransport "github.com/kailas-cloud/matchmaker/internal/transport/http"
	openaiTransport "github.com/kailas-cloud/matchmaker/internal/transport/openai"
	healthuc "github.com/kailas-cloud/matchmaker/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/matchmaker/internal/usecase/ingest"
	"github.com/kailas-cloud/matchmaker/internal/usecase/query"
	searchuc "github.com/kailas-cloud/matchmaker/internal/usecase/search"
	"github.com/kailas-cloud/matchmaker/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting matchmaker API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Bool("llm_enabled", cfg.LLM.Enabled),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	// Embedder chain: OpenAI -> Cached
	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
	var embedder domain.Embedder = baseEmbedder
	if !cfg.Embedding.CacheOff {
		embedder = embcache.New(baseEmbedder, store, metrics.EmbeddingCacheTotal, logger)
	}
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("cache", !cfg.Embedding.CacheOff),
	)

	// Query understanding: rule-based always, LLM-assisted when enabled
	lex := lexicon.Default()
	ruleParser := query.NewRuleParser(lex)

	var llmParser query.Strategy
	if cfg.LLM.Enabled {
		chat := openaiTransport.NewChatClient(&openaiTransport.ChatConfig{
			APIKey:              cfg.LLM.APIKey,
			BaseURL:             cfg.LLM.BaseURL,
			Model:               cfg.LLM.Model,
			Temperature:         cfg.LLM.Temperature,
			BreakerMinRequests:  cfg.LLM.BreakerMinRequests,
			BreakerFailureRatio: cfg.LLM.BreakerFailureRatio,
			BreakerOpenTimeout:  time.Duration(cfg.LLM.BreakerOpenSec) * time.Second,
			Logger:              logger,
		})
		llmParser = query.NewLLMParser(chat, lex, time.Duration(cfg.LLM.TimeoutSec)*time.Second)
		logger.Info("LLM query parser enabled", zap.String("model", cfg.LLM.Model))
	}
	querySvc := query.New(ruleParser, llmParser, logger)

	// Repositories
	jobsRepo := jobsrepo.New(store, cfg.Search.MaxStructured)
	vectorsRepo := vectorsrepo.New(store, cfg.Embedding.Dimensions, cfg.Search.MaxSemantic).
		WithHNSW(vectorsrepo.HNSWConfig{
			M:           cfg.Index.HNSWM,
			EFConstruct: cfg.Index.HNSWEFConstruct,
		})

	if err := ingestuc.EnsureIndexes(ctx, store, jobsrepo.IndexDefinition(), vectorsRepo.IndexDefinition()); err != nil {
		logger.Fatal("Failed to create indexes", zap.Error(err))
	}

	// Use case services
	searchSvc := searchuc.New(querySvc, jobsRepo, vectorsRepo, embedder, jobsRepo, searchuc.Config{
		StructWeight:    cfg.Search.StructWeight,
		SemWeight:       cfg.Search.SemWeight,
		MaxSemantic:     cfg.Search.MaxSemantic,
		MaxResults:      cfg.Search.MaxResults,
		RetrieveTimeout: time.Duration(cfg.Search.RetrieveTimeoutSec) * time.Second,
	}, logger)
	ingestSvc := ingestuc.New(jobsRepo, vectorsRepo, embedder, lex, logger)
	// Health probes the base client directly; decorators do not forward HealthCheck.
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(baseEmbedder))

	server := httpTransport.NewServer(searchSvc, ingestSvc, jobsRepo, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
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
						"error": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
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

			// Canonical log line — one line per request
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
