// Command mostachar runs the Moroccan legal chatbot API server.
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

	"github.com/mostachar-ma/mostachar/internal/config"
	dbRedis "github.com/mostachar-ma/mostachar/internal/db/redis"
	logpkg "github.com/mostachar-ma/mostachar/internal/logger"
	"github.com/mostachar-ma/mostachar/internal/metrics"
	"github.com/mostachar-ma/mostachar/internal/repository/corpus"
	chiTransport "github.com/mostachar-ma/mostachar/internal/transport/chi"
	openaiTransport "github.com/mostachar-ma/mostachar/internal/transport/openai"
	chatuc "github.com/mostachar-ma/mostachar/internal/usecase/chat"
	healthuc "github.com/mostachar-ma/mostachar/internal/usecase/health"
	searchuc "github.com/mostachar-ma/mostachar/internal/usecase/search"
	"github.com/mostachar-ma/mostachar/internal/version"
)

// corpusBackend is what the server needs from a corpus repository.
type corpusBackend interface {
	searchuc.Backend
	healthuc.CorpusCounter
}

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

	logger.Info("Starting mostachar API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("corpus_driver", cfg.Corpus.Driver),
	)

	// Corpus backend based on driver
	var backend corpusBackend
	switch cfg.Corpus.Driver {
	case "redis":
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Corpus.Addrs,
			Password: cfg.Corpus.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create corpus store", zap.Error(err))
		}
		defer store.Close()

		readiness := time.Duration(cfg.Corpus.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(context.Background(), readiness); err != nil {
			logger.Fatal("Corpus store not ready", zap.Error(err))
		}
		backend = corpus.NewRedis(store, cfg.Corpus.KeyPrefix)
	case "file":
		backend = corpus.NewFile(cfg.Corpus.Path)
	default:
		logger.Fatal("Unknown corpus driver", zap.String("driver", cfg.Corpus.Driver))
	}

	// Register provider metrics explicitly (no init())
	metrics.RegisterProviderMetrics()

	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.OpenAI.EmbeddingModel,
		Dimensions: cfg.OpenAI.Dimensions,
	})
	chatModel := openaiTransport.NewChatModel(&openaiTransport.ChatConfig{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.ChatModel,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
	})
	logger.Info("Remote model clients created",
		zap.String("embedding_model", cfg.OpenAI.EmbeddingModel),
		zap.String("chat_model", cfg.OpenAI.ChatModel),
		zap.Int("dimensions", cfg.OpenAI.Dimensions),
	)

	// Use case services
	searchSvc := searchuc.New(backend, logger)
	chatSvc := chatuc.New(embedder, searchSvc, chatModel, cfg.Retrieval.TopK, logger)
	healthSvc := healthuc.New(backend)

	server := chiTransport.NewServer(chatSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())

	r.Post("/api/chat", server.Chat)
	r.Post("/api/chat/sync", server.ChatSync)
	r.Get("/api/health", server.Health)
	r.Get("/api/stats", server.Stats)
	r.Get("/metrics", server.Metrics)

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

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
