// Command ingest populates the corpus backend from the legal text data
// directory. One-shot batch job: load, embed, replace.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mostachar-ma/mostachar/internal/config"
	dbRedis "github.com/mostachar-ma/mostachar/internal/db/redis"
	logpkg "github.com/mostachar-ma/mostachar/internal/logger"
	"github.com/mostachar-ma/mostachar/internal/metrics"
	"github.com/mostachar-ma/mostachar/internal/repository/corpus"
	openaiTransport "github.com/mostachar-ma/mostachar/internal/transport/openai"
	"github.com/mostachar-ma/mostachar/internal/usecase/ingest"
)

func main() {
	dataPath := flag.String("data", "", "override the data directory from config")
	flag.Parse()

	// Local runs keep credentials in .env; missing file is fine.
	_ = godotenv.Load()

	env := config.GetEnv()
	cfg := config.MustLoad(env)

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	metrics.RegisterProviderMetrics()

	path := cfg.Ingest.DataPath
	if *dataPath != "" {
		path = *dataPath
	}

	var store ingest.Writer
	switch cfg.Corpus.Driver {
	case "redis":
		redisStore, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Corpus.Addrs,
			Password: cfg.Corpus.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create corpus store", zap.Error(err))
		}
		defer redisStore.Close()

		readiness := time.Duration(cfg.Corpus.ReadinessTimeout) * time.Second
		if err := redisStore.WaitForReady(context.Background(), readiness); err != nil {
			logger.Fatal("Corpus store not ready", zap.Error(err))
		}
		store = corpus.NewRedis(redisStore, cfg.Corpus.KeyPrefix)
	case "file":
		store = corpus.NewFile(cfg.Corpus.Path)
	default:
		logger.Fatal("Unknown corpus driver", zap.String("driver", cfg.Corpus.Driver))
	}

	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.OpenAI.EmbeddingModel,
		Dimensions: cfg.OpenAI.Dimensions,
	})

	svc := ingest.New(embedder, store, cfg.Ingest.BatchSize, logger)

	start := time.Now()
	count, err := svc.Run(context.Background(), path)
	if err != nil {
		logger.Fatal("Ingestion failed", zap.Error(err))
	}

	logger.Info("Ingestion finished",
		zap.Int("passages", count),
		zap.Duration("elapsed", time.Since(start)),
	)
}
