package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mostachar-ma/mostachar/internal/domain"
)

// Writer rewrites the corpus backend.
type Writer interface {
	ReplaceAll(ctx context.Context, passages []domain.Passage) error
	Count(ctx context.Context) (int, error)
}

// Service runs the one-shot ingestion pipeline.
type Service struct {
	embedder  domain.BatchEmbedder
	store     Writer
	batchSize int
	logger    *zap.Logger
}

// New creates an ingestion service.
func New(embedder domain.BatchEmbedder, store Writer, batchSize int, logger *zap.Logger) *Service {
	return &Service{embedder: embedder, store: store, batchSize: batchSize, logger: logger}
}

// Run loads every legal text under dataPath, embeds them in batches, and
// replaces the stored corpus. A failed batch halts ingestion: the corpus
// is only rewritten after every chunk embedded successfully, so there is
// no silent record loss. Returns the number of ingested passages.
func (s *Service) Run(ctx context.Context, dataPath string) (int, error) {
	chunks, err := LoadLegalTexts(dataPath, s.logger)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no legal texts found under %s", dataPath)
	}

	// Embed domain and reference together with the content: queries often
	// name the law or article rather than quote its text.
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = fmt.Sprintf("%s — %s: %s", c.Domain, c.Reference, c.Content)
	}

	s.logger.Info("embedding corpus",
		zap.Int("chunks", len(chunks)),
		zap.Int("batch_size", s.batchSize),
	)
	res, err := domain.ChunkedBatchEmbed(ctx, s.embedder, texts, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("embed corpus: %w", err)
	}

	passages := make([]domain.Passage, len(chunks))
	for i, c := range chunks {
		passages[i] = domain.Passage{
			ID:        i + 1,
			Domain:    c.Domain,
			Reference: c.Reference,
			Content:   c.Content,
			Embedding: res.Embeddings[i],
		}
	}

	if existing, err := s.store.Count(ctx); err == nil && existing > 0 {
		s.logger.Info("clearing existing corpus", zap.Int("records", existing))
	}
	if err := s.store.ReplaceAll(ctx, passages); err != nil {
		return 0, fmt.Errorf("store corpus: %w", err)
	}

	s.logger.Info("ingestion complete",
		zap.Int("passages", len(passages)),
		zap.Int("embedding_tokens", res.TotalTokens),
	)
	return len(passages), nil
}
