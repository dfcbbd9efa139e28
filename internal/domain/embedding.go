package domain

import (
	"context"
	"fmt"
)

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder vectorizes multiple texts in a single API call.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// HealthChecker verifies remote provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult carries multiple embedding vectors and aggregate token usage.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// ChunkedBatchEmbed splits texts into contiguous chunks of at most batchSize
// elements, issues one remote call per chunk, and concatenates the vectors in
// input order. A chunk failure aborts the run and is reported with its chunk
// index via EmbeddingChunkError, so a caller never receives a partial result
// it could mistake for a complete one.
func ChunkedBatchEmbed(
	ctx context.Context, e BatchEmbedder, texts []string, batchSize int,
) (BatchEmbeddingResult, error) {
	if batchSize <= 0 {
		return BatchEmbeddingResult{}, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	var out BatchEmbeddingResult
	out.Embeddings = make([][]float32, 0, len(texts))

	for chunk := 0; chunk*batchSize < len(texts); chunk++ {
		lo := chunk * batchSize
		hi := lo + batchSize
		if hi > len(texts) {
			hi = len(texts)
		}

		res, err := e.BatchEmbed(ctx, texts[lo:hi])
		if err != nil {
			return BatchEmbeddingResult{}, &EmbeddingChunkError{Chunk: chunk, Err: err}
		}
		if len(res.Embeddings) != hi-lo {
			return BatchEmbeddingResult{}, &EmbeddingChunkError{
				Chunk: chunk,
				Err: fmt.Errorf("got %d vectors for %d inputs: %w",
					len(res.Embeddings), hi-lo, ErrEmbeddingProvider),
			}
		}

		out.Embeddings = append(out.Embeddings, res.Embeddings...)
		out.PromptTokens += res.PromptTokens
		out.TotalTokens += res.TotalTokens
	}

	return out, nil
}
