package chat

import (
	"context"

	"github.com/mostachar-ma/mostachar/internal/domain"
)

// Embedder vectorizes the user query.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Retriever ranks the corpus against a query vector.
type Retriever interface {
	Search(ctx context.Context, queryVec []float32, k int) []domain.RankedResult
}

// ChatModel generates the grounded answer.
type ChatModel interface {
	Complete(ctx context.Context, messages []domain.Message) (string, error)
	Stream(ctx context.Context, messages []domain.Message) (domain.ChatStream, error)
}
