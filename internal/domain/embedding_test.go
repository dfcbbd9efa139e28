package domain

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockBatchEmbedder struct {
	calls   [][]string
	failAt  int // chunk index to fail at, -1 = never
	short   bool
	nextDim int
}

func newMockBatchEmbedder() *mockBatchEmbedder {
	return &mockBatchEmbedder{failAt: -1, nextDim: 3}
}

func (m *mockBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (BatchEmbeddingResult, error) {
	chunk := len(m.calls)
	m.calls = append(m.calls, texts)

	if m.failAt == chunk {
		return BatchEmbeddingResult{}, errors.New("provider down")
	}

	n := len(texts)
	if m.short {
		n--
	}
	embeddings := make([][]float32, n)
	for i := range embeddings {
		embeddings[i] = make([]float32, m.nextDim)
		embeddings[i][0] = float32(chunk) // mark which chunk produced it
	}
	return BatchEmbeddingResult{Embeddings: embeddings, TotalTokens: 10 * len(texts)}, nil
}

// --- Tests ---

func TestChunkedBatchEmbed_SplitsAndConcatenates(t *testing.T) {
	m := newMockBatchEmbedder()
	texts := []string{"a", "b", "c", "d", "e"}

	res, err := ChunkedBatchEmbed(context.Background(), m, texts, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(m.calls) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(m.calls))
	}
	if len(m.calls[0]) != 2 || len(m.calls[1]) != 2 || len(m.calls[2]) != 1 {
		t.Errorf("unexpected chunk sizes: %d, %d, %d", len(m.calls[0]), len(m.calls[1]), len(m.calls[2]))
	}
	if len(res.Embeddings) != 5 {
		t.Fatalf("expected 5 vectors, got %d", len(res.Embeddings))
	}
	// Output order matches input order: vectors 0-1 from chunk 0, 2-3 from
	// chunk 1, 4 from chunk 2.
	wantChunks := []float32{0, 0, 1, 1, 2}
	for i, want := range wantChunks {
		if res.Embeddings[i][0] != want {
			t.Errorf("vector %d: expected chunk marker %v, got %v", i, want, res.Embeddings[i][0])
		}
	}
	if res.TotalTokens != 50 {
		t.Errorf("expected 50 total tokens, got %d", res.TotalTokens)
	}
}

func TestChunkedBatchEmbed_FailureCarriesChunkIndex(t *testing.T) {
	m := newMockBatchEmbedder()
	m.failAt = 1

	_, err := ChunkedBatchEmbed(context.Background(), m, []string{"a", "b", "c", "d"}, 2)
	if err == nil {
		t.Fatal("expected error")
	}

	var chunkErr *EmbeddingChunkError
	if !errors.As(err, &chunkErr) {
		t.Fatalf("expected EmbeddingChunkError, got %T", err)
	}
	if chunkErr.Chunk != 1 {
		t.Errorf("expected chunk 1, got %d", chunkErr.Chunk)
	}
	// Failure aborts: chunk 2 was never attempted.
	if len(m.calls) != 2 {
		t.Errorf("expected 2 calls before abort, got %d", len(m.calls))
	}
}

func TestChunkedBatchEmbed_ShortResponseIsError(t *testing.T) {
	m := newMockBatchEmbedder()
	m.short = true

	_, err := ChunkedBatchEmbed(context.Background(), m, []string{"a", "b"}, 10)
	if err == nil {
		t.Fatal("expected error for vector count mismatch")
	}
	if !errors.Is(err, ErrEmbeddingProvider) {
		t.Errorf("expected ErrEmbeddingProvider, got %v", err)
	}
}

func TestChunkedBatchEmbed_InvalidBatchSize(t *testing.T) {
	m := newMockBatchEmbedder()
	if _, err := ChunkedBatchEmbed(context.Background(), m, []string{"a"}, 0); err == nil {
		t.Fatal("expected error for batch size 0")
	}
}

func TestChunkedBatchEmbed_EmptyInput(t *testing.T) {
	m := newMockBatchEmbedder()
	res, err := ChunkedBatchEmbed(context.Background(), m, nil, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 0 {
		t.Errorf("expected no vectors, got %d", len(res.Embeddings))
	}
	if len(m.calls) != 0 {
		t.Errorf("expected no remote calls, got %d", len(m.calls))
	}
}
