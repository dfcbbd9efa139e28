package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCorpusUnavailable signals a missing or corrupt corpus backend at load time.
	// Recovered locally: the index degrades to empty, search returns no results.
	ErrCorpusUnavailable = errors.New("corpus unavailable")
	// ErrEmbeddingProvider signals a remote embedding call failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrGenerationProvider signals a remote chat completion failure.
	ErrGenerationProvider = errors.New("generation provider error")
	// ErrInvalidRequest signals an empty or malformed client request.
	ErrInvalidRequest = errors.New("invalid request")
)

// EmbeddingChunkError wraps ErrEmbeddingProvider with the index of the failed
// batch chunk, so ingestion can report exactly where a batch run stopped.
type EmbeddingChunkError struct {
	Chunk int
	Err   error
}

func (e *EmbeddingChunkError) Error() string {
	return fmt.Sprintf("embed chunk %d: %s", e.Chunk, e.Err.Error())
}

func (e *EmbeddingChunkError) Unwrap() error { return e.Err }
