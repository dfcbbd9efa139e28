// Package search ranks the legal corpus against query embeddings.
//
// The index is an exact linear cosine scan over an in-memory, read-only
// corpus. At a few thousand passages an O(N*D) scan is both correct and
// fast enough; approximate nearest-neighbor structures are deliberately
// out of scope.
package search

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/mostachar-ma/mostachar/internal/domain"
)

// Service is the similarity index over the legal corpus.
type Service struct {
	backend Backend
	logger  *zap.Logger

	loadOnce sync.Once
	corpus   []domain.Passage
}

// New creates a search service. The corpus is loaded lazily on first search.
func New(backend Backend, logger *zap.Logger) *Service {
	return &Service{backend: backend, logger: logger}
}

// load populates the corpus exactly once. A failed load degrades to an
// empty index: search then legitimately finds nothing instead of failing
// every request.
func (s *Service) load(ctx context.Context) []domain.Passage {
	s.loadOnce.Do(func() {
		passages, err := s.backend.LoadAll(ctx)
		if err != nil {
			s.logger.Warn("corpus load failed, serving an empty index", zap.Error(err))
			return
		}
		s.corpus = passages
		s.logger.Info("corpus loaded", zap.Int("passages", len(passages)))
	})
	return s.corpus
}

// Search returns up to k passages ranked by descending cosine similarity to
// the query vector. Ties keep insertion order. Records with an empty or
// mismatched embedding are excluded. k <= 0 or an empty corpus yields an
// empty result, never an error.
func (s *Service) Search(ctx context.Context, queryVec []float32, k int) []domain.RankedResult {
	corpus := s.load(ctx)
	if k <= 0 || len(corpus) == 0 {
		return nil
	}

	results := make([]domain.RankedResult, 0, len(corpus))
	for _, p := range corpus {
		if len(p.Embedding) == 0 || len(p.Embedding) != len(queryVec) {
			continue
		}
		results = append(results, domain.RankedResult{
			ID:        p.ID,
			Domain:    p.Domain,
			Reference: p.Reference,
			Content:   p.Content,
			Score:     roundScore(cosine(queryVec, p.Embedding)),
		})
	}

	// Stable sort keeps insertion order among equal scores, so results stay
	// deterministic across calls.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	return results
}

// Count reports the number of indexed passages, loading the corpus if needed.
func (s *Service) Count(ctx context.Context) int {
	return len(s.load(ctx))
}
