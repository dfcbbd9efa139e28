package search

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/mostachar-ma/mostachar/internal/domain"
)

// --- Mocks ---

type mockBackend struct {
	passages []domain.Passage
	err      error
	loads    atomic.Int32
}

func (m *mockBackend) LoadAll(_ context.Context) ([]domain.Passage, error) {
	m.loads.Add(1)
	return m.passages, m.err
}

func testCorpus() []domain.Passage {
	return []domain.Passage{
		{ID: 1, Domain: "Code de la famille", Reference: "Article 4", Content: "Le mariage est...", Embedding: []float32{1, 0, 0}},
		{ID: 2, Domain: "Code pénal", Reference: "Article 505", Content: "Quiconque soustrait...", Embedding: []float32{0, 1, 0}},
		{ID: 3, Domain: "Code du travail", Reference: "Article 16", Content: "Le contrat de travail...", Embedding: []float32{0.7071, 0.7071, 0}},
	}
}

// --- Tests ---

func TestSearch_RanksByDescendingScore(t *testing.T) {
	svc := New(&mockBackend{passages: testCorpus()}, zap.NewNop())

	results := svc.Search(context.Background(), []float32{1, 0, 0}, 3)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].ID != 1 {
		t.Errorf("expected exact match first, got ID %d", results[0].ID)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted: score[%d]=%v > score[%d]=%v",
				i, results[i].Score, i-1, results[i-1].Score)
		}
	}
}

func TestSearch_ExactMatchScoresOne(t *testing.T) {
	corpus := []domain.Passage{
		{ID: 1, Domain: "Code de la famille", Reference: "Article 4", Content: "Le mariage est...", Embedding: []float32{0.1, 0.5, 0.3}},
	}
	svc := New(&mockBackend{passages: corpus}, zap.NewNop())

	results := svc.Search(context.Background(), []float32{0.1, 0.5, 0.3}, 5)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Score != 1.0 {
		t.Errorf("expected score 1.0 for identical vector, got %v", results[0].Score)
	}
	if results[0].Domain != "Code de la famille" || results[0].Reference != "Article 4" {
		t.Errorf("unexpected result metadata: %+v", results[0])
	}
}

func TestSearch_RespectsK(t *testing.T) {
	svc := New(&mockBackend{passages: testCorpus()}, zap.NewNop())

	if got := len(svc.Search(context.Background(), []float32{1, 1, 1}, 2)); got != 2 {
		t.Errorf("expected 2 results for k=2, got %d", got)
	}
}

func TestSearch_KZeroOrNegative(t *testing.T) {
	svc := New(&mockBackend{passages: testCorpus()}, zap.NewNop())

	if got := svc.Search(context.Background(), []float32{1, 0, 0}, 0); len(got) != 0 {
		t.Errorf("expected no results for k=0, got %d", len(got))
	}
	if got := svc.Search(context.Background(), []float32{1, 0, 0}, -1); len(got) != 0 {
		t.Errorf("expected no results for k=-1, got %d", len(got))
	}
}

func TestSearch_EmptyCorpus(t *testing.T) {
	svc := New(&mockBackend{}, zap.NewNop())

	if got := svc.Search(context.Background(), []float32{1, 0, 0}, 5); len(got) != 0 {
		t.Errorf("expected no results on empty corpus, got %d", len(got))
	}
}

func TestSearch_ExcludesUnrankablePassages(t *testing.T) {
	corpus := []domain.Passage{
		{ID: 1, Embedding: []float32{1, 0, 0}},
		{ID: 2, Embedding: nil},              // never embedded
		{ID: 3, Embedding: []float32{1, 0}}, // wrong dimensionality
	}
	svc := New(&mockBackend{passages: corpus}, zap.NewNop())

	results := svc.Search(context.Background(), []float32{1, 0, 0}, 10)
	if len(results) != 1 {
		t.Fatalf("expected 1 rankable result, got %d", len(results))
	}
	if results[0].ID != 1 {
		t.Errorf("expected ID 1, got %d", results[0].ID)
	}
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	corpus := []domain.Passage{
		{ID: 1, Embedding: []float32{1, 0}},
		{ID: 2, Embedding: []float32{2, 0}}, // same direction, same cosine
		{ID: 3, Embedding: []float32{0, 1}},
	}
	svc := New(&mockBackend{passages: corpus}, zap.NewNop())

	results := svc.Search(context.Background(), []float32{1, 0}, 3)
	if results[0].ID != 1 || results[1].ID != 2 {
		t.Errorf("expected tied results in insertion order, got %d then %d", results[0].ID, results[1].ID)
	}
}

func TestSearch_LoadFailureDegradesToEmpty(t *testing.T) {
	backend := &mockBackend{err: errors.New("disk gone")}
	svc := New(backend, zap.NewNop())

	if got := svc.Search(context.Background(), []float32{1}, 5); len(got) != 0 {
		t.Errorf("expected no results after failed load, got %d", len(got))
	}
	// Second search does not retry the load.
	svc.Search(context.Background(), []float32{1}, 5)
	if got := backend.loads.Load(); got != 1 {
		t.Errorf("expected a single load attempt, got %d", got)
	}
}

func TestSearch_ConcurrentFirstAccessLoadsOnce(t *testing.T) {
	backend := &mockBackend{passages: testCorpus()}
	svc := New(backend, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Search(context.Background(), []float32{1, 0, 0}, 3)
		}()
	}
	wg.Wait()

	if got := backend.loads.Load(); got != 1 {
		t.Errorf("expected exactly one load, got %d", got)
	}
	if got := svc.Count(context.Background()); got != 3 {
		t.Errorf("expected count 3 after racing loads, got %d", got)
	}
}

func TestSearch_ScoresAreRounded(t *testing.T) {
	corpus := []domain.Passage{
		{ID: 1, Embedding: []float32{1, 1, 0}},
	}
	svc := New(&mockBackend{passages: corpus}, zap.NewNop())

	results := svc.Search(context.Background(), []float32{1, 0, 0}, 1)
	// cos = 1/sqrt(2) ≈ 0.70710678 → 0.7071
	if results[0].Score != 0.7071 {
		t.Errorf("expected rounded score 0.7071, got %v", results[0].Score)
	}
}
