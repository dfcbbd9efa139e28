// Package health reports service liveness and corpus statistics.
package health

import "context"

// CorpusCounter counts records in the corpus backend.
type CorpusCounter interface {
	Count(ctx context.Context) (int, error)
}

// Report is the health check payload. DocumentsCount is nil when the
// backend cannot be counted; the service itself still reports healthy
// because serving degrades gracefully to an empty index.
type Report struct {
	Status         string
	DocumentsCount *int
}

// Stats is the corpus statistics payload.
type Stats struct {
	TotalDocuments int
	Status         string
	Detail         string
}

// Service coordinates health and stats checks.
type Service struct {
	corpus CorpusCounter
}

// New creates a health service.
func New(corpus CorpusCounter) *Service {
	return &Service{corpus: corpus}
}

// Check reports liveness with a best-effort document count.
func (s *Service) Check(ctx context.Context) Report {
	report := Report{Status: "healthy"}
	if count, err := s.corpus.Count(ctx); err == nil {
		report.DocumentsCount = &count
	}
	return report
}

// CorpusStats reports the backend record count, degrading to zero with an
// error status instead of failing the request.
func (s *Service) CorpusStats(ctx context.Context) Stats {
	count, err := s.corpus.Count(ctx)
	if err != nil {
		return Stats{TotalDocuments: 0, Status: "error", Detail: err.Error()}
	}
	return Stats{TotalDocuments: count, Status: "ok"}
}
