// Package domain holds the shared types and contracts of the legal
// retrieval pipeline.
package domain

// Passage is one legal text fragment of the corpus. Records are immutable
// once loaded: ingestion assigns IDs in insertion order and they are never
// reused.
type Passage struct {
	ID        int
	Domain    string
	Reference string
	Content   string
	Embedding []float32
}

// RankedResult is a per-query search hit. Score is cosine similarity in
// [-1, 1], rounded to 4 decimals for stable serialization.
type RankedResult struct {
	ID        int
	Domain    string
	Reference string
	Content   string
	Score     float64
}

// Source is the citation payload returned to clients. Content is omitted
// deliberately to keep responses compact.
type Source struct {
	Domain    string  `json:"domain"`
	Reference string  `json:"reference"`
	Score     float64 `json:"score"`
}

// SourceOf projects a ranked result into its citation.
func SourceOf(r RankedResult) Source {
	return Source{Domain: r.Domain, Reference: r.Reference, Score: r.Score}
}
