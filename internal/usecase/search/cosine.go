package search

import "math"

// cosine returns the cosine similarity of two vectors. Mismatched lengths,
// empty vectors, and zero-norm vectors all score 0 rather than erroring:
// a record that cannot be compared simply never ranks.
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// roundScore truncates a similarity score to 4 decimals for stable, compact
// serialization.
func roundScore(s float64) float64 {
	return math.Round(s*10000) / 10000
}
