// Package corpus implements the corpus record store backends.
//
// A backend only has to satisfy the read-everything contract: the service
// never filters at the storage level, ranking happens in memory after a
// full read. Writes exist solely for offline ingestion.
package corpus

import "github.com/mostachar-ma/mostachar/internal/domain"

// passageDTO is the stored representation of a legal passage. The field
// names match the JSON corpus format produced by ingestion.
type passageDTO struct {
	ID        int       `json:"id"`
	Domain    string    `json:"domain"`
	Reference string    `json:"reference"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
}

func toDTO(p domain.Passage) passageDTO {
	return passageDTO{
		ID:        p.ID,
		Domain:    p.Domain,
		Reference: p.Reference,
		Content:   p.Content,
		Embedding: p.Embedding,
	}
}

func (d passageDTO) toDomain() domain.Passage {
	return domain.Passage{
		ID:        d.ID,
		Domain:    d.Domain,
		Reference: d.Reference,
		Content:   d.Content,
		Embedding: d.Embedding,
	}
}
