package search

import (
	"context"

	"github.com/mostachar-ma/mostachar/internal/domain"
)

// Backend reads the full corpus from the record store.
type Backend interface {
	LoadAll(ctx context.Context) ([]domain.Passage, error)
}
