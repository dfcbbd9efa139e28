package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mostachar-ma/mostachar/internal/domain"
)

// FileRepo reads and writes the corpus as a single JSON array on disk.
// This is the default backend: the corpus is small enough that a flat file
// loaded once per process is all the storage engine the service needs.
type FileRepo struct {
	path string
}

// NewFile creates a file-backed corpus repository.
func NewFile(path string) *FileRepo {
	return &FileRepo{path: path}
}

// LoadAll reads every passage from the corpus file in stored order.
// A missing or unreadable file surfaces as domain.ErrCorpusUnavailable.
func (r *FileRepo) LoadAll(_ context.Context) ([]domain.Passage, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w: %w", r.path, err, domain.ErrCorpusUnavailable)
	}

	var dtos []passageDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, fmt.Errorf("parse corpus %s: %w: %w", r.path, err, domain.ErrCorpusUnavailable)
	}

	passages := make([]domain.Passage, len(dtos))
	for i, d := range dtos {
		passages[i] = d.toDomain()
	}
	return passages, nil
}

// Count returns the number of stored passages.
func (r *FileRepo) Count(ctx context.Context) (int, error) {
	passages, err := r.LoadAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(passages), nil
}

// ReplaceAll atomically rewrites the corpus file with the given passages.
func (r *FileRepo) ReplaceAll(_ context.Context, passages []domain.Passage) error {
	dtos := make([]passageDTO, len(passages))
	for i, p := range passages {
		dtos[i] = toDTO(p)
	}

	data, err := json.Marshal(dtos)
	if err != nil {
		return fmt.Errorf("marshal corpus: %w", err)
	}

	// Write-then-rename so a crash mid-write never leaves a truncated corpus.
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".corpus-*.json")
	if err != nil {
		return fmt.Errorf("create temp corpus: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp corpus: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp corpus: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace corpus %s: %w", r.path, err)
	}
	return nil
}
