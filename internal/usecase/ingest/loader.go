// Package ingest implements the offline corpus ingestion pipeline: walk the
// data directory, embed every passage, and rewrite the corpus backend.
package ingest

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Chunk is one raw legal text fragment read from the data directory.
type Chunk struct {
	Domain    string
	Reference string
	Content   string
}

// entryDTO mirrors the source JSON files: arrays of {reference, contenu}.
type entryDTO struct {
	Reference string `json:"reference"`
	Contenu   string `json:"contenu"`
}

// LoadLegalTexts walks dataPath recursively and collects every legal text
// fragment. The domain of a fragment is the first-level subfolder it lives
// under (for files at the root, the file name without extension). Files
// that fail to parse are skipped with a warning; entries with empty content
// are dropped.
func LoadLegalTexts(dataPath string, logger *zap.Logger) ([]Chunk, error) {
	info, err := os.Stat(dataPath)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("data directory not found: %s", dataPath)
	}

	var chunks []Chunk
	err = filepath.WalkDir(dataPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable file", zap.String("path", path), zap.Error(err))
			return nil
		}

		entries, err := parseEntries(data)
		if err != nil {
			logger.Warn("skipping unparseable file", zap.String("path", path), zap.Error(err))
			return nil
		}

		domain := domainOf(dataPath, path)
		for _, e := range entries {
			content := strings.TrimSpace(e.Contenu)
			if content == "" {
				continue
			}
			chunks = append(chunks, Chunk{
				Domain:    domain,
				Reference: strings.TrimSpace(e.Reference),
				Content:   content,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dataPath, err)
	}

	logger.Info("legal texts loaded", zap.Int("chunks", len(chunks)), zap.String("path", dataPath))
	return chunks, nil
}

// parseEntries accepts both an array of entries and a single object.
func parseEntries(data []byte) ([]entryDTO, error) {
	var entries []entryDTO
	if err := json.Unmarshal(data, &entries); err == nil {
		return entries, nil
	}

	var single entryDTO
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, err
	}
	return []entryDTO{single}, nil
}

// domainOf derives the legal domain from the first-level subfolder relative
// to the data root.
func domainOf(dataPath, filePath string) string {
	rel, err := filepath.Rel(dataPath, filepath.Dir(filePath))
	if err != nil || rel == "." {
		base := filepath.Base(filePath)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	parts := strings.Split(rel, string(filepath.Separator))
	return parts[0]
}
