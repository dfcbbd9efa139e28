package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mostachar-ma/mostachar/internal/db"
	"github.com/mostachar-ma/mostachar/internal/domain"
)

// RedisRepo stores each passage as a JSON document under
// {prefix}passage:{id}. It satisfies the same read-everything contract as
// the file backend and exists for deployments where the corpus must be
// shared across instances.
type RedisRepo struct {
	store  db.JSONStore
	prefix string
}

// NewRedis creates a redis-backed corpus repository.
func NewRedis(store db.JSONStore, keyPrefix string) *RedisRepo {
	return &RedisRepo{store: store, prefix: keyPrefix}
}

func (r *RedisRepo) key(id int) string {
	return fmt.Sprintf("%spassage:%d", r.prefix, id)
}

// LoadAll reads every passage, ordered by ID so the in-memory corpus keeps
// ingestion order regardless of SCAN ordering.
func (r *RedisRepo) LoadAll(ctx context.Context) ([]domain.Passage, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"passage:*")
	if err != nil {
		return nil, fmt.Errorf("scan corpus keys: %w: %w", err, domain.ErrCorpusUnavailable)
	}

	sort.Slice(keys, func(i, j int) bool {
		return keyID(keys[i]) < keyID(keys[j])
	})

	passages := make([]domain.Passage, 0, len(keys))
	for _, key := range keys {
		raw, err := r.store.JSONGet(ctx, key)
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) {
				continue // deleted between scan and fetch
			}
			return nil, fmt.Errorf("fetch %s: %w: %w", key, err, domain.ErrCorpusUnavailable)
		}

		var dto passageDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, fmt.Errorf("parse %s: %w: %w", key, err, domain.ErrCorpusUnavailable)
		}
		passages = append(passages, dto.toDomain())
	}
	return passages, nil
}

// Count returns the number of stored passages.
func (r *RedisRepo) Count(ctx context.Context) (int, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"passage:*")
	if err != nil {
		return 0, fmt.Errorf("scan corpus keys: %w: %w", err, domain.ErrCorpusUnavailable)
	}
	return len(keys), nil
}

// ReplaceAll deletes the stored corpus and writes the given passages.
func (r *RedisRepo) ReplaceAll(ctx context.Context, passages []domain.Passage) error {
	keys, err := r.store.Scan(ctx, r.prefix+"passage:*")
	if err != nil {
		return fmt.Errorf("scan corpus keys: %w", err)
	}
	for _, key := range keys {
		if err := r.store.Del(ctx, key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}

	items := make([]db.JSONSetItem, len(passages))
	for i, p := range passages {
		data, err := json.Marshal(toDTO(p))
		if err != nil {
			return fmt.Errorf("marshal passage %d: %w", p.ID, err)
		}
		items[i] = db.JSONSetItem{Key: r.key(p.ID), Path: "$", Data: data}
	}
	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return fmt.Errorf("store passages: %w", err)
	}
	return nil
}

// keyID extracts the numeric ID suffix; malformed keys sort last.
func keyID(key string) int {
	idx := strings.LastIndex(key, ":")
	if idx < 0 {
		return int(^uint(0) >> 1)
	}
	id, err := strconv.Atoi(key[idx+1:])
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return id
}
