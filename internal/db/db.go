// Package db defines the storage facade for the corpus record store.
package db

import (
	"context"
	"time"
)

// Store is the database facade used by the redis corpus backend. Corpus
// records are JSON documents under a common key prefix; the read path is
// "scan everything, then fetch" because all filtering and ranking happens
// in memory after a full read.
type Store interface {
	Pinger
	JSONStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JSONSetItem holds a single key+path+data triple for pipelined JSON.SET.
type JSONSetItem struct {
	Key  string
	Path string
	Data []byte
}

// JSONStore provides JSON document operations.
type JSONStore interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetMulti(ctx context.Context, items []JSONSetItem) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}
