// Package db defines the key-value backend behind the catalog and the
// embedding cache.
package db

import (
	"context"
	"time"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// Store is a key-value backend the candidate stores are built on.
type Store interface {
	Pinger
	KVStore
	// Driver reports which backend serves the store.
	Driver() string
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore holds catalog documents and cached embeddings as opaque bytes.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// GetMulti fetches keys in one round-trip; missing keys yield nil entries.
	GetMulti(ctx context.Context, keys []string) ([][]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	// Scan lists keys matching a glob pattern such as "stylegenie:product:*".
	Scan(ctx context.Context, pattern string) ([]string, error)
}
