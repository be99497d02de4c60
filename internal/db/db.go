// Package db is the storage contract behind the query embedding cache.
// Backends hold opaque byte values under string keys; callers own the encoding.
package db

import (
	"context"
	"time"
)

// Store is a cache backend as the application sees it: opened at startup,
// health-checked while serving, closed on shutdown.
type Store interface {
	Cache
	Pinger
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close()
}

// Cache reads and writes values by key. Get reports a missing or expired key
// as ErrKeyNotFound; a non-positive ttl stores the value without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Pinger is satisfied by any backend that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
