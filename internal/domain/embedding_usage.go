package domain

import (
	"context"
	"sync"
)

type usageKey struct{}

// EmbeddingUsage accumulates provider token spend for one request. The
// transport attaches it, the query service records into it, and the transport
// reports it back in response headers. Safe for concurrent use.
type EmbeddingUsage struct {
	mu     sync.Mutex
	tokens int
	calls  int
}

// NewContextWithUsage attaches a fresh collector to ctx and returns both.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := new(EmbeddingUsage)
	return context.WithValue(ctx, usageKey{}, u), u
}

// UsageFromContext returns the collector attached to ctx, or nil.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(usageKey{}).(*EmbeddingUsage)
	return u
}

// AddTokens records one embedding call costing n tokens. A cache hit records
// a call with n == 0. No-op on a nil collector.
func (u *EmbeddingUsage) AddTokens(n int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.tokens += n
	u.calls++
	u.mu.Unlock()
}

// Snapshot returns the tokens spent so far and whether any embedding happened.
func (u *EmbeddingUsage) Snapshot() (tokens int, used bool) {
	if u == nil {
		return 0, false
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.tokens, u.calls > 0
}
