package embcache

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/db"
	"github.com/kailas-cloud/recodex/internal/domain"
)

// countingEmbedder returns a fixed result and counts provider calls.
type countingEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (e *countingEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	e.calls++
	return e.result, e.err
}

// memStore is an in-memory cache that records the TTL of every write.
// getErr and setErr, when set, fail the corresponding call.
type memStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   []time.Duration
	getErr error
	setErr error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls = append(m.ttls, ttl)
	return nil
}

// seed stores vec under the key the embedder would compute for text.
func (m *memStore) seed(c *CachedEmbedder, text string, vec []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[c.cacheKey(text)] = vectorToCacheBytes(vec)
}

func newTestCachedEmbedder(t *testing.T, inner *countingEmbedder, opts Options) (*CachedEmbedder, *memStore) {
	t.Helper()
	ms := newMemStore()
	return New(inner, ms, opts, nil, zap.NewNop()), ms
}
