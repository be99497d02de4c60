// Package embcache caches query embeddings in a key-value store, so repeated
// searches for the same text skip the provider round trip.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/recodex/internal/db"
	"github.com/kailas-cloud/recodex/internal/domain"
)

const keyPrefix = "recodex:emb_cache:"

// Values of the "result" label on the cache counter.
const (
	resultHit    = "hit"
	resultMiss   = "miss"
	resultError  = "error"
	resultShared = "shared"
)

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Options scope and bound cached entries.
type Options struct {
	// Model is part of every key, so switching models never serves stale vectors.
	Model string
	// TTL of each entry; zero keeps entries until evicted by the store.
	TTL time.Duration
	// Dimensions > 0 discards cached vectors of any other length.
	Dimensions int
	// CallTimeout bounds a shared provider call, which outlives the caller
	// that started it. Zero leaves the bound to the provider client.
	CallTimeout time.Duration
}

// CachedEmbedder caches embeddings in a key-value store.
type CachedEmbedder struct {
	inner      domain.Embedder
	store      store
	opts       Options
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger

	// misses for the same key share one provider call
	inflight singleflight.Group
}

// New creates a caching decorator.
// cacheTotal has one label, "result": hit, miss, shared or error. It may be nil.
func New(
	inner domain.Embedder,
	s store,
	opts Options,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEmbedder {
	return &CachedEmbedder{
		inner:      inner,
		store:      s,
		opts:       opts,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Embed serves text from the cache when possible. A hit reports zero tokens.
// Concurrent misses for the same text wait on a single provider call, and only
// the caller that started it reports its tokens. The shared call is detached
// from any one caller's cancellation; each caller stops waiting when its own
// ctx is done. Store failures count as misses.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.cacheKey(text)

	if vec, ok := c.getFromCache(ctx, key); ok {
		c.incCache(resultHit)
		return domain.EmbeddingResult{Embedding: vec}, nil
	}

	caller := new(byte)
	ch := c.inflight.DoChan(key, func() (any, error) {
		c.incCache(resultMiss)
		callCtx := context.WithoutCancel(ctx)
		if c.opts.CallTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(callCtx, c.opts.CallTimeout)
			defer cancel()
		}
		res, err := c.inner.Embed(callCtx, text)
		if err != nil {
			return nil, err //nolint:wrapcheck // wrapped by each caller
		}
		c.putToCache(callCtx, key, res.Embedding)
		return flight{result: res, owner: caller}, nil
	})

	select {
	case <-ctx.Done():
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", r.Err)
		}
		f, _ := r.Val.(flight)
		if f.owner != caller {
			c.incCache(resultShared)
			return domain.EmbeddingResult{Embedding: f.result.Embedding}, nil
		}
		return f.result, nil
	}
}

// flight is the value shared by one singleflight call; owner identifies the
// caller that started it.
type flight struct {
	result domain.EmbeddingResult
	owner  *byte
}

// HealthCheck forwards to the inner embedder when it supports health checks.
func (c *CachedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

func (c *CachedEmbedder) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedEmbedder) cacheKey(text string) string {
	h := sha256.Sum256([]byte(c.opts.Model + "\x00" + text))
	return keyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedEmbedder) getFromCache(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.incCache(resultError)
			c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	vec, err := bytesToVector(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if c.opts.Dimensions > 0 && len(vec) != c.opts.Dimensions {
		c.logger.Warn("Discarding cached embedding with wrong dimensions",
			zap.String("key", key),
			zap.Int("expected", c.opts.Dimensions),
			zap.Int("actual", len(vec)),
		)
		return nil, false
	}

	return vec, true
}

func (c *CachedEmbedder) putToCache(ctx context.Context, key string, vec []float32) {
	if len(vec) == 0 {
		return
	}
	data := vectorToCacheBytes(vec)
	if err := c.store.SetWithTTL(ctx, key, data, c.opts.TTL); err != nil {
		c.incCache(resultError)
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}

func vectorToCacheBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding cache data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
