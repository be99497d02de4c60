// Package app wires the recommendation services from configuration. Both binaries share it.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/config"
	"github.com/kailas-cloud/recodex/internal/db"
	dbBolt "github.com/kailas-cloud/recodex/internal/db/bolt"
	dbRedis "github.com/kailas-cloud/recodex/internal/db/redis"
	"github.com/kailas-cloud/recodex/internal/domain"
	"github.com/kailas-cloud/recodex/internal/domain/catalog"
	"github.com/kailas-cloud/recodex/internal/metrics"
	corpusrepo "github.com/kailas-cloud/recodex/internal/repository/corpus"
	"github.com/kailas-cloud/recodex/internal/repository/embcache"
	openaiEmb "github.com/kailas-cloud/recodex/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/recodex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/recodex/internal/usecase/health"
	"github.com/kailas-cloud/recodex/internal/usecase/ranking"
	"github.com/kailas-cloud/recodex/internal/usecase/recommend"
)

// App holds the wired services.
type App struct {
	Corpus    *catalog.Corpus
	Recommend *recommend.Service
	Health    *healthuc.Service

	store db.Store
}

// Option overrides a wiring step, mostly for tests.
type Option func(*options)

type options struct {
	embedder domain.Embedder
}

// WithBaseEmbedder replaces the OpenAI provider at the bottom of the embedder chain.
func WithBaseEmbedder(e domain.Embedder) Option {
	return func(o *options) { o.embedder = e }
}

// New loads the corpus and assembles the query services. A corpus that fails to load is fatal
// to the caller; a cache backend that cannot be reached is too.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	loadCtx, cancel := context.WithTimeout(ctx, cfg.Corpus.LoadTimeout())
	defer cancel()
	// Without an explicit corpus D, the model's D binds the corpus.
	expected := cfg.Corpus.ExpectedDimensions
	if expected == 0 {
		expected = cfg.Embedding.Dimensions
	}
	corpus, err := corpusrepo.NewLoader(expected, logger).LoadFile(loadCtx, cfg.Corpus.Path)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	metrics.SetCorpus(corpus.Len(), corpus.Dimensions())

	store, err := openCache(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, err
	}

	dims := cfg.Embedding.Dimensions
	if dims == 0 {
		dims = corpus.Dimensions()
	}
	base := o.embedder
	if base == nil {
		base = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Timeout:    cfg.Embedding.Timeout(),
			Logger:     logger,
		})
	}
	embedder := buildEmbedder(base, cfg, dims, store, logger)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", dims),
		zap.String("cache", cfg.Cache.Driver),
	)

	ranker := ranking.NewExactRanker(
		ranking.WithWorkers(cfg.Search.Workers),
		ranking.WithParallelThreshold(cfg.Search.ParallelThreshold),
	)

	// Pass nil interface (not typed nil pointer!) when there is no cache.
	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}

	return &App{
		Corpus:    corpus,
		Recommend: recommend.New(corpus, embedder, ranker, cfg.Search.MaxQueryLength),
		Health:    healthuc.New(corpus, cachePinger, newEmbeddingHealthChecker(embedder)),
		store:     store,
	}, nil
}

// Close releases the cache backend.
func (a *App) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

// openCache opens the configured cache backend and waits for it. Returns nil for driver "none".
func openCache(ctx context.Context, cfg config.CacheConfig, logger *zap.Logger) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.Driver {
	case config.CacheNone:
		return nil, nil //nolint:nilnil // no cache configured
	case config.CacheRedis:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	case config.CacheBolt:
		store, err = dbBolt.NewStore(dbBolt.Config{Path: cfg.Path})
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", cfg.Driver, err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s cache not ready: %w", cfg.Driver, err)
	}
	logger.Info("Connected to embedding cache", zap.String("driver", cfg.Driver))
	return store, nil
}

// buildEmbedder assembles the decorator chain: provider -> Cached -> Instrumented -> Instruction.
func buildEmbedder(
	base domain.Embedder,
	cfg config.Config,
	dims int,
	store db.Store,
	logger *zap.Logger,
) domain.Embedder {
	embedder := base
	if store != nil {
		embedder = embcache.New(base, store, embcache.Options{
			Model:       cfg.Embedding.Model,
			TTL:         cfg.Cache.TTL(),
			Dimensions:  dims,
			CallTimeout: cfg.Embedding.Timeout(),
		}, metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(
		embedder, cfg.Embedding.Provider, cfg.Embedding.Model, dims, logger,
	)

	// Instruction prefix (outermost, so the cache key includes the instruction)
	if cfg.Embedding.QueryInstruction != "" {
		return domain.NewInstructionEmbedder(embedder, cfg.Embedding.QueryInstruction)
	}
	return embedder
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
