package recodex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kailas-cloud/recodex/internal/domain"
	"github.com/kailas-cloud/recodex/internal/domain/catalog"
	"github.com/kailas-cloud/recodex/internal/domain/display"
	"github.com/kailas-cloud/recodex/internal/domain/query/filter"
	"github.com/kailas-cloud/recodex/internal/domain/query/result"
	corpusrepo "github.com/kailas-cloud/recodex/internal/repository/corpus"
	"github.com/kailas-cloud/recodex/internal/usecase/ranking"
	"github.com/kailas-cloud/recodex/internal/usecase/recommend"
)

const defaultMaxQueryLength = 1000

// queryUseCase is the internal query interface, swapped in tests.
type queryUseCase interface {
	RankByText(ctx context.Context, query string, topK int) ([]result.Entry, error)
	FilterByAttributes(ctx context.Context, spec filter.Spec, topK int) ([]result.Entry, error)
	BasicRecommendations(ctx context.Context, topK int) ([]result.Entry, error)
	SimilarToItem(ctx context.Context, index, topK int) ([]result.Entry, error)
}

// Client is the recodex SDK entry point. It is safe for concurrent use.
type Client struct {
	corpus *catalog.Corpus
	svc    queryUseCase
	obs    *observer
}

// New loads the corpus and creates a Client. The context bounds the load.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{maxQueryLength: defaultMaxQueryLength}
	for _, o := range opts {
		o.apply(cfg)
	}

	corpus, err := loadCorpus(ctx, cfg)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	// Embedder: noop if not set (filters work, text ranking returns an error)
	var emb domain.Embedder = noopEmbedder{}
	if cfg.embedder != nil {
		emb = &embedderAdapter{inner: cfg.embedder}
	}
	ranker := ranking.NewExactRanker(ranking.WithWorkers(cfg.workers))

	return &Client{
		corpus: corpus,
		svc:    recommend.New(corpus, emb, ranker, cfg.maxQueryLength),
		obs:    obs,
	}, nil
}

func loadCorpus(ctx context.Context, cfg *clientConfig) (*catalog.Corpus, error) {
	loader := corpusrepo.NewLoader(cfg.expectedDimensions, nil)
	switch {
	case cfg.corpusReader != nil:
		source := cfg.corpusSource
		if source == "" {
			source = "reader"
		}
		c, err := loader.Load(ctx, cfg.corpusReader, source)
		if err != nil {
			return nil, fmt.Errorf("recodex: %w", err)
		}
		return c, nil
	case cfg.corpusPath != "":
		c, err := loader.LoadFile(ctx, cfg.corpusPath)
		if err != nil {
			return nil, fmt.Errorf("recodex: %w", err)
		}
		return c, nil
	default:
		return nil, errors.New("recodex: corpus required (use WithCorpusFile or WithCorpusReader)")
	}
}

// Corpus describes the loaded corpus.
func (c *Client) Corpus() CorpusInfo {
	return CorpusInfo{
		Items:      c.corpus.Len(),
		Dimensions: c.corpus.Dimensions(),
		Version:    c.corpus.Version(),
		LoadedAt:   c.corpus.LoadedAt(),
	}
}

// RankByText returns the topK products most similar to a free-text query, best first.
func (c *Client) RankByText(ctx context.Context, query string, topK int) (hits []Hit, err error) {
	start := time.Now()
	defer func() { c.obs.observe("rank_by_text", start, len(hits), err) }()

	entries, err := c.svc.RankByText(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("rank by text: %w", err)
	}
	return toHits(entries), nil
}

// FilterByAttributes returns the first topK products, in corpus order, matching every constraint.
func (c *Client) FilterByAttributes(ctx context.Context, f Filter, topK int) (hits []Hit, err error) {
	start := time.Now()
	defer func() { c.obs.observe("filter_by_attributes", start, len(hits), err) }()

	spec := filter.Spec{
		Brand:    f.Brand,
		PriceMin: f.PriceMin,
		PriceMax: f.PriceMax,
		SizeMin:  f.SizeMin,
		SizeMax:  f.SizeMax,
	}
	entries, err := c.svc.FilterByAttributes(ctx, spec, topK)
	if err != nil {
		return nil, fmt.Errorf("filter by attributes: %w", err)
	}
	return toHits(entries), nil
}

// BasicRecommendations returns the first topK products of the corpus, unscored.
func (c *Client) BasicRecommendations(ctx context.Context, topK int) (hits []Hit, err error) {
	start := time.Now()
	defer func() { c.obs.observe("basic_recommendations", start, len(hits), err) }()

	entries, err := c.svc.BasicRecommendations(ctx, topK)
	if err != nil {
		return nil, fmt.Errorf("basic recommendations: %w", err)
	}
	return toHits(entries), nil
}

// SimilarToItem returns the topK products most similar to the product at index, excluding it.
func (c *Client) SimilarToItem(ctx context.Context, index, topK int) (hits []Hit, err error) {
	start := time.Now()
	defer func() { c.obs.observe("similar_to_item", start, len(hits), err) }()

	entries, err := c.svc.SimilarToItem(ctx, index, topK)
	if err != nil {
		return nil, fmt.Errorf("similar to item: %w", err)
	}
	return toHits(entries), nil
}

// Render writes hits in the console format used by the interactive menu.
func (c *Client) Render(w io.Writer, hits []Hit) error {
	entries := make([]result.Entry, 0, len(hits))
	for _, h := range hits {
		item, ok := c.corpus.Item(h.Product.Index)
		if !ok {
			return fmt.Errorf("recodex: %w: index %d", ErrItemNotFound, h.Product.Index)
		}
		if h.Score != nil {
			entries = append(entries, result.Scored(item, *h.Score))
		} else {
			entries = append(entries, result.Unscored(item))
		}
	}
	return display.Render(w, display.Format(entries)) //nolint:wrapcheck // already prefixed by display
}

func toHits(entries []result.Entry) []Hit {
	hits := make([]Hit, len(entries))
	for i, e := range entries {
		hits[i] = Hit{Product: toProduct(e.Item())}
		if score, ok := e.Score(); ok {
			hits[i].Score = &score
		}
	}
	return hits
}

func toProduct(it catalog.Item) Product {
	a := it.Attributes()
	return Product{
		Index:       it.Index(),
		Name:        a.Name,
		Brand:       a.Brand,
		Price:       a.Price,
		SizeInches:  a.SizeInches,
		Rating:      a.Rating,
		Resolution:  a.Resolution,
		SourcePage:  a.SourcePage,
		URL:         a.URL,
		Description: a.Description,
	}
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder returns an error on Embed call (used when no embedder configured).
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New(
		"recodex: embedder not configured (use WithEmbedder for text ranking)",
	)
}
