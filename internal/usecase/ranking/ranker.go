// Package ranking scores corpus items against a query embedding.
package ranking

import (
	"context"
	"fmt"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/recodex/internal/domain"
	"github.com/kailas-cloud/recodex/internal/domain/catalog"
	"github.com/kailas-cloud/recodex/internal/domain/query/result"
)

const (
	defaultParallelThreshold = 4096
	// cancellation is checked once per this many items
	checkEvery = 1024
)

// Ranker returns the topK corpus items most similar to a query embedding,
// ordered by similarity descending with ties broken by corpus index ascending.
type Ranker interface {
	Rank(ctx context.Context, query []float32, corpus *catalog.Corpus, topK int) ([]result.Entry, error)
}

// ExactRanker scores every item by brute force.
// Large corpora are split into contiguous shards scored concurrently.
type ExactRanker struct {
	workers           int
	parallelThreshold int
}

// Option configures an ExactRanker.
type Option func(*ExactRanker)

// WithWorkers sets the number of shards used for large corpora.
func WithWorkers(n int) Option {
	return func(r *ExactRanker) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithParallelThreshold sets the corpus size at which scoring goes parallel.
func WithParallelThreshold(n int) Option {
	return func(r *ExactRanker) {
		if n > 0 {
			r.parallelThreshold = n
		}
	}
}

// NewExactRanker creates a brute-force ranker.
func NewExactRanker(opts ...Option) *ExactRanker {
	r := &ExactRanker{
		workers:           runtime.GOMAXPROCS(0),
		parallelThreshold: defaultParallelThreshold,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Rank implements Ranker.
func (r *ExactRanker) Rank(
	ctx context.Context, query []float32, corpus *catalog.Corpus, topK int,
) ([]result.Entry, error) {
	n := corpus.Len()
	if topK <= 0 || n == 0 {
		return []result.Entry{}, nil
	}
	if len(query) != corpus.Dimensions() {
		return nil, domain.NewDimMismatch(len(query), corpus.Dimensions())
	}

	var hits []hit
	var err error
	if n >= r.parallelThreshold && r.workers > 1 {
		hits, err = r.scoreParallel(ctx, query, corpus, topK)
	} else {
		hits, err = scoreRange(ctx, query, corpus, 0, n, topK)
	}
	if err != nil {
		return nil, err
	}

	out := make([]result.Entry, len(hits))
	for i, h := range hits {
		item, _ := corpus.Item(h.index)
		out[i] = result.Scored(item, h.score)
	}
	return out, nil
}

func (r *ExactRanker) scoreParallel(
	ctx context.Context, query []float32, corpus *catalog.Corpus, topK int,
) ([]hit, error) {
	n := corpus.Len()
	shards := min(r.workers, n)
	size := (n + shards - 1) / shards
	partials := make([][]hit, shards)

	g, gctx := errgroup.WithContext(ctx)
	for s := range shards {
		lo := s * size
		hi := min(lo+size, n)
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			hits, err := scoreRange(gctx, query, corpus, lo, hi, topK)
			partials[s] = hits
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // context error from scoreRange, already wrapped
	}

	merged := slices.Concat(partials...)
	slices.SortFunc(merged, compareHits)
	if len(merged) > topK {
		merged = merged[:topK]
	}
	return merged, nil
}

// scoreRange scores items [lo, hi) and returns the best topK in rank order.
func scoreRange(
	ctx context.Context, query []float32, corpus *catalog.Corpus, lo, hi, topK int,
) ([]hit, error) {
	best := newTopK(min(topK, hi-lo))
	for i := lo; i < hi; i++ {
		if (i-lo)%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("rank: %w", err)
			}
		}
		best.offer(hit{index: i, score: CosineSimilarity(query, corpus.Embedding(i))})
	}
	hits := best.hits
	slices.SortFunc(hits, compareHits)
	return hits, nil
}

func compareHits(a, b hit) int {
	switch {
	case better(a, b):
		return -1
	case better(b, a):
		return 1
	default:
		return 0
	}
}
