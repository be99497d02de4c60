package recommend

import (
	"context"

	"github.com/kailas-cloud/recodex/internal/domain"
	"github.com/kailas-cloud/recodex/internal/domain/catalog"
	"github.com/kailas-cloud/recodex/internal/domain/query/result"
)

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Ranker orders corpus items by similarity to a query vector.
type Ranker interface {
	Rank(ctx context.Context, query []float32, corpus *catalog.Corpus, topK int) ([]result.Entry, error)
}
