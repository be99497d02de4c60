package health

import "context"

// CorpusInfo reports the size of the loaded corpus.
type CorpusInfo interface {
	Len() int
}

// CachePinger checks embedding cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
