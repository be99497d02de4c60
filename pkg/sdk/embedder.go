package recodex

import "context"

// Embedder turns query text into a vector in the same space as the corpus
// embeddings. Only RankByText needs one.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbedderFunc lets a plain function serve as an Embedder.
type EmbedderFunc func(ctx context.Context, text string) (EmbeddingResult, error)

// Embed calls f(ctx, text).
func (f EmbedderFunc) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return f(ctx, text)
}

// EmbeddingResult is the output of one embedding call. Token counts may be
// zero for local models that do not meter usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}
