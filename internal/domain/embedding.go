package domain

import (
	"context"
	"fmt"
	"strings"
)

// QueryPlaceholder marks where the query goes inside an instruction template.
const QueryPlaceholder = "{query}"

// Embedder turns text into a vector. Ranking depends on nothing else about the
// model.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker is implemented by embedders that can probe their provider.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult is passed unchanged through every embedder decorator.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// InstructionEmbedder rewrites query text before embedding, for models trained
// with a task instruction ("query: ", "Instruct: ...\nQuery: {query}").
type InstructionEmbedder struct {
	inner  Embedder
	before string
	after  string
}

// NewInstructionEmbedder wraps inner. If instruction contains QueryPlaceholder
// the query is substituted there; otherwise instruction is a plain prefix.
func NewInstructionEmbedder(inner Embedder, instruction string) *InstructionEmbedder {
	before, after, _ := strings.Cut(instruction, QueryPlaceholder)
	return &InstructionEmbedder{inner: inner, before: before, after: after}
}

// Embed applies the instruction and delegates to the wrapped embedder.
func (e *InstructionEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	res, err := e.inner.Embed(ctx, e.before+text+e.after)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("instruction embed: %w", err)
	}
	return res, nil
}

// HealthCheck delegates when the wrapped embedder can check its provider.
func (e *InstructionEmbedder) HealthCheck(ctx context.Context) error {
	hc, ok := e.inner.(HealthChecker)
	if !ok {
		return nil
	}
	return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
}
