// Package embedding decorates the query embedder with logging and result checks.
package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/domain"
)

// InstrumentedEmbedder wraps an Embedder with logging and a dimension check.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai.
type InstrumentedEmbedder struct {
	inner      domain.Embedder
	provider   string
	model      string
	dimensions int
	logger     *zap.Logger
}

// NewInstrumentedEmbedder wraps an embedder. dimensions > 0 rejects vectors of any other length,
// which catches a model swap that no longer matches the corpus.
func NewInstrumentedEmbedder(
	inner domain.Embedder, provider, model string,
	dimensions int, logger *zap.Logger,
) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{
		inner:      inner,
		provider:   provider,
		model:      model,
		dimensions: dimensions,
		logger:     logger,
	}
}

// Embed delegates to the inner embedder and validates the result.
func (p *InstrumentedEmbedder) Embed(
	ctx context.Context, text string,
) (domain.EmbeddingResult, error) {
	start := time.Now()

	result, err := p.inner.Embed(ctx, text)

	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	if len(result.Embedding) == 0 {
		p.logger.Error("Embedding provider returned an empty vector",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("%w: empty embedding", domain.ErrEmbeddingProviderError)
	}

	if p.dimensions > 0 && len(result.Embedding) != p.dimensions {
		p.logger.Error("Embedding dimension mismatch",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Int("expected", p.dimensions),
			zap.Int("actual", len(result.Embedding)),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w: got %d, want %d",
			domain.ErrEmbeddingProviderError, domain.ErrVectorDimMismatch, len(result.Embedding), p.dimensions)
	}

	p.logger.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}

// HealthCheck forwards to the inner embedder when it supports health checks.
func (p *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	hc, ok := p.inner.(domain.HealthChecker)
	if !ok {
		return nil
	}
	if err := hc.HealthCheck(ctx); err != nil {
		return fmt.Errorf("embedder health: %w", err)
	}
	return nil
}
