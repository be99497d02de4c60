package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/domain"
)

type mockEmbedder struct {
	result    domain.EmbeddingResult
	err       error
	healthErr error
	calls     int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

func (m *mockEmbedder) HealthCheck(_ context.Context) error {
	return m.healthErr
}

type plainEmbedder struct{}

func (plainEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: []float32{1}}, nil
}

func TestInstrumentedEmbedder_Success(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 7,
		TotalTokens:  7,
	}}
	p := NewInstrumentedEmbedder(inner, "openai", "test-model", 3, zap.NewNop())

	result, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 {
		t.Fatalf("expected 3 dimensions, got %d", len(result.Embedding))
	}
	if result.TotalTokens != 7 {
		t.Errorf("expected 7 total tokens, got %d", result.TotalTokens)
	}
}

func TestInstrumentedEmbedder_AnyDimensionWhenUnset(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 2}}}
	p := NewInstrumentedEmbedder(inner, "openai", "test-model", 0, zap.NewNop())

	if _, err := p.Embed(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInstrumentedEmbedder_Error(t *testing.T) {
	sentinel := fmt.Errorf("%w: rate limited", domain.ErrEmbeddingProviderError)
	inner := &mockEmbedder{err: sentinel}
	p := NewInstrumentedEmbedder(inner, "openai", "test-model", 0, zap.NewNop())

	_, err := p.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error to survive wrapping, got %v", err)
	}
}

func TestInstrumentedEmbedder_DimensionMismatch(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 2}}}
	p := NewInstrumentedEmbedder(inner, "openai", "test-model", 3, zap.NewNop())

	_, err := p.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) || !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected provider dimension error, got %v", err)
	}
}

func TestInstrumentedEmbedder_EmptyVector(t *testing.T) {
	inner := &mockEmbedder{}
	p := NewInstrumentedEmbedder(inner, "openai", "test-model", 0, zap.NewNop())

	_, err := p.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestInstrumentedEmbedder_HealthCheck(t *testing.T) {
	down := errors.New("connection refused")
	p := NewInstrumentedEmbedder(&mockEmbedder{healthErr: down}, "openai", "m", 0, zap.NewNop())
	if err := p.HealthCheck(context.Background()); !errors.Is(err, down) {
		t.Errorf("expected inner health error, got %v", err)
	}

	p = NewInstrumentedEmbedder(plainEmbedder{}, "openai", "m", 0, zap.NewNop())
	if err := p.HealthCheck(context.Background()); err != nil {
		t.Errorf("embedder without health check should be healthy, got %v", err)
	}
}
