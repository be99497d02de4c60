package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/config"
	"github.com/kailas-cloud/recodex/internal/domain"
	healthuc "github.com/kailas-cloud/recodex/internal/usecase/health"
)

const corpusJSONL = `{"nombre": "Sony 55", "marca": "sony", "precio": 500000, "embedding": [1, 0]}
{"nombre": "LG 65", "marca": "lg", "precio": 700000, "embedding": [0, 1]}
{"nombre": "Sony 43", "marca": "sony", "precio": 300000, "embedding": [1, 1]}
`

type countingEmbedder struct {
	calls int
	texts []string
}

func (e *countingEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	e.calls++
	e.texts = append(e.texts, text)
	return domain.EmbeddingResult{Embedding: []float32{1, 0}, TotalTokens: 4}, nil
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.jsonl")
	if err := os.WriteFile(path, []byte(corpusJSONL), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := config.Config{
		HTTP:      config.HTTPConfig{Port: 8080},
		Corpus:    config.CorpusConfig{Path: path},
		Embedding: config.EmbeddingConfig{Model: "test-model"},
		Cache:     config.CacheConfig{Driver: config.CacheBolt, Path: filepath.Join(dir, "cache.db")},
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}
	return cfg
}

func TestNew_WiresQueryServices(t *testing.T) {
	cfg := testConfig(t)
	cfg.Embedding.QueryInstruction = "query: "
	emb := &countingEmbedder{}

	a, err := New(context.Background(), cfg, zap.NewNop(), WithBaseEmbedder(emb))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()

	if a.Corpus.Len() != 3 || a.Corpus.Dimensions() != 2 {
		t.Fatalf("unexpected corpus: %d items, %d dims", a.Corpus.Len(), a.Corpus.Dimensions())
	}

	for range 2 {
		entries, err := a.Recommend.RankByText(context.Background(), "sony tv", 2)
		if err != nil {
			t.Fatalf("rank: %v", err)
		}
		if len(entries) != 2 || entries[0].Item().Name() != "Sony 55" {
			t.Fatalf("unexpected ranking: %+v", entries)
		}
	}
	if emb.calls != 1 {
		t.Errorf("second query must hit the cache, provider called %d times", emb.calls)
	}
	if emb.texts[0] != "query: sony tv" {
		t.Errorf("instruction not applied: %q", emb.texts[0])
	}

	report := a.Health.Check(context.Background())
	if report.Status != healthuc.Healthy {
		t.Errorf("expected healthy, got %+v", report)
	}
	if report.Checks["cache"] != healthuc.CheckOK || report.Checks["embedding"] != healthuc.CheckOK {
		t.Errorf("unexpected checks: %+v", report.Checks)
	}
}

func TestNew_NoCache(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Driver = config.CacheNone
	emb := &countingEmbedder{}

	a, err := New(context.Background(), cfg, zap.NewNop(), WithBaseEmbedder(emb))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()

	for range 2 {
		if _, err := a.Recommend.RankByText(context.Background(), "tv", 1); err != nil {
			t.Fatalf("rank: %v", err)
		}
	}
	if emb.calls != 2 {
		t.Errorf("without a cache every query embeds, got %d calls", emb.calls)
	}
	if _, ok := a.Health.Check(context.Background()).Checks["cache"]; ok {
		t.Error("cache check must be absent without a cache")
	}
}

func TestNew_CorpusLoadFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.Corpus.Path = filepath.Join(t.TempDir(), "missing.json")

	_, err := New(context.Background(), cfg, zap.NewNop(), WithBaseEmbedder(&countingEmbedder{}))
	if !errors.Is(err, domain.ErrCorpusLoad) {
		t.Fatalf("expected ErrCorpusLoad, got %v", err)
	}
}

func TestNew_DimensionMismatch(t *testing.T) {
	tests := []struct {
		name string
		edit func(*config.Config)
	}{
		{"corpus expected dimensions", func(c *config.Config) { c.Corpus.ExpectedDimensions = 3 }},
		{"embedding model dimensions", func(c *config.Config) { c.Embedding.Dimensions = 3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.edit(&cfg)

			_, err := New(context.Background(), cfg, zap.NewNop(), WithBaseEmbedder(&countingEmbedder{}))
			if !errors.Is(err, domain.ErrCorpusLoad) || !errors.Is(err, domain.ErrVectorDimMismatch) {
				t.Fatalf("expected a dimension load error, got %v", err)
			}
		})
	}
}
