package chi

import (
	"context"

	"github.com/kailas-cloud/recodex/internal/domain/catalog"
	"github.com/kailas-cloud/recodex/internal/domain/query/filter"
	"github.com/kailas-cloud/recodex/internal/domain/query/result"
	healthuc "github.com/kailas-cloud/recodex/internal/usecase/health"
)

// Recommender answers catalog queries.
type Recommender interface {
	RankByText(ctx context.Context, query string, topK int) ([]result.Entry, error)
	FilterByAttributes(ctx context.Context, spec filter.Spec, topK int) ([]result.Entry, error)
	BasicRecommendations(ctx context.Context, topK int) ([]result.Entry, error)
	SimilarToItem(ctx context.Context, index, topK int) ([]result.Entry, error)
	Corpus() *catalog.Corpus
}

// HealthReporter produces the aggregated health report.
type HealthReporter interface {
	Check(ctx context.Context) healthuc.Report
}
