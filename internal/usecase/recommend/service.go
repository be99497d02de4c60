// Package recommend is the query interface over the loaded catalog: free-text
// ranking, attribute filtering, plain recommendations and item-to-item similarity.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/domain"
	"github.com/kailas-cloud/recodex/internal/domain/catalog"
	"github.com/kailas-cloud/recodex/internal/domain/query/filter"
	"github.com/kailas-cloud/recodex/internal/domain/query/result"
	"github.com/kailas-cloud/recodex/internal/logger"
	"github.com/kailas-cloud/recodex/internal/metrics"
	"github.com/kailas-cloud/recodex/internal/usecase/filtering"
)

// Operation names, used as metric labels and log fields.
const (
	OpRankByText           = "rank_by_text"
	OpFilterByAttributes   = "filter_by_attributes"
	OpBasicRecommendations = "basic_recommendations"
	OpSimilarToItem        = "similar_to_item"
)

// Service answers queries against an immutable corpus. Safe for concurrent use.
type Service struct {
	corpus         *catalog.Corpus
	embed          Embedder
	ranker         Ranker
	maxQueryLength int
}

// New creates a query service. maxQueryLength <= 0 disables the length check.
func New(corpus *catalog.Corpus, embed Embedder, ranker Ranker, maxQueryLength int) *Service {
	return &Service{
		corpus:         corpus,
		embed:          embed,
		ranker:         ranker,
		maxQueryLength: maxQueryLength,
	}
}

// Corpus returns the corpus the service queries.
func (s *Service) Corpus() *catalog.Corpus {
	return s.corpus
}

// RankByText embeds query and returns the topK most similar items.
func (s *Service) RankByText(ctx context.Context, query string, topK int) (entries []result.Entry, err error) {
	defer s.observe(ctx, OpRankByText, time.Now(), &entries, &err)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidQuery)
	}
	if s.maxQueryLength > 0 && utf8.RuneCountInString(query) > s.maxQueryLength {
		return nil, fmt.Errorf("%w: query exceeds %d characters", domain.ErrInvalidQuery, s.maxQueryLength)
	}
	if topK <= 0 || s.corpus.Len() == 0 {
		return []result.Entry{}, nil
	}

	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		if !errors.Is(err, domain.ErrEmbeddingProviderError) && ctx.Err() == nil {
			err = fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
		}
		return nil, fmt.Errorf("embed query: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(emb.TotalTokens)

	entries, err = s.ranker.Rank(ctx, emb.Embedding, s.corpus, topK)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}
	return entries, nil
}

// FilterByAttributes returns the first topK items, in corpus order, that satisfy spec.
func (s *Service) FilterByAttributes(
	ctx context.Context, spec filter.Spec, topK int,
) (entries []result.Entry, err error) {
	defer s.observe(ctx, OpFilterByAttributes, time.Now(), &entries, &err)

	items, err := filtering.Filter(ctx, s.corpus, spec, topK)
	if err != nil {
		return nil, err //nolint:wrapcheck // already prefixed by filtering
	}
	return result.FromItems(items), nil
}

// BasicRecommendations returns the first topK corpus items, unscored.
func (s *Service) BasicRecommendations(ctx context.Context, topK int) (entries []result.Entry, err error) {
	defer s.observe(ctx, OpBasicRecommendations, time.Now(), &entries, &err)

	return result.FromItems(s.corpus.Head(topK)), nil
}

// SimilarToItem ranks the corpus against the embedding of the item at index,
// leaving the item itself out of the results.
func (s *Service) SimilarToItem(ctx context.Context, index, topK int) (entries []result.Entry, err error) {
	defer s.observe(ctx, OpSimilarToItem, time.Now(), &entries, &err)

	vec := s.corpus.Embedding(index)
	if vec == nil {
		return nil, fmt.Errorf("%w: index %d (corpus has %d items)", domain.ErrItemNotFound, index, s.corpus.Len())
	}
	if topK <= 0 {
		return []result.Entry{}, nil
	}

	ranked, err := s.ranker.Rank(ctx, vec, s.corpus, topK+1)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}
	entries = make([]result.Entry, 0, topK)
	for _, e := range ranked {
		if e.Index() == index {
			continue
		}
		if len(entries) == topK {
			break
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *Service) observe(ctx context.Context, op string, start time.Time, entries *[]result.Entry, err *error) {
	duration := time.Since(start)
	metrics.QueryDuration.WithLabelValues(op).Observe(duration.Seconds())

	log := logger.FromContext(ctx)
	if *err != nil {
		kind := ErrorType(*err)
		metrics.QueryErrorsTotal.WithLabelValues(op, kind).Inc()
		log.Warn("Query failed",
			zap.String("operation", op),
			zap.String("error_type", kind),
			zap.Duration("duration", duration),
			zap.Error(*err),
		)
		return
	}

	metrics.QueryResults.WithLabelValues(op).Observe(float64(len(*entries)))
	log.Debug("Query completed",
		zap.String("operation", op),
		zap.Int("results", len(*entries)),
		zap.Duration("duration", duration),
	)
}

// ErrorType classifies a query error for metrics and logs. A provider error wins over
// the other kinds, since a provider returning the wrong dimension is not the caller's fault.
func ErrorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		return "embedding_provider_error"
	case errors.Is(err, domain.ErrVectorDimMismatch):
		return "vector_dim_mismatch"
	case errors.Is(err, domain.ErrInvalidQuery):
		return "invalid_query"
	case errors.Is(err, domain.ErrItemNotFound):
		return "item_not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal_error"
	}
}
