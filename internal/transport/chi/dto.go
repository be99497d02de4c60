package chi

import (
	"time"

	"github.com/kailas-cloud/recodex/internal/domain/display"
	"github.com/kailas-cloud/recodex/internal/domain/query/filter"
)

// ErrorCode is the machine-readable error kind in error responses.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest             ErrorCode = "bad_request"
	ErrorCodeUnauthorized           ErrorCode = "unauthorized"
	ErrorCodeInvalidQuery           ErrorCode = "invalid_query"
	ErrorCodeVectorDimMismatch      ErrorCode = "vector_dim_mismatch"
	ErrorCodeItemNotFound           ErrorCode = "item_not_found"
	ErrorCodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	ErrorCodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// RecommendationList is the body of every query endpoint.
type RecommendationList struct {
	Items []display.Record `json:"items"`
	Total int              `json:"total"`
	TopK  int              `json:"top_k"`
}

// CorpusResponse describes the loaded corpus snapshot.
type CorpusResponse struct {
	Items      int       `json:"items"`
	Dimensions int       `json:"dimensions"`
	Version    string    `json:"version"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// SearchRequest is the body of POST /api/v1/recommendations/search.
type SearchRequest struct {
	Query string `json:"query"`
	TopK  *int   `json:"top_k,omitempty"`
}

// FilterRequest is the body of POST /api/v1/recommendations/filter.
// Bounds accept numbers or numeric strings; strings that do not parse are ignored.
type FilterRequest struct {
	Brand    *string      `json:"brand,omitempty"`
	PriceMin filter.Bound `json:"price_min"`
	PriceMax filter.Bound `json:"price_max"`
	SizeMin  filter.Bound `json:"size_min"`
	SizeMax  filter.Bound `json:"size_max"`
	TopK     *int         `json:"top_k,omitempty"`
}

// Spec converts the request into a filter spec.
func (r FilterRequest) Spec() filter.Spec {
	return filter.Spec{
		Brand:    r.Brand,
		PriceMin: r.PriceMin.Value(),
		PriceMax: r.PriceMax.Value(),
		SizeMin:  r.SizeMin.Value(),
		SizeMax:  r.SizeMax.Value(),
	}
}
