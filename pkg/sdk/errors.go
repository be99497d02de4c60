package recodex

import "github.com/kailas-cloud/recodex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrCorpusLoad             = domain.ErrCorpusLoad
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrInvalidQuery           = domain.ErrInvalidQuery
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
	ErrItemNotFound           = domain.ErrItemNotFound
)
