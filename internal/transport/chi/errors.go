package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/domain"
	"github.com/kailas-cloud/recodex/internal/logger"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// defaultErrorHandlers maps sentinels to responses, first match wins.
// A provider failure that also carries a dimension mismatch is the provider's fault, so it goes first.
func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrEmbeddingProviderError,
			http.StatusBadGateway, ErrorCodeEmbeddingProviderError),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, ErrorCodeVectorDimMismatch),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorCodeInvalidQuery),
		sentinelHandler(domain.ErrItemNotFound, http.StatusNotFound, ErrorCodeItemNotFound),
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// Invalid queries keep their detail message; everything else exposes only the sentinel text.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		msg := sentinel.Error()
		if errors.Is(sentinel, domain.ErrInvalidQuery) {
			msg = err.Error()
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
