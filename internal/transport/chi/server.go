// Package chi serves the recommendation HTTP API on a chi router.
package chi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/domain"
	"github.com/kailas-cloud/recodex/internal/domain/display"
	"github.com/kailas-cloud/recodex/internal/domain/query/result"
	healthuc "github.com/kailas-cloud/recodex/internal/usecase/health"
)

const maxBodyBytes = 1 << 20

// Server holds the HTTP handlers of the recommendation API.
type Server struct {
	recommend     Recommender
	health        HealthReporter
	defaultTopK   int
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. defaultTopK applies when a request omits top_k.
func NewServer(recommend Recommender, health HealthReporter, defaultTopK int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		recommend:     recommend,
		health:        health,
		defaultTopK:   defaultTopK,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Routes registers the API routes on r.
func (s *Server) Routes(r gochi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/v1", func(r gochi.Router) {
		r.Get("/corpus", s.GetCorpus)
		r.Get("/recommendations", s.BasicRecommendations)
		r.Post("/recommendations/search", s.SearchRecommendations)
		r.Post("/recommendations/filter", s.FilterRecommendations)
		r.Get("/items/{index}/similar", s.SimilarItems)
	})
}

// HealthCheck handles GET /health. A degraded service still answers 200.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// GetCorpus handles GET /api/v1/corpus.
func (s *Server) GetCorpus(w http.ResponseWriter, _ *http.Request) {
	c := s.recommend.Corpus()
	writeJSON(w, http.StatusOK, CorpusResponse{
		Items:      c.Len(),
		Dimensions: c.Dimensions(),
		Version:    c.Version(),
		LoadedAt:   c.LoadedAt(),
	})
}

// BasicRecommendations handles GET /api/v1/recommendations.
func (s *Server) BasicRecommendations(w http.ResponseWriter, r *http.Request) {
	topK, err := s.topKParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	entries, err := s.recommend.BasicRecommendations(r.Context(), topK)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeList(w, entries, topK)
}

// SearchRecommendations handles POST /api/v1/recommendations/search.
func (s *Server) SearchRecommendations(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	topK := s.topK(req.TopK)

	ctx, usage := domain.NewContextWithUsage(r.Context())
	entries, err := s.recommend.RankByText(ctx, req.Query, topK)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeList(w, entries, topK)
}

// FilterRecommendations handles POST /api/v1/recommendations/filter.
func (s *Server) FilterRecommendations(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	topK := s.topK(req.TopK)

	entries, err := s.recommend.FilterByAttributes(r.Context(), req.Spec(), topK)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeList(w, entries, topK)
}

// SimilarItems handles GET /api/v1/items/{index}/similar.
func (s *Server) SimilarItems(w http.ResponseWriter, r *http.Request) {
	raw := gochi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest,
			fmt.Sprintf("item index must be an integer, got %q", raw))
		return
	}
	topK, err := s.topKParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	entries, err := s.recommend.SimilarToItem(r.Context(), index, topK)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeList(w, entries, topK)
}

// topKParam reads the top_k query parameter. Absent means the default.
func (s *Server) topKParam(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("top_k"))
	if raw == "" {
		return s.defaultTopK, nil
	}
	k, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("top_k must be an integer, got %q", raw)
	}
	return k, nil
}

func (s *Server) topK(p *int) int {
	if p == nil {
		return s.defaultTopK
	}
	return *p
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(v) //nolint:wrapcheck // reported to the client verbatim
}

func writeList(w http.ResponseWriter, entries []result.Entry, topK int) {
	items := display.Format(entries)
	writeJSON(w, http.StatusOK, RecommendationList{
		Items: items,
		Total: len(items),
		TopK:  topK,
	})
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if tokens, used := usage.Snapshot(); used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(tokens))
	}
}
