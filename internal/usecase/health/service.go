// Package health aggregates component checks for the /health endpoint.
package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional dependency is failing; filtering and basic
	// recommendations still work.
	Degraded Status = "degraded"
	// Unhealthy indicates the corpus is unusable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

const defaultCheckTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	corpus    CorpusInfo
	cache     CachePinger
	embedding EmbeddingChecker
	timeout   time.Duration
}

// New creates a Service. cache and embedding can be nil.
func New(corpus CorpusInfo, cache CachePinger, embedding EmbeddingChecker) *Service {
	return &Service{corpus: corpus, cache: cache, embedding: embedding, timeout: defaultCheckTimeout}
}

// Check runs the component checks concurrently, each bounded by the check timeout.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	var mu sync.Mutex
	set := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			checks[name] = CheckError
		} else {
			checks[name] = CheckOK
		}
	}

	corpusOK := s.corpus != nil && s.corpus.Len() > 0
	if corpusOK {
		checks["corpus"] = CheckOK
	} else {
		checks["corpus"] = CheckError
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var g errgroup.Group
	if s.cache != nil {
		g.Go(func() error {
			set("cache", s.cache.Ping(ctx))
			return nil
		})
	}
	if s.embedding != nil {
		g.Go(func() error {
			set("embedding", s.embedding.HealthCheck(ctx))
			return nil
		})
	}
	_ = g.Wait()

	if !corpusOK {
		return Report{Status: Unhealthy, Checks: checks}
	}
	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	return Report{Status: status, Checks: checks}
}
