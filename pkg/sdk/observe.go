package recodex

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	queries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	results  *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recodex",
			Subsystem: "sdk",
			Name:      "queries_total",
			Help:      "Total SDK queries by operation and status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "recodex",
			Subsystem: "sdk",
			Name:      "query_duration_seconds",
			Help:      "SDK query duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		results: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "recodex",
			Subsystem: "sdk",
			Name:      "query_results",
			Help:      "Number of hits returned per successful SDK query.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		}, []string{"operation"}),
	}
	if err := registerOrReuse(reg, &m.queries); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.results); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one, so several
// clients can share a registerer.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("recodex: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("recodex: register metric: %w", err)
	}
	return nil
}

// observer logs and measures SDK queries. A nil logger or registerer disables that half.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

func (o *observer) observe(op string, start time.Time, results int, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	if m := o.metrics; m != nil {
		status := "ok"
		if err != nil {
			status = "error"
		} else {
			m.results.WithLabelValues(op).Observe(float64(results))
		}
		m.queries.WithLabelValues(op, status).Inc()
		m.duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	if o.logger == nil {
		return
	}
	if err != nil {
		o.logger.Warn("query failed", "op", op, "duration", dur, "error", err)
		return
	}
	o.logger.Debug("query completed", "op", op, "duration", dur, "results", results)
}
