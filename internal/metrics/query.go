package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query and corpus metrics.
var (
	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Query duration in seconds, embedding included",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation"},
	)

	QueryResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_results",
			Help:      "Number of items returned per query",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		},
		[]string{"operation"},
	)

	QueryErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_errors_total",
			Help:      "Total failed queries",
		},
		[]string{"operation", "error_type"},
	)

	CorpusItems = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "corpus_items",
		Help:      "Number of items in the loaded corpus",
	})

	CorpusDimensions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "corpus_dimensions",
		Help:      "Embedding dimensions of the loaded corpus",
	})
)

// SetCorpus publishes the size of the loaded corpus.
func SetCorpus(items, dimensions int) {
	CorpusItems.Set(float64(items))
	CorpusDimensions.Set(float64(dimensions))
}
