package recodex

import (
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	corpusPath   string
	corpusReader io.Reader
	corpusSource string

	embedder           Embedder
	expectedDimensions int
	maxQueryLength     int
	workers            int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithCorpusFile loads the corpus from a JSON array or JSON Lines file.
func WithCorpusFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.corpusPath = path
		c.corpusReader = nil
	})
}

// WithCorpusReader loads the corpus from r. source names it in load errors.
func WithCorpusReader(r io.Reader, source string) Option {
	return optionFunc(func(c *clientConfig) {
		c.corpusReader = r
		c.corpusSource = source
		c.corpusPath = ""
	})
}

// WithEmbedder sets the query embedding provider. Required for RankByText.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithExpectedDimensions rejects a corpus whose vectors have any other length.
func WithExpectedDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.expectedDimensions = dim
	})
}

// WithMaxQueryLength bounds RankByText queries, in characters. Default: 1000.
func WithMaxQueryLength(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxQueryLength = n
	})
}

// WithWorkers sets how many goroutines score a large corpus. Default: GOMAXPROCS.
func WithWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
