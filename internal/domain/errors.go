package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCorpusLoad signals that the corpus could not be loaded. Fatal at startup.
	ErrCorpusLoad = errors.New("corpus load failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrInvalidQuery signals a query rejected before any result was produced.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrItemNotFound signals an item index outside the corpus.
	ErrItemNotFound = errors.New("item not found")
)

// LoadError describes why a corpus source was rejected.
// Record is the 0-based record position, or -1 when the failure is not tied to a record.
type LoadError struct {
	Source string
	Record int
	Err    error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString(ErrCorpusLoad.Error())
	if e.Source != "" {
		fmt.Fprintf(&b, ": %s", e.Source)
	}
	if e.Record >= 0 {
		fmt.Fprintf(&b, ": record %d", e.Record)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both ErrCorpusLoad and the underlying cause.
func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCorpusLoad}
	}
	return []error{ErrCorpusLoad, e.Err}
}

// NewLoadError creates a load error for a single record.
func NewLoadError(source string, record int, err error) error {
	return &LoadError{Source: source, Record: record, Err: err}
}

// NewDimMismatch reports a query vector whose length differs from the corpus dimension.
func NewDimMismatch(got, want int) error {
	return fmt.Errorf("%w: %w: query has %d dimensions, corpus has %d",
		ErrInvalidQuery, ErrVectorDimMismatch, got, want)
}
