package catalog

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/recodex/internal/domain"
)

// ErrFrozen is returned when adding to a builder that has already produced its corpus.
var ErrFrozen = errors.New("corpus builder already frozen")

// Corpus is the ordered, immutable collection of items and their embeddings.
// It is never mutated after Freeze, so concurrent queries share it without locking.
type Corpus struct {
	items      []Item
	embeddings [][]float32
	dim        int
	version    string
	loadedAt   time.Time
}

// Len returns the number of items.
func (c *Corpus) Len() int { return len(c.items) }

// Dimensions returns the embedding dimension D (0 for an empty corpus).
func (c *Corpus) Dimensions() int { return c.dim }

// Version returns the snapshot identifier assigned at freeze time.
func (c *Corpus) Version() string { return c.version }

// LoadedAt returns the freeze timestamp.
func (c *Corpus) LoadedAt() time.Time { return c.loadedAt }

// Item returns the item at index i.
func (c *Corpus) Item(i int) (Item, bool) {
	if i < 0 || i >= len(c.items) {
		return Item{}, false
	}
	return c.items[i], true
}

// Embedding returns the embedding at index i. The slice is shared; callers must not modify it.
func (c *Corpus) Embedding(i int) []float32 {
	if i < 0 || i >= len(c.embeddings) {
		return nil
	}
	return c.embeddings[i]
}

// Head returns the first k items in corpus order. k <= 0 yields an empty slice.
func (c *Corpus) Head(k int) []Item {
	if k <= 0 {
		return []Item{}
	}
	if k > len(c.items) {
		k = len(c.items)
	}
	out := make([]Item, k)
	copy(out, c.items[:k])
	return out
}

// Builder accumulates items and embeddings, then freezes them into a Corpus.
type Builder struct {
	items      []Item
	embeddings [][]float32
	dim        int
	frozen     bool
}

// NewBuilder creates a builder with capacity for n items.
func NewBuilder(n int) *Builder {
	if n < 0 {
		n = 0
	}
	return &Builder{
		items:      make([]Item, 0, n),
		embeddings: make([][]float32, 0, n),
	}
}

// ExpectDimensions pins D before the first Add. Zero leaves D to the first embedding.
func (b *Builder) ExpectDimensions(d int) *Builder {
	if len(b.items) == 0 && d > 0 {
		b.dim = d
	}
	return b
}

// Len returns the number of items added so far.
func (b *Builder) Len() int { return len(b.items) }

// Add appends an item with its embedding. The embedding is copied.
// It fails on an empty embedding, a non-finite component or a dimension different from D.
func (b *Builder) Add(attrs Attributes, embedding []float32) error {
	if b.frozen {
		return ErrFrozen
	}
	if len(embedding) == 0 {
		return fmt.Errorf("embedding is empty")
	}
	if b.dim == 0 {
		b.dim = len(embedding)
	}
	if len(embedding) != b.dim {
		return fmt.Errorf("%w: got %d, want %d", domain.ErrVectorDimMismatch, len(embedding), b.dim)
	}
	for j, v := range embedding {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("embedding component %d is not finite", j)
		}
	}

	vec := make([]float32, len(embedding))
	copy(vec, embedding)

	b.items = append(b.items, NewItem(len(b.items), attrs))
	b.embeddings = append(b.embeddings, vec)
	return nil
}

// Freeze produces the immutable corpus. The builder cannot be used afterwards.
func (b *Builder) Freeze() *Corpus {
	b.frozen = true
	dim := b.dim
	if len(b.items) == 0 {
		dim = 0
	}
	c := &Corpus{
		items:      b.items,
		embeddings: b.embeddings,
		dim:        dim,
		version:    uuid.NewString(),
		loadedAt:   time.Now().UTC(),
	}
	b.items = nil
	b.embeddings = nil
	return c
}
