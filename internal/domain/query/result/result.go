package result

import "github.com/kailas-cloud/recodex/internal/domain/catalog"

// Entry is a single query hit: an item, plus a similarity score for text queries.
type Entry struct {
	item   catalog.Item
	score  float64
	scored bool
}

// Scored creates a ranked hit with a cosine similarity in [-1, 1].
func Scored(item catalog.Item, score float64) Entry {
	return Entry{item: item, score: score, scored: true}
}

// Unscored creates a hit produced without similarity scoring (filters, basic recommendations).
func Unscored(item catalog.Item) Entry {
	return Entry{item: item}
}

// FromItems wraps items as unscored entries, preserving order.
func FromItems(items []catalog.Item) []Entry {
	out := make([]Entry, len(items))
	for i, it := range items {
		out[i] = Unscored(it)
	}
	return out
}

// Item returns the matched item.
func (e Entry) Item() catalog.Item { return e.item }

// Index returns the corpus index of the matched item.
func (e Entry) Index() int { return e.item.Index() }

// Score returns the similarity score and whether the entry was scored at all.
func (e Entry) Score() (float64, bool) { return e.score, e.scored }
