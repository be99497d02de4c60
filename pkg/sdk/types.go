package recodex

import "time"

// Product is a catalog item. Optional attributes are nil when the corpus record lacks them.
type Product struct {
	Index       int
	Name        string
	Brand       *string
	Price       *float64
	SizeInches  *float64
	Rating      *float64
	Resolution  *string
	SourcePage  string
	URL         *string
	Description *string
}

// Hit is a single query result. Score is set only by the ranking queries.
type Hit struct {
	Product Product
	Score   *float64
}

// Filter is a conjunctive attribute filter. Nil fields impose no constraint.
// A missing price counts as 0 for PriceMin and never matches PriceMax;
// a missing size never matches either size bound.
type Filter struct {
	Brand    *string
	PriceMin *float64
	PriceMax *float64
	SizeMin  *float64
	SizeMax  *float64
}

// CorpusInfo describes the loaded corpus snapshot.
type CorpusInfo struct {
	Items      int
	Dimensions int
	Version    string
	LoadedAt   time.Time
}

// String returns a pointer to s, for Filter literals.
func String(s string) *string { return &s }

// Float returns a pointer to f, for Filter literals.
func Float(f float64) *float64 { return &f }
