// Package filter defines the conjunctive attribute filter over catalog items.
package filter

import (
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/recodex/internal/domain"
	"github.com/kailas-cloud/recodex/internal/domain/catalog"
)

// Spec is a conjunctive attribute filter. Nil fields impose no constraint.
type Spec struct {
	Brand    *string
	PriceMin *float64
	PriceMax *float64
	SizeMin  *float64
	SizeMax  *float64
}

// Predicate is a single named constraint evaluated against an item.
type Predicate struct {
	Name  string
	Match func(catalog.Item) bool
}

// Validate rejects bounds that are NaN or infinite.
func (s Spec) Validate() error {
	bounds := []struct {
		name string
		v    *float64
	}{
		{"price_min", s.PriceMin},
		{"price_max", s.PriceMax},
		{"size_min", s.SizeMin},
		{"size_max", s.SizeMax},
	}
	for _, b := range bounds {
		if b.v != nil && (math.IsNaN(*b.v) || math.IsInf(*b.v, 0)) {
			return fmt.Errorf("%w: %s must be a finite number", domain.ErrInvalidQuery, b.name)
		}
	}
	return nil
}

// IsEmpty reports whether the spec has no active constraint.
func (s Spec) IsEmpty() bool {
	return len(s.Predicates()) == 0
}

// Predicates returns the active constraints in evaluation order.
// A blank brand is treated as absent.
func (s Spec) Predicates() []Predicate {
	var ps []Predicate
	if s.Brand != nil && strings.TrimSpace(*s.Brand) != "" {
		ps = append(ps, Predicate{Name: "brand", Match: BrandEquals(*s.Brand)})
	}
	if s.PriceMax != nil {
		ps = append(ps, Predicate{Name: "price_max", Match: PriceAtMost(*s.PriceMax)})
	}
	if s.PriceMin != nil {
		ps = append(ps, Predicate{Name: "price_min", Match: PriceAtLeast(*s.PriceMin)})
	}
	if s.SizeMin != nil {
		ps = append(ps, Predicate{Name: "size_min", Match: SizeAtLeast(*s.SizeMin)})
	}
	if s.SizeMax != nil {
		ps = append(ps, Predicate{Name: "size_max", Match: SizeAtMost(*s.SizeMax)})
	}
	return ps
}

// Matches reports whether the item satisfies every active constraint.
func (s Spec) Matches(item catalog.Item) bool {
	for _, p := range s.Predicates() {
		if !p.Match(item) {
			return false
		}
	}
	return true
}

// BrandEquals matches a case-insensitive exact brand. Items without a brand never match.
func BrandEquals(brand string) func(catalog.Item) bool {
	want := strings.TrimSpace(brand)
	return func(item catalog.Item) bool {
		got, ok := item.Brand()
		return ok && strings.EqualFold(strings.TrimSpace(got), want)
	}
}

// PriceAtMost matches price <= limit. A missing price counts as +Inf, so it never matches.
func PriceAtMost(limit float64) func(catalog.Item) bool {
	return func(item catalog.Item) bool {
		p, ok := item.Price()
		if !ok {
			p = math.Inf(1)
		}
		return p <= limit
	}
}

// PriceAtLeast matches price >= limit. A missing price counts as 0.
func PriceAtLeast(limit float64) func(catalog.Item) bool {
	return func(item catalog.Item) bool {
		p, ok := item.Price()
		if !ok {
			p = 0
		}
		return p >= limit
	}
}

// SizeAtLeast matches size >= limit. Items without a size never match.
func SizeAtLeast(limit float64) func(catalog.Item) bool {
	return func(item catalog.Item) bool {
		s, ok := item.SizeInches()
		return ok && s >= limit
	}
}

// SizeAtMost matches size <= limit. Items without a size never match.
func SizeAtMost(limit float64) func(catalog.Item) bool {
	return func(item catalog.Item) bool {
		s, ok := item.SizeInches()
		return ok && s <= limit
	}
}
