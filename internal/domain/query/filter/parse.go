package filter

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// keyAliases maps accepted input keys (including the retailer data's Spanish names) to spec fields.
var keyAliases = map[string]string{
	"brand":        "brand",
	"marca":        "brand",
	"price_min":    "price_min",
	"precio_min":   "price_min",
	"price_max":    "price_max",
	"precio_max":   "price_max",
	"size_min":     "size_min",
	"pulgadas_min": "size_min",
	"size_max":     "size_max",
	"pulgadas_max": "size_max",
}

// ParseSpec builds a Spec from raw string values. Parsing is lenient:
// blank values are absent, and a bound that does not parse as a finite number
// is dropped without affecting the other constraints. Unknown keys are ignored.
func ParseSpec(values map[string]string) Spec {
	var s Spec
	for key, raw := range values {
		field, ok := keyAliases[strings.ToLower(strings.TrimSpace(key))]
		if !ok {
			continue
		}
		switch field {
		case "brand":
			if b := strings.TrimSpace(raw); b != "" {
				s.Brand = &b
			}
		case "price_min":
			s.PriceMin = ParseBound(raw)
		case "price_max":
			s.PriceMax = ParseBound(raw)
		case "size_min":
			s.SizeMin = ParseBound(raw)
		case "size_max":
			s.SizeMax = ParseBound(raw)
		}
	}
	return s
}

// ParseBound parses a numeric bound, returning nil for blank or malformed input.
func ParseBound(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Bound is a JSON filter bound that accepts a number, a numeric string or null.
// A string that does not parse leaves the bound unset instead of failing the request.
type Bound struct {
	value *float64
}

// NewBound creates a set bound.
func NewBound(v float64) Bound { return Bound{value: &v} }

// Value returns the parsed bound, or nil when unset.
func (b Bound) Value() *float64 { return b.value }

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bound) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		b.value = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err //nolint:wrapcheck // surfaced as a malformed request body
		}
		b.value = ParseBound(s)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err //nolint:wrapcheck // surfaced as a malformed request body
	}
	b.value = &v
	return nil
}

// MarshalJSON implements json.Marshaler.
func (b Bound) MarshalJSON() ([]byte, error) {
	if b.value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*b.value) //nolint:wrapcheck // plain float encoding
}
