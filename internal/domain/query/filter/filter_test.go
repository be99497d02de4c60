package filter

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/recodex/internal/domain"
	"github.com/kailas-cloud/recodex/internal/domain/catalog"
)

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }

func item(brand *string, price, size *float64) catalog.Item {
	return catalog.NewItem(0, catalog.Attributes{
		Name:       "tv",
		Brand:      brand,
		Price:      price,
		SizeInches: size,
	})
}

func TestSpec_Matches(t *testing.T) {
	sony := item(strPtr("Sony"), floatPtr(1500000), floatPtr(55))
	noPrice := item(strPtr("LG"), nil, floatPtr(43))
	noSize := item(strPtr("LG"), floatPtr(900000), nil)
	noBrand := item(nil, floatPtr(900000), floatPtr(50))

	tests := []struct {
		name string
		spec Spec
		item catalog.Item
		want bool
	}{
		{"empty spec matches", Spec{}, sony, true},
		{"brand case-insensitive", Spec{Brand: strPtr("sONY")}, sony, true},
		{"brand exact not substring", Spec{Brand: strPtr("Son")}, sony, false},
		{"missing brand fails", Spec{Brand: strPtr("lg")}, noBrand, false},
		{"blank brand ignored", Spec{Brand: strPtr("  ")}, noBrand, true},
		{"price max inclusive", Spec{PriceMax: floatPtr(1500000)}, sony, true},
		{"price max exceeded", Spec{PriceMax: floatPtr(1000000)}, sony, false},
		{"price min inclusive", Spec{PriceMin: floatPtr(1500000)}, sony, true},
		{"missing price fails max", Spec{PriceMax: floatPtr(1e12)}, noPrice, false},
		{"missing price fails positive min", Spec{PriceMin: floatPtr(100)}, noPrice, false},
		{"missing price passes zero min", Spec{PriceMin: floatPtr(0)}, noPrice, true},
		{"missing price passes negative min", Spec{PriceMin: floatPtr(-5)}, noPrice, true},
		{"size range", Spec{SizeMin: floatPtr(50), SizeMax: floatPtr(60)}, sony, true},
		{"size below min", Spec{SizeMin: floatPtr(60)}, sony, false},
		{"missing size fails min", Spec{SizeMin: floatPtr(0)}, noSize, false},
		{"missing size fails max", Spec{SizeMax: floatPtr(100)}, noSize, false},
		{"conjunction", Spec{Brand: strPtr("lg"), PriceMax: floatPtr(1000000)}, noSize, true},
		{"conjunction one fails", Spec{Brand: strPtr("lg"), PriceMax: floatPtr(100)}, noSize, false},
		{"min above max matches nothing", Spec{PriceMin: floatPtr(2e6), PriceMax: floatPtr(1e6)}, sony, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.spec.Matches(tt.item); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpec_PredicatesOrder(t *testing.T) {
	s := Spec{
		Brand:    strPtr("sony"),
		PriceMin: floatPtr(1),
		PriceMax: floatPtr(2),
		SizeMin:  floatPtr(3),
		SizeMax:  floatPtr(4),
	}
	want := []string{"brand", "price_max", "price_min", "size_min", "size_max"}
	got := s.Predicates()
	if len(got) != len(want) {
		t.Fatalf("expected %d predicates, got %d", len(want), len(got))
	}
	for i, p := range got {
		if p.Name != want[i] {
			t.Errorf("predicate %d: got %q, want %q", i, p.Name, want[i])
		}
	}
	if s.IsEmpty() {
		t.Error("spec should not be empty")
	}
	if !(Spec{}).IsEmpty() {
		t.Error("zero spec should be empty")
	}
}

func TestSpec_Validate(t *testing.T) {
	if err := (Spec{PriceMin: floatPtr(10)}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := []Spec{
		{PriceMin: floatPtr(math.NaN())},
		{PriceMax: floatPtr(math.Inf(1))},
		{SizeMin: floatPtr(math.Inf(-1))},
		{SizeMax: floatPtr(math.NaN())},
	}
	for i, s := range bad {
		err := s.Validate()
		if !errors.Is(err, domain.ErrInvalidQuery) {
			t.Errorf("case %d: expected ErrInvalidQuery, got %v", i, err)
		}
	}
}

func TestParseSpec_Lenient(t *testing.T) {
	s := ParseSpec(map[string]string{
		"brand":     " Samsung ",
		"price_min": "abc",
		"price_max": "2000000",
		"size_min":  "",
		"size_max":  "65",
		"color":     "black",
	})

	if s.Brand == nil || *s.Brand != "Samsung" {
		t.Errorf("brand: %v", s.Brand)
	}
	if s.PriceMin != nil {
		t.Errorf("malformed price_min should be ignored, got %v", *s.PriceMin)
	}
	if s.PriceMax == nil || *s.PriceMax != 2000000 {
		t.Errorf("price_max: %v", s.PriceMax)
	}
	if s.SizeMin != nil {
		t.Error("blank size_min should be absent")
	}
	if s.SizeMax == nil || *s.SizeMax != 65 {
		t.Errorf("size_max: %v", s.SizeMax)
	}
}

func TestParseSpec_SpanishKeys(t *testing.T) {
	s := ParseSpec(map[string]string{
		"marca":        "lg",
		"precio_max":   "1000000",
		"pulgadas_min": "40",
	})
	if s.Brand == nil || *s.Brand != "lg" {
		t.Error("marca not mapped to brand")
	}
	if s.PriceMax == nil || s.SizeMin == nil {
		t.Error("spanish bounds not mapped")
	}
}

func TestParseBound(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"", nil},
		{"  ", nil},
		{"12", floatPtr(12)},
		{" 12.5 ", floatPtr(12.5)},
		{"-3", floatPtr(-3)},
		{"1.500.000", nil},
		{"NaN", nil},
		{"Inf", nil},
		{"doce", nil},
	}
	for _, tt := range tests {
		got := ParseBound(tt.in)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("ParseBound(%q) = %v, want nil", tt.in, *got)
		case tt.want != nil && (got == nil || *got != *tt.want):
			t.Errorf("ParseBound(%q) = %v, want %v", tt.in, got, *tt.want)
		}
	}
}

func TestBound_UnmarshalJSON(t *testing.T) {
	var req struct {
		A Bound `json:"a"`
		B Bound `json:"b"`
		C Bound `json:"c"`
		D Bound `json:"d"`
		E Bound `json:"e"`
	}
	body := `{"a": 100, "b": "250.5", "c": "lots", "d": null}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if v := req.A.Value(); v == nil || *v != 100 {
		t.Errorf("a: %v", v)
	}
	if v := req.B.Value(); v == nil || *v != 250.5 {
		t.Errorf("b: %v", v)
	}
	if req.C.Value() != nil {
		t.Error("c: malformed string should leave bound unset")
	}
	if req.D.Value() != nil || req.E.Value() != nil {
		t.Error("null and absent bounds should be unset")
	}

	if err := json.Unmarshal([]byte(`{"a": true}`), &req); err == nil {
		t.Error("expected error for boolean bound")
	}
}

func TestBound_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		Set   Bound `json:"set"`
		Unset Bound `json:"unset"`
	}{Set: NewBound(42)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"set":42,"unset":null}` {
		t.Errorf("unexpected json: %s", out)
	}
}
