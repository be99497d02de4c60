package filtering

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/kailas-cloud/recodex/internal/domain"
	"github.com/kailas-cloud/recodex/internal/domain/catalog"
	"github.com/kailas-cloud/recodex/internal/domain/query/filter"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func tvCorpus(t *testing.T) *catalog.Corpus {
	t.Helper()
	attrs := []catalog.Attributes{
		{Name: "Sony 55", Brand: strPtr("Sony"), Price: f64Ptr(500000), SizeInches: f64Ptr(55)},
		{Name: "LG 65", Brand: strPtr("LG"), Price: f64Ptr(700000), SizeInches: f64Ptr(65)},
		{Name: "Sony 43", Brand: strPtr("SONY"), Price: f64Ptr(300000), SizeInches: f64Ptr(43)},
		{Name: "No price", Brand: strPtr("sony"), SizeInches: f64Ptr(50)},
		{Name: "No brand", Price: f64Ptr(100000), SizeInches: f64Ptr(32)},
	}
	b := catalog.NewBuilder(len(attrs))
	for i, a := range attrs {
		if err := b.Add(a, []float32{float32(i + 1), 1}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	return b.Freeze()
}

func names(items []catalog.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name()
	}
	return out
}

func TestFilter(t *testing.T) {
	c := tvCorpus(t)
	tests := []struct {
		name string
		spec filter.Spec
		topK int
		want []string
	}{
		{
			name: "brand case-insensitive",
			spec: filter.Spec{Brand: strPtr("sony")},
			topK: 5,
			want: []string{"Sony 55", "Sony 43", "No price"},
		},
		{
			name: "brand and price max excludes missing price",
			spec: filter.Spec{Brand: strPtr("Sony"), PriceMax: f64Ptr(600000)},
			topK: 5,
			want: []string{"Sony 55", "Sony 43"},
		},
		{
			name: "price min excludes missing price",
			spec: filter.Spec{PriceMin: f64Ptr(100)},
			topK: 5,
			want: []string{"Sony 55", "LG 65", "Sony 43", "No brand"},
		},
		{
			name: "size range",
			spec: filter.Spec{SizeMin: f64Ptr(43), SizeMax: f64Ptr(55)},
			topK: 5,
			want: []string{"Sony 55", "Sony 43", "No price"},
		},
		{
			name: "first k in corpus order",
			spec: filter.Spec{SizeMin: f64Ptr(0)},
			topK: 2,
			want: []string{"Sony 55", "LG 65"},
		},
		{
			name: "min above max matches nothing",
			spec: filter.Spec{PriceMin: f64Ptr(10), PriceMax: f64Ptr(1)},
			topK: 5,
			want: []string{},
		},
		{
			name: "unknown brand",
			spec: filter.Spec{Brand: strPtr("Philips")},
			topK: 5,
			want: []string{},
		},
		{
			name: "zero top k",
			spec: filter.Spec{Brand: strPtr("Sony")},
			topK: 0,
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Filter(context.Background(), c, tt.spec, tt.topK)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(names(got), tt.want) {
				t.Errorf("got %v, want %v", names(got), tt.want)
			}
		})
	}
}

func TestFilter_EmptySpecIsHead(t *testing.T) {
	c := tvCorpus(t)
	for _, k := range []int{1, 3, 10} {
		got, err := Filter(context.Background(), c, filter.Spec{}, k)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(names(got), names(c.Head(k))) {
			t.Errorf("k=%d: got %v, want %v", k, names(got), names(c.Head(k)))
		}
	}
}

func TestFilter_ResultsSatisfySpec(t *testing.T) {
	c := tvCorpus(t)
	spec := filter.Spec{Brand: strPtr("SONY"), SizeMax: f64Ptr(60)}
	got, err := Filter(context.Background(), c, spec, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, it := range got {
		if !spec.Matches(it) {
			t.Errorf("item %q does not satisfy spec", it.Name())
		}
	}
}

func TestFilter_InvalidBound(t *testing.T) {
	c := tvCorpus(t)
	_, err := Filter(context.Background(), c, filter.Spec{PriceMax: f64Ptr(math.NaN())}, 5)
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestFilter_ContextCanceled(t *testing.T) {
	c := tvCorpus(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Filter(ctx, c, filter.Spec{Brand: strPtr("Sony")}, 5)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
