// Package filtering selects corpus items by structured attribute constraints.
package filtering

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/recodex/internal/domain/catalog"
	"github.com/kailas-cloud/recodex/internal/domain/query/filter"
)

const checkEvery = 1024

// Filter returns the first topK items, in corpus order, satisfying every
// constraint present in spec. An empty spec matches every item.
func Filter(ctx context.Context, corpus *catalog.Corpus, spec filter.Spec, topK int) ([]catalog.Item, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	if topK <= 0 {
		return []catalog.Item{}, nil
	}
	if spec.IsEmpty() {
		return corpus.Head(topK), nil
	}

	preds := spec.Predicates()
	out := make([]catalog.Item, 0, min(topK, corpus.Len()))
	for i := 0; i < corpus.Len() && len(out) < topK; i++ {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("filter: %w", err)
			}
		}
		item, _ := corpus.Item(i)
		if matchAll(preds, item) {
			out = append(out, item)
		}
	}
	return out, nil
}

func matchAll(preds []filter.Predicate, item catalog.Item) bool {
	for _, p := range preds {
		if !p.Match(item) {
			return false
		}
	}
	return true
}
