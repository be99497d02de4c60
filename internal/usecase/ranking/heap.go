package ranking

import "container/heap"

type hit struct {
	index int
	score float64
}

// better reports whether a ranks before b: higher score first, lower index on ties.
func better(a, b hit) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return a.index < b.index
}

// topK keeps the k best hits seen so far. The root is the worst kept hit.
type topK struct {
	k    int
	hits []hit
}

func newTopK(k int) *topK {
	return &topK{k: k, hits: make([]hit, 0, k)}
}

func (t *topK) Len() int           { return len(t.hits) }
func (t *topK) Less(i, j int) bool { return better(t.hits[j], t.hits[i]) }
func (t *topK) Swap(i, j int)      { t.hits[i], t.hits[j] = t.hits[j], t.hits[i] }
func (t *topK) Push(x any)         { t.hits = append(t.hits, x.(hit)) }

func (t *topK) Pop() any {
	n := len(t.hits)
	h := t.hits[n-1]
	t.hits = t.hits[:n-1]
	return h
}

func (t *topK) offer(h hit) {
	if len(t.hits) < t.k {
		heap.Push(t, h)
		return
	}
	if better(h, t.hits[0]) {
		t.hits[0] = h
		heap.Fix(t, 0)
	}
}
