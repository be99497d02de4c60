package ranking

import "math"

// CosineSimilarity returns the cosine of the angle between a and b, clamped to [-1, 1].
// Zero magnitude on either side yields 0. Callers guarantee equal lengths.
func CosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	// single sqrt: sim(q, q) is exactly 1
	s := dot / math.Sqrt(na*nb)
	return max(-1, min(1, s))
}
