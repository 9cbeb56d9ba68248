// Package score holds the pure scoring functions of the match engine.
// Every score is a percentage in 0..100.
package score

import "math"

// Cosine returns the cosine similarity of a and b in [-1, 1].
// Returns 0 when the lengths differ or either vector has zero magnitude.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
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
	c := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// float error can push |c| marginally past 1
	return math.Max(-1, math.Min(1, c))
}

// CosinePercent maps a cosine similarity to 0..100. Negative similarity carries
// no meaning for item matching and clamps to 0.
func CosinePercent(c float64) int {
	return clampPercent(math.Round(c * 100))
}

// Normalize scales v to unit L2 length in place and returns it.
// A zero vector is returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := 1 / math.Sqrt(sum)
	for i, x := range v {
		v[i] = float32(float64(x) * inv)
	}
	return v
}

func clampPercent(f float64) int {
	switch {
	case math.IsNaN(f), f <= 0:
		return 0
	case f >= 100:
		return 100
	default:
		return int(f)
	}
}
