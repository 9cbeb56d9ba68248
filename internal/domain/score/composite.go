package score

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/foundmatch/internal/domain"
)

// DefaultThreshold is the minimum composite score that gets persisted.
const DefaultThreshold = 10

// Weights blends the component scores into the composite.
//
// Product copy mentions a 70/30 split; the engine has always used 0.6/0.3/0.1.
// The defaults keep the engine's values until product confirms otherwise.
type Weights struct {
	Detail   float64
	Location float64
	Date     float64
}

// DefaultWeights returns the engine's weights.
func DefaultWeights() Weights {
	return Weights{Detail: 0.6, Location: 0.3, Date: 0.1}
}

// Validate checks that weights are non-negative and sum to 1.
func (w Weights) Validate() error {
	if w.Detail < 0 || w.Location < 0 || w.Date < 0 {
		return fmt.Errorf("weights must be non-negative: %w", domain.ErrInvalidInput)
	}
	if sum := w.Detail + w.Location + w.Date; math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("weights must sum to 1, got %.4f: %w", sum, domain.ErrInvalidInput)
	}
	return nil
}

// Composite returns round(weighted sum) clamped to 0..100.
func (w Weights) Composite(c domain.ComponentScores) int {
	f := float64(c.Detail)*w.Detail + float64(c.Location)*w.Location + float64(c.Date)*w.Date
	return clampPercent(math.Round(f))
}
