package matching

import (
	"fmt"
	"runtime"

	"github.com/kailas-cloud/foundmatch/internal/domain"
	"github.com/kailas-cloud/foundmatch/internal/domain/score"
	"github.com/kailas-cloud/foundmatch/internal/domain/text"
)

// Config tunes the engine. Zero values fall back to the defaults.
type Config struct {
	Weights    score.Weights
	Threshold  int
	Workers    int
	Normalizer *text.Normalizer
	Location   score.LocationScorer
}

// DefaultConfig returns the engine's stock tuning.
func DefaultConfig() Config {
	return Config{
		Weights:    score.DefaultWeights(),
		Threshold:  score.DefaultThreshold,
		Workers:    defaultWorkers(),
		Normalizer: text.NewDefaultNormalizer(),
		Location:   score.DefaultLocationScorer(),
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Weights == (score.Weights{}) {
		c.Weights = def.Weights
	}
	if c.Threshold == 0 {
		c.Threshold = def.Threshold
	}
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.Normalizer == nil {
		c.Normalizer = def.Normalizer
	}
	if c.Location == (score.LocationScorer{}) {
		c.Location = def.Location
	}
}

func (c *Config) validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.Threshold < 0 || c.Threshold > 100 {
		return fmt.Errorf("threshold must be within 0..100, got %d: %w", c.Threshold, domain.ErrInvalidInput)
	}
	return nil
}

func defaultWorkers() int {
	return min(runtime.GOMAXPROCS(0), 8)
}
