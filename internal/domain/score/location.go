package score

import (
	"math"

	"github.com/kailas-cloud/foundmatch/internal/domain/text"
)

// Location scoring defaults.
const (
	DefaultLocationTokenCap = 5
	DefaultPositionalBonus  = 15
)

// LocationScorer compares place names by token-set overlap.
// The second argument is capped to its first TokenCap tokens: one side is usually
// a short official label and the other free text.
type LocationScorer struct {
	TokenCap int
	Bonus    int
}

// DefaultLocationScorer returns the engine's location scorer.
func DefaultLocationScorer() LocationScorer {
	return LocationScorer{TokenCap: DefaultLocationTokenCap, Bonus: DefaultPositionalBonus}
}

// LocationSimilarity scores a against b with the default scorer.
func LocationSimilarity(a, b string) int {
	return DefaultLocationScorer().Score(a, b)
}

// Score returns Jaccard(tokens(a), first TokenCap tokens(b)) as 0..100, plus Bonus
// when both strings start with the same token, capped at 100.
func (s LocationScorer) Score(a, b string) int {
	ta := text.Tokens(a)
	tb := text.Tokens(b)
	if s.TokenCap > 0 && len(tb) > s.TokenCap {
		tb = tb[:s.TokenCap]
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	setA := toSet(ta)
	setB := toSet(tb)
	inter := 0
	for t := range setA {
		if setB[t] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter

	pct := float64(inter) / float64(union) * 100
	if ta[0] == tb[0] {
		pct += float64(s.Bonus)
	}
	return clampPercent(math.Round(pct))
}

func toSet(tokens []string) map[string]bool {
	m := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		m[t] = true
	}
	return m
}
