package text

import (
	"sort"
	"strings"
)

// DefaultStopwords are removed from descriptions before embedding.
// Multi-word entries are matched as whole phrases.
var DefaultStopwords = []string{
	"i have a", "i have an", "i have", "i lost a", "i lost an", "i lost my", "i lost",
	"there is a", "there is an", "there is", "there are", "it is a", "it is an", "it is",
	"it has a", "it has", "this is a", "this is",
	"a", "an", "the", "is", "are", "was", "were", "be", "been", "am",
	"i", "my", "it", "its", "this", "that", "these", "those",
	"of", "and", "or", "with", "in", "on", "at", "to", "for", "from", "by",
	"has", "have", "had", "some", "very",
}

// Normalizer turns raw flattened text into the token string that gets embedded.
type Normalizer struct {
	phrases [][]string // longest first
	words   map[string]bool
	booster Booster
}

// NewNormalizer creates a normalizer. A nil booster disables boosting.
func NewNormalizer(stopwords []string, booster Booster) *Normalizer {
	if booster == nil {
		booster = NopBooster{}
	}
	n := &Normalizer{words: make(map[string]bool), booster: booster}
	for _, sw := range stopwords {
		toks := Tokens(sw)
		switch len(toks) {
		case 0:
		case 1:
			n.words[toks[0]] = true
		default:
			n.phrases = append(n.phrases, toks)
		}
	}
	sort.SliceStable(n.phrases, func(i, j int) bool {
		return len(n.phrases[i]) > len(n.phrases[j])
	})
	return n
}

// NewDefaultNormalizer uses DefaultStopwords and a KeywordBooster over DefaultKeywords.
func NewDefaultNormalizer() *Normalizer {
	return NewNormalizer(DefaultStopwords, NewKeywordBooster(DefaultKeywords))
}

// Normalize cleans s, strips stopwords and applies the booster.
// Returns "" when nothing meaningful is left.
func (n *Normalizer) Normalize(s string) string {
	toks := n.StripStopwords(Tokens(s))
	if len(toks) == 0 {
		return ""
	}
	return strings.Join(n.booster.Boost(toks), " ")
}

// StripStopwords removes stopword phrases and words using whole-token matching.
func (n *Normalizer) StripStopwords(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		if l := n.phraseAt(tokens, i); l > 0 {
			i += l
			continue
		}
		if !n.words[tokens[i]] {
			out = append(out, tokens[i])
		}
		i++
	}
	return out
}

func (n *Normalizer) phraseAt(tokens []string, i int) int {
	for _, p := range n.phrases {
		if i+len(p) > len(tokens) {
			continue
		}
		match := true
		for j, w := range p {
			if tokens[i+j] != w {
				match = false
				break
			}
		}
		if match {
			return len(p)
		}
	}
	return 0
}
