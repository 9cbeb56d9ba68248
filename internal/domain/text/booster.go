package text

// Booster reweights a token sequence before it is embedded.
type Booster interface {
	Boost(tokens []string) []string
}

// DefaultKeywords are identifying terms worth extra weight in the pooled embedding.
var DefaultKeywords = []string{
	"imei", "serial", "model",
	"black", "white", "silver", "gold", "grey", "gray", "red", "blue",
	"green", "yellow", "pink", "purple", "brown", "orange",
	"pro", "mini", "max", "plus",
}

// KeywordBooster appends every listed keyword present in the text a second time.
// Duplicating a token increases its share of a mean-pooled embedding.
type KeywordBooster struct {
	keywords []string
}

// NewKeywordBooster creates a booster for the given keywords (lowercase, single tokens).
func NewKeywordBooster(keywords []string) *KeywordBooster {
	seen := make(map[string]bool, len(keywords))
	kw := make([]string, 0, len(keywords))
	for _, k := range keywords {
		c := Clean(k)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		kw = append(kw, c)
	}
	return &KeywordBooster{keywords: kw}
}

// Boost returns tokens followed by each matched keyword once, in keyword-list order.
func (b *KeywordBooster) Boost(tokens []string) []string {
	present := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		present[t] = true
	}
	out := append([]string(nil), tokens...)
	for _, k := range b.keywords {
		if present[k] {
			out = append(out, k)
		}
	}
	return out
}

// NopBooster leaves tokens unchanged.
type NopBooster struct{}

// Boost returns tokens as is.
func (NopBooster) Boost(tokens []string) []string { return tokens }
