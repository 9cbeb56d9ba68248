// Package attribute turns free-form attribute sets into comparable text.
package attribute

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/foundmatch/internal/domain"
)

// Flatten collects the values of v into one space-separated string.
// Map keys are discarded; nested maps and lists are walked recursively.
// Keys are visited in sorted order so equal sets always flatten identically.
// nil and empty input yield "".
func Flatten(v any) string {
	var parts []string
	collect(v, &parts)
	return strings.Join(parts, " ")
}

func collect(v any, parts *[]string) {
	switch t := v.(type) {
	case nil:
	case string:
		if s := strings.TrimSpace(t); s != "" {
			*parts = append(*parts, s)
		}
	case domain.AttributeSet:
		collectMap(t, parts)
	case map[string]any:
		collectMap(t, parts)
	case map[string]string:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collect(t[k], parts)
		}
	case []any:
		for _, e := range t {
			collect(e, parts)
		}
	case []string:
		for _, e := range t {
			collect(e, parts)
		}
	case bool:
		*parts = append(*parts, strconv.FormatBool(t))
	case float64:
		*parts = append(*parts, strconv.FormatFloat(t, 'f', -1, 64))
	case int:
		*parts = append(*parts, strconv.Itoa(t))
	case int64:
		*parts = append(*parts, strconv.FormatInt(t, 10))
	default:
		*parts = append(*parts, fmt.Sprint(t))
	}
}

func collectMap(m map[string]any, parts *[]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		collect(m[k], parts)
	}
}
