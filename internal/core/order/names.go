package order

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MaxSuggestions caps autocomplete results.
const MaxSuggestions = 20

// NormalizeProductName trims surrounding whitespace and converts the name to
// NFC so that visually identical names compare equal. Identity stays
// case-sensitive.
func NormalizeProductName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// MatchNames returns up to limit candidates containing partial, compared with
// Unicode case folding. Duplicates are dropped and candidate order is kept.
func MatchNames(candidates []string, partial string, limit int) []string {
	// A Caser is stateful, so each call gets its own.
	fold := cases.Fold()
	needle := fold.String(NormalizeProductName(partial))

	seen := make(map[string]struct{}, len(candidates))
	matches := make([]string, 0, limit)
	for _, c := range candidates {
		if len(matches) >= limit {
			break
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		if strings.Contains(fold.String(c), needle) {
			matches = append(matches, c)
		}
	}
	return matches
}
