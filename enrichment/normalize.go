package enrichment

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeIdentifier applies NFKC normalization, strips control characters
// and surrounding whitespace. Full-width input such as "ＢＲＣＡ１" becomes "BRCA1".
func NormalizeIdentifier(id string) string {
	normed := norm.NFKC.String(id)
	normed = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, normed)
	return strings.TrimSpace(normed)
}

// UniqueIdentifiers normalizes ids, drops blanks and removes duplicates.
// The first occurrence of each identifier is kept.
func UniqueIdentifiers(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		normalized := NormalizeIdentifier(id)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}
