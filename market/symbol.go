package market

import (
	"regexp"
	"strings"
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9._\-]{0,19}$`)

// NormalizeSymbol trims and uppercases a symbol as received from a caller.
// All symbols are stored and compared in this form.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ValidSymbol reports whether s, already normalized, is an acceptable symbol.
func ValidSymbol(s string) bool {
	return symbolPattern.MatchString(s)
}

// NormalizeSymbols normalizes, drops empties and deduplicates while keeping
// first-seen order.
func NormalizeSymbols(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = NormalizeSymbol(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
