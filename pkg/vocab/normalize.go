package vocab

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// segmentDelimiters separate countries inside a compound field.
const segmentDelimiters = ",;/"

// knownPrefixes are tried in order; at most one is removed.
var knownPrefixes = []string{
	"the ",
	"republic of ",
	"islamic republic of ",
	"democratic ",
	"people's ",
	"federated states of ",
}

// NormalizeForComparison trims surrounding whitespace and case-folds s.
// Whitespace-only input yields "".
func NormalizeForComparison(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// cases.Caser is stateful, so each call gets its own.
	return cases.Fold().String(norm.NFC.String(s))
}

// SplitFirstSegment returns the trimmed text before the first ',', ';' or '/'.
// Without a delimiter, s is returned unchanged.
func SplitFirstSegment(s string) string {
	i := strings.IndexAny(s, segmentDelimiters)
	if i < 0 {
		return s
	}
	return strings.TrimSpace(s[:i])
}

// StripKnownPrefixes removes the first matching honorific or positional
// prefix (case-insensitive). Only one prefix is ever removed.
func StripKnownPrefixes(s string) string {
	for _, p := range knownPrefixes {
		if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
			return strings.TrimSpace(s[len(p):])
		}
	}
	return s
}
