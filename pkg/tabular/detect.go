package tabular

import (
	"fmt"
	"log/slog"
	"strings"
)

// columnKeywords mark headers likely to hold country-of-origin data.
var columnKeywords = []string{"country", "coo", "origin", "provenance"}

// DetectColumn picks the country column from a header. With several
// candidates the first wins and a warning is logged.
func DetectColumn(header []string) (string, error) {
	var candidates []string
	for _, h := range header {
		lower := strings.ToLower(h)
		for _, kw := range columnKeywords {
			if strings.Contains(lower, kw) {
				candidates = append(candidates, h)
				break
			}
		}
	}

	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("could not auto-detect country column, specify one with --col; available columns: %s",
			strings.Join(header, ", "))
	case 1:
		return candidates[0], nil
	default:
		slog.Warn("multiple country-like columns found, using the first; override with --col",
			"candidates", candidates, "chosen", candidates[0])
		return candidates[0], nil
	}
}
