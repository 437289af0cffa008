package resolve

import (
	"fmt"
	"io"
	"slices"
	"strings"
)

// Summary reports on a batch. It is derived from the records and never
// feeds back into resolution.
type Summary struct {
	Total        int            `json:"total"`
	Matched      int            `json:"matched_count"`
	Unknown      int            `json:"unknown_count"`
	MatchedPct   float64        `json:"matched_pct"`
	UnknownPct   float64        `json:"unknown_pct"`
	MethodCounts map[Method]int `json:"method_counts"`
}

func summarize(records []Record, unknown string) Summary {
	s := Summary{
		Total:        len(records),
		MethodCounts: make(map[Method]int, len(methodNames)),
	}
	for _, m := range Methods() {
		s.MethodCounts[m] = 0
	}
	for _, rec := range records {
		s.MethodCounts[rec.Method]++
		if rec.Resolved == unknown {
			s.Unknown++
		} else {
			s.Matched++
		}
	}
	if s.Total > 0 {
		s.MatchedPct = 100 * float64(s.Matched) / float64(s.Total)
		s.UnknownPct = 100 * float64(s.Unknown) / float64(s.Total)
	}
	return s
}

// MethodBreakdown returns methods with a non-zero count, most frequent first.
// Ties keep chain order.
func (s Summary) MethodBreakdown() []Method {
	var out []Method
	for _, m := range Methods() {
		if s.MethodCounts[m] > 0 {
			out = append(out, m)
		}
	}
	slices.SortStableFunc(out, func(a, b Method) int {
		return s.MethodCounts[b] - s.MethodCounts[a]
	})
	return out
}

// WriteReport prints the human-readable validation summary. label names the
// output mode and rows, if positive, is the row count of a full-mode output.
func (res *BatchResult) WriteReport(w io.Writer, label string, rows int) error {
	s := res.Summary
	rule := strings.Repeat("=", 55)

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", rule)
	fmt.Fprintf(&b, "VALIDATION SUMMARY  [%s mode]\n", strings.ToUpper(label))
	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "  Total unique raw values : %6d\n", s.Total)
	fmt.Fprintf(&b, "  Successfully matched    : %6d (%.1f%%)\n", s.Matched, s.MatchedPct)
	fmt.Fprintf(&b, "  Mapped to 'Unknown'     : %6d (%.1f%%)\n", s.Unknown, s.UnknownPct)
	if rows > 0 {
		fmt.Fprintf(&b, "  Total rows in output    : %6d\n", rows)
	}
	fmt.Fprintf(&b, "\n  Match method breakdown:\n")
	for _, m := range s.MethodBreakdown() {
		fmt.Fprintf(&b, "    %-20s: %5d\n", m, s.MethodCounts[m])
	}

	if s.Unknown > 0 {
		fmt.Fprintf(&b, "\n  Values mapped to 'Unknown':\n")
		for _, rec := range res.Records {
			if res.IsUnknown(rec) {
				fmt.Fprintf(&b, "    - %s\n", rec.Raw)
			}
		}
	}
	fmt.Fprintf(&b, "%s\n", rule)

	_, err := io.WriteString(w, b.String())
	return err
}
