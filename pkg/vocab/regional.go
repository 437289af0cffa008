package vocab

import "sort"

// DefaultRegionalTerms are regions, continents and placeholders that never
// name a single country.
var DefaultRegionalTerms = []string{
	"asia", "africa", "europe", "south america", "north america",
	"central america", "middle east", "oceania", "antarctica",
	"caribbean", "west africa", "east africa", "southeast asia",
	"south asia", "north africa", "sub-saharan africa", "latin america",
	"global", "worldwide", "international", "various", "multiple",
	"unknown", "other", "n/a", "na", "none", "not applicable",
	"not specified", "unspecified",
}

// RegionalSet is a case-insensitive set of regional terms.
type RegionalSet struct {
	terms map[string]struct{}
}

// NewRegionalSet builds the set from terms; blank terms are ignored.
func NewRegionalSet(terms []string) *RegionalSet {
	r := &RegionalSet{terms: make(map[string]struct{}, len(terms))}
	for _, t := range terms {
		if key := NormalizeForComparison(t); key != "" {
			r.terms[key] = struct{}{}
		}
	}
	return r
}

// Contains reports whether s is a regional term.
func (r *RegionalSet) Contains(s string) bool {
	_, ok := r.terms[NormalizeForComparison(s)]
	return ok
}

// Len returns the number of terms.
func (r *RegionalSet) Len() int { return len(r.terms) }

// Terms returns the folded terms, sorted.
func (r *RegionalSet) Terms() []string {
	out := make([]string, 0, len(r.terms))
	for t := range r.terms {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
