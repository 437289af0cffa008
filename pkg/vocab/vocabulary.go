package vocab

import (
	"log/slog"
	"strings"
)

// Unknown is the sentinel identifier every unresolved value maps to.
const Unknown = "Unknown"

// Vocabulary is the closed list of accepted identifiers. Lookups are
// case-insensitive; returned identifiers keep the casing of the source list.
// A Vocabulary is immutable after construction and safe for concurrent use.
type Vocabulary struct {
	entries []string          // source order, first occurrences only
	index   map[string]string // folded form -> canonical identifier
	unknown string
}

// NewVocabulary builds the store from ids. Duplicates after case-folding keep
// the first occurrence and are logged as a data-quality warning.
func NewVocabulary(ids []string) (*Vocabulary, error) {
	if len(ids) == 0 {
		return nil, configErr("vocabulary", "", "no accepted identifiers")
	}

	v := &Vocabulary{
		entries: make([]string, 0, len(ids)),
		index:   make(map[string]string, len(ids)),
	}

	var duplicates []string
	for i, id := range ids {
		key := NormalizeForComparison(id)
		if key == "" {
			return nil, configErr("vocabulary", "", "empty identifier at position %d", i)
		}
		if _, exists := v.index[key]; exists {
			duplicates = append(duplicates, id)
			continue
		}
		// Surrounding whitespace in the source list is not part of the identifier.
		canonical := strings.TrimSpace(id)
		v.index[key] = canonical
		v.entries = append(v.entries, canonical)
	}

	if len(duplicates) > 0 {
		slog.Warn("duplicate identifiers after case-folding, first occurrence kept",
			"count", len(duplicates), "identifiers", duplicates)
	}

	unknown, ok := v.index[NormalizeForComparison(Unknown)]
	if !ok {
		return nil, configErr("vocabulary", Unknown, "sentinel identifier missing")
	}
	v.unknown = unknown
	return v, nil
}

// Lookup returns the canonical identifier matching s case-insensitively.
func (v *Vocabulary) Lookup(s string) (string, bool) {
	id, ok := v.index[NormalizeForComparison(s)]
	return id, ok
}

// Contains reports whether s is an accepted identifier (case-insensitive).
func (v *Vocabulary) Contains(s string) bool {
	_, ok := v.Lookup(s)
	return ok
}

// Unknown returns the sentinel in the vocabulary's own casing.
func (v *Vocabulary) Unknown() string { return v.unknown }

// Len returns the number of distinct identifiers.
func (v *Vocabulary) Len() int { return len(v.entries) }

// Entries returns a copy of the identifiers in source order.
func (v *Vocabulary) Entries() []string {
	out := make([]string, len(v.entries))
	copy(out, v.entries)
	return out
}
