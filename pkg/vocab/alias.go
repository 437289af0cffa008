package vocab

import (
	"errors"
	"sort"
)

// AliasIndex maps informal names to accepted identifiers. Every target is
// checked against the vocabulary when the index is built.
type AliasIndex struct {
	vocab   *Vocabulary
	targets map[string]string // normalized key -> canonical identifier
}

// NewAliasIndex validates aliases against v. All problems are reported
// together, each as a *ConfigError.
func NewAliasIndex(aliases map[string]string, v *Vocabulary) (*AliasIndex, error) {
	if v == nil {
		return nil, configErr("aliases", "", "no vocabulary to validate against")
	}

	// Sorted so that collisions and error order are reproducible.
	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	idx := &AliasIndex{vocab: v, targets: make(map[string]string, len(aliases))}
	var errs []error
	for _, raw := range keys {
		key := NormalizeForComparison(raw)
		if key == "" {
			errs = append(errs, configErr("aliases", raw, "empty alias key"))
			continue
		}
		target, ok := v.Lookup(aliases[raw])
		if !ok {
			errs = append(errs, configErr("aliases", raw, "target %q is not an accepted identifier", aliases[raw]))
			continue
		}
		if prev, dup := idx.targets[key]; dup && prev != target {
			errs = append(errs, configErr("aliases", raw, "conflicting targets %q and %q", prev, target))
			continue
		}
		idx.targets[key] = target
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return idx, nil
}

// Lookup returns the identifier an alias points to.
func (a *AliasIndex) Lookup(s string) (string, bool) {
	id, ok := a.targets[NormalizeForComparison(s)]
	return id, ok
}

// Vocabulary returns the store the index was validated against.
func (a *AliasIndex) Vocabulary() *Vocabulary { return a.vocab }

// Len returns the number of aliases.
func (a *AliasIndex) Len() int { return len(a.targets) }

// Entries returns a copy of the normalized alias table.
func (a *AliasIndex) Entries() map[string]string {
	out := make(map[string]string, len(a.targets))
	for k, v := range a.targets {
		out[k] = v
	}
	return out
}
