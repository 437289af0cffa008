// Package resolve maps raw country strings onto a closed vocabulary through
// an ordered, short-circuiting chain of tests. Every result carries the
// Method that produced it so the mapping can be audited without re-running it.
package resolve

import (
	"github.com/hazyhaar/coo-registry/pkg/vocab"
)

// Record is the resolution of one raw value. Resolved is always a member of
// the vocabulary the Resolver was built with.
type Record struct {
	Raw          Value  `json:"raw_value"`
	FirstSegment Value  `json:"first_segment"`
	Resolved     string `json:"resolved_value"`
	Method       Method `json:"method"`
}

// Resolver runs the matching chain against three read-only stores. It holds
// no mutable state and is safe for concurrent use.
type Resolver struct {
	vocab    *vocab.Vocabulary
	aliases  *vocab.AliasIndex
	regional *vocab.RegionalSet
}

// New builds a Resolver. The alias index must have been validated against v.
func New(v *vocab.Vocabulary, a *vocab.AliasIndex, r *vocab.RegionalSet) (*Resolver, error) {
	switch {
	case v == nil:
		return nil, &vocab.ConfigError{Source: "resolver", Err: errMissing("vocabulary")}
	case a == nil:
		return nil, &vocab.ConfigError{Source: "resolver", Err: errMissing("alias index")}
	case r == nil:
		return nil, &vocab.ConfigError{Source: "resolver", Err: errMissing("regional set")}
	case a.Vocabulary() != v:
		return nil, &vocab.ConfigError{Source: "resolver", Err: errForeignAliases}
	}
	return &Resolver{vocab: v, aliases: a, regional: r}, nil
}

// FromBundle builds a Resolver over a loaded bundle.
func FromBundle(b *vocab.Bundle) (*Resolver, error) {
	return New(b.Vocabulary, b.Aliases, b.Regional)
}

// Unknown returns the sentinel every unresolved value maps to.
func (r *Resolver) Unknown() string { return r.vocab.Unknown() }

// ResolveString resolves a present string.
func (r *Resolver) ResolveString(s string) Record {
	return r.Resolve(Of(s))
}

// Resolve runs the chain on raw. The first test that succeeds decides both
// the resolved identifier and the method; later tests are not attempted.
func (r *Resolver) Resolve(raw Value) Record {
	rec := Record{Raw: raw, Resolved: r.vocab.Unknown(), Method: MethodNull}
	if !raw.Valid || vocab.NormalizeForComparison(raw.Text) == "" {
		return rec
	}

	// Only the first segment of a compound field is ever consulted.
	segment := vocab.SplitFirstSegment(raw.Text)
	rec.FirstSegment = Of(segment)
	key := vocab.NormalizeForComparison(segment)

	if r.regional.Contains(key) {
		rec.Method = MethodRegional
		return rec
	}
	if id, ok := r.vocab.Lookup(key); ok {
		rec.Resolved, rec.Method = id, MethodExact
		return rec
	}
	if id, ok := r.aliases.Lookup(key); ok {
		rec.Resolved, rec.Method = id, MethodAlias
		return rec
	}

	if stripped := vocab.StripKnownPrefixes(key); stripped != key {
		if id, ok := r.vocab.Lookup(stripped); ok {
			rec.Resolved, rec.Method = id, MethodNormalised
			return rec
		}
		if id, ok := r.aliases.Lookup(stripped); ok {
			rec.Resolved, rec.Method = id, MethodNormalised
			return rec
		}
	}

	rec.Method = MethodNoMatch
	return rec
}
