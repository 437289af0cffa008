package resolve

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/coo-registry/pkg/vocab"
)

var testIdentifiers = []string{
	"France", "Norway", "United States", "US", "USA", "Viet Nam",
	"Russian Federation", "Gambia", "Korea, Republic of", "XYZ", "Unknown",
}

var testAliases = map[string]string{
	"vietnam":         "Viet Nam",
	"russia":          "Russian Federation",
	"korea":           "Korea, Republic of",
	"south korea":     "Korea, Republic of",
	"republic of xyz": "XYZ",
	"france":          "Norway", // deliberately overlaps an exact identifier
}

func newTestBundle(t *testing.T) *vocab.Bundle {
	t.Helper()
	b, err := vocab.NewBundle(&vocab.Manifest{ID: "test", Version: "1"}, testIdentifiers, testAliases, nil)
	require.NoError(t, err)
	return b
}

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := FromBundle(newTestBundle(t))
	require.NoError(t, err)
	return r
}

func TestResolve(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		name     string
		raw      Value
		segment  Value
		resolved string
		method   Method
	}{
		{"null", Null, Null, "Unknown", MethodNull},
		{"empty", Of(""), Null, "Unknown", MethodNull},
		{"whitespace", Of("   "), Null, "Unknown", MethodNull},
		{"NaN", Coerce(math.NaN()), Null, "Unknown", MethodNull},
		{"regional", Of("Asia"), Of("Asia"), "Unknown", MethodRegional},
		{"regional placeholder", Of(" Global "), Of(" Global "), "Unknown", MethodRegional},
		{"slash placeholder is split", Of("N/A"), Of("N"), "Unknown", MethodNoMatch},
		{"regional first segment wins", Of("Asia, France"), Of("Asia"), "Unknown", MethodRegional},
		{"exact keeps casing", Of("united states"), Of("united states"), "United States", MethodExact},
		{"exact code", Of("usa"), Of("usa"), "USA", MethodExact},
		{"exact beats alias", Of("France"), Of("France"), "France", MethodExact},
		{"alias", Of("Vietnam"), Of("Vietnam"), "Viet Nam", MethodAlias},
		{"alias first segment", Of("Russia, Norway"), Of("Russia"), "Russian Federation", MethodAlias},
		{"alias slash", Of("South Korea/Japan"), Of("South Korea"), "Korea, Republic of", MethodAlias},
		{"normalised exact", Of("The Gambia"), Of("The Gambia"), "Gambia", MethodNormalised},
		{"normalised alias", Of("Republic of Korea"), Of("Republic of Korea"), "Korea, Republic of", MethodNormalised},
		{"normalised one layer", Of("the republic of xyz"), Of("the republic of xyz"), "XYZ", MethodNormalised},
		{"only one prefix stripped", Of("the the gambia"), Of("the the gambia"), "Unknown", MethodNoMatch},
		{"compound identifier is split", Of("Korea, Republic of"), Of("Korea"), "Korea, Republic of", MethodAlias},
		{"no match", Of("Narnia"), Of("Narnia"), "Unknown", MethodNoMatch},
		{"empty first segment", Of(", France"), Of(""), "Unknown", MethodNoMatch},
		{"sentinel is regional", Of("Unknown"), Of("Unknown"), "Unknown", MethodRegional},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := r.Resolve(tt.raw)
			assert.Equal(t, tt.raw, rec.Raw)
			assert.Equal(t, tt.segment, rec.FirstSegment)
			assert.Equal(t, tt.resolved, rec.Resolved)
			assert.Equal(t, tt.method, rec.Method)
		})
	}
}

func TestResolve_DeterministicAndClosed(t *testing.T) {
	b := newTestBundle(t)
	r, err := FromBundle(b)
	require.NoError(t, err)

	inputs := []string{
		"", " ", "France", "FRANCE", "france; norway", "Vietnam", "Narnia",
		"The Gambia", "republic of", "the ", "/", ";;", "Asia", "USA, Canada",
		"people's republic of xyz", "Ünited States", "12345",
	}
	for _, in := range inputs {
		first := r.ResolveString(in)
		second := r.ResolveString(in)
		assert.Equal(t, first, second, "resolution of %q must be deterministic", in)
		assert.True(t, b.Vocabulary.Contains(first.Resolved), "%q resolved outside vocabulary: %q", in, first.Resolved)
	}
}

func TestResolve_UnknownKeepsVocabularyCasing(t *testing.T) {
	b, err := vocab.NewBundle(nil, []string{"France", "UNKNOWN"}, nil, nil)
	require.NoError(t, err)
	r, err := FromBundle(b)
	require.NoError(t, err)

	assert.Equal(t, "UNKNOWN", r.ResolveString("Narnia").Resolved)
	assert.Equal(t, "UNKNOWN", r.Resolve(Null).Resolved)
}

func TestNew_Errors(t *testing.T) {
	b := newTestBundle(t)
	other, err := vocab.NewVocabulary([]string{"France", "Unknown"})
	require.NoError(t, err)

	tests := []struct {
		name string
		v    *vocab.Vocabulary
		a    *vocab.AliasIndex
		r    *vocab.RegionalSet
	}{
		{"nil vocabulary", nil, b.Aliases, b.Regional},
		{"nil aliases", b.Vocabulary, nil, b.Regional},
		{"nil regional", b.Vocabulary, b.Aliases, nil},
		{"foreign aliases", other, b.Aliases, b.Regional},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.v, tt.a, tt.r)
			require.Error(t, err)
			assert.True(t, errors.Is(err, vocab.ErrConfig))
		})
	}
}
