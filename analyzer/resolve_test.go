package analyzer

import (
	"testing"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *Catalog {
	return NewCatalog([]Category{
		{
			Name: "Panel",
			Tests: []CanonicalTest{
				{Name: "Hemoglobin", Units: "g/L", Min: "120", Max: "150"},
				{Name: "Glucose", Units: "mg/dL", HealthyValue: "70-110"},
				{Name: "ALT", Units: "U/L", HealthyValue: "<35"},
				{Name: "Blood Type"},
			},
		},
	})
}

func testAliases() AliasTable {
	return newAliasTable(map[string]string{
		"haemoglobin": "Hemoglobin",
		"hgb":         "Hemoglobin",
		"blood sugar": "Glucose",
		"sgpt":        "ALT",
		"old marker":  "Retired Test",
	})
}

func TestResolveExact(t *testing.T) {
	r := NewResolver(testCatalog(), testAliases(), 0)

	res := r.Resolve("Hemoglobin")
	assert.Equal(t, MatchExact, res.Confidence)
	assert.Equal(t, "Hemoglobin", res.Canonical)

	res = r.Resolve("  glucose ")
	assert.Equal(t, MatchExact, res.Confidence)
	assert.Equal(t, "Glucose", res.Canonical)
}

func TestResolveAlias(t *testing.T) {
	r := NewResolver(testCatalog(), testAliases(), 0)

	res := r.Resolve("HGB")
	assert.Equal(t, MatchAlias, res.Confidence)
	assert.Equal(t, "Hemoglobin", res.Canonical)

	res = r.Resolve("Blood Sugar")
	assert.Equal(t, MatchAlias, res.Confidence)
	assert.Equal(t, "Glucose", res.Canonical)
}

func TestResolveFuzzy(t *testing.T) {
	r := NewResolver(testCatalog(), testAliases(), 0)

	// Not an exact match, not an alias, but close enough in spelling.
	res := r.Resolve("Hemoglobine")
	require.Equal(t, MatchFuzzy, res.Confidence)
	assert.Equal(t, "Hemoglobin", res.Canonical)
	assert.GreaterOrEqual(t, res.Score, r.Cutoff())
}

func TestResolvePrecedence(t *testing.T) {
	// An alias spelled like a canonical name must hit the exact tier first.
	catalog := testCatalog()
	aliases := newAliasTable(map[string]string{"glucose": "ALT"})
	r := NewResolver(catalog, aliases, 0)

	res := r.Resolve("Glucose")
	assert.Equal(t, MatchExact, res.Confidence)
	assert.Equal(t, "Glucose", res.Canonical)
}

func TestResolveNone(t *testing.T) {
	r := NewResolver(testCatalog(), testAliases(), 0)

	res := r.Resolve("Erythrocyte Sedimentation Rate")
	assert.Equal(t, MatchNone, res.Confidence)
	assert.False(t, res.Resolved())

	res = r.Resolve("")
	assert.Equal(t, MatchNone, res.Confidence)

	res = r.Resolve("   ")
	assert.Equal(t, MatchNone, res.Confidence)
}

func TestResolveOrphanAlias(t *testing.T) {
	// Aliases are not validated against the catalog: the resolver reports
	// the configured target even when no such test exists.
	r := NewResolver(testCatalog(), testAliases(), 0)

	res := r.Resolve("old marker")
	assert.Equal(t, MatchAlias, res.Confidence)
	assert.Equal(t, "Retired Test", res.Canonical)
}

func TestResolveCutoff(t *testing.T) {
	catalog := testCatalog()

	strict := NewResolver(catalog, nil, 100)
	assert.Equal(t, MatchNone, strict.Resolve("Hemoglobine").Confidence)

	loose := NewResolver(catalog, nil, 1)
	res := loose.Resolve("glu")
	assert.Equal(t, MatchFuzzy, res.Confidence)
	assert.Equal(t, "Glucose", res.Canonical)
}

func TestResolveCutoffBoundary(t *testing.T) {
	// A score exactly at the cutoff resolves; one point above it does not.
	catalog := testCatalog()
	score := fuzzy.TokenSortRatio(normalizeName("Hemoglobine"), "Hemoglobin")
	require.Greater(t, score, 0)
	require.Less(t, score, 100)

	atCutoff := NewResolver(catalog, nil, score)
	res := atCutoff.Resolve("Hemoglobine")
	assert.Equal(t, MatchFuzzy, res.Confidence)
	assert.Equal(t, "Hemoglobin", res.Canonical)
	assert.Equal(t, score, res.Score)

	aboveCutoff := NewResolver(catalog, nil, score+1)
	assert.Equal(t, MatchNone, aboveCutoff.Resolve("Hemoglobine").Confidence)
}

func TestResolveTieBreak(t *testing.T) {
	// Two targets scoring identically: the first-listed one wins.
	catalog := NewCatalog([]Category{
		{
			Name: "Panel",
			Tests: []CanonicalTest{
				{Name: "Test Alpha"},
				{Name: "Test Gamma"},
			},
		},
	})
	r := NewResolver(catalog, nil, 1)

	res := r.Resolve("Test")
	require.True(t, res.Resolved())
	assert.Equal(t, "Test Alpha", res.Canonical)
}

func TestDefaultCutoff(t *testing.T) {
	r := NewResolver(testCatalog(), nil, 0)
	assert.Equal(t, DefaultFuzzyCutoff, r.Cutoff())

	r = NewResolver(testCatalog(), nil, 92)
	assert.Equal(t, 92, r.Cutoff())
}
