package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalogOrderAndDuplicates(t *testing.T) {
	catalog := NewCatalog([]Category{
		{Name: "A", Tests: []CanonicalTest{
			{Name: "First", Min: "1", Max: "2"},
			{Name: "Second"},
		}},
		{Name: "B", Tests: []CanonicalTest{
			{Name: "first", Min: "9", Max: "10"},
			{Name: "Third"},
		}},
	})

	assert.Equal(t, []string{"First", "Second", "Third"}, catalog.Names())
	assert.Equal(t, 3, catalog.Len())

	// Duplicate keeps the first definition.
	got, ok := catalog.Lookup("FIRST")
	require.True(t, ok)
	assert.Equal(t, "1", got.Min)
}

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()
	require.Greater(t, catalog.Len(), 20)

	hb, ok := catalog.Lookup("Hemoglobin")
	require.True(t, ok)
	assert.Equal(t, "g/L", hb.Units)

	// Every default alias must point at a test the default catalog has.
	for alias, target := range DefaultAliases() {
		_, ok := catalog.Lookup(target)
		assert.True(t, ok, "alias %q points at missing test %q", alias, target)
	}
}

func TestLoadCatalog(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		catalog, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.json"))
		require.NoError(t, err)
		assert.Equal(t, DefaultCatalog().Names(), catalog.Names())
	})

	t.Run("reads categories from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.json")
		payload := `[{"name":"Panel","tests":[{"name":"Iron","units":"umol/L","min":"10","max":"30"}]}]`
		require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

		catalog, err := LoadCatalog(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"Iron"}, catalog.Names())
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		_, err := LoadCatalog(path)
		assert.Error(t, err)
	})

	t.Run("empty catalog is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.json")
		require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

		_, err := LoadCatalog(path)
		assert.Error(t, err)
	})
}

func TestLoadAliases(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		aliases, err := LoadAliases(filepath.Join(t.TempDir(), "nope.json"))
		require.NoError(t, err)
		got, ok := aliases.Lookup("haemoglobin")
		require.True(t, ok)
		assert.Equal(t, "Hemoglobin", got)
	})

	t.Run("keys are case folded", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "aliases.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"  HGB  ":"Hemoglobin"}`), 0o644))

		aliases, err := LoadAliases(path)
		require.NoError(t, err)
		got, ok := aliases.Lookup("hgb")
		require.True(t, ok)
		assert.Equal(t, "Hemoglobin", got)
	})
}

func TestEnsureFiles(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "data", "reference_ranges.json")
	aliasPath := filepath.Join(dir, "data", "aliases.json")

	require.NoError(t, EnsureCatalogFile(catalogPath))
	require.NoError(t, EnsureAliasFile(aliasPath))

	catalog, err := LoadCatalog(catalogPath)
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalog().Names(), catalog.Names())

	// Seeding again must not touch an existing file.
	require.NoError(t, os.WriteFile(aliasPath, []byte(`{"x":"Hemoglobin"}`), 0o644))
	require.NoError(t, EnsureAliasFile(aliasPath))
	aliases, err := LoadAliases(aliasPath)
	require.NoError(t, err)
	assert.Len(t, aliases, 1)
}
