package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	assert.Equal(t, DefaultFuzzyCutoff, cfg.FuzzyCutoff)
	assert.Equal(t, DefaultTolerance, cfg.Tolerance)
	assert.Equal(t, "data/reference_ranges.json", cfg.CatalogPath)
	assert.Equal(t, "data/aliases.json", cfg.AliasPath)
	assert.Equal(t, "gemini-2.5-flash-lite", cfg.GeminiModel)
	assert.Equal(t, "cache", cfg.CacheDir)
}

func TestConfigClamps(t *testing.T) {
	cfg := Config{FuzzyCutoff: 250, Tolerance: 0.9}
	cfg.ApplyDefaults()
	assert.Equal(t, 100, cfg.FuzzyCutoff)
	assert.Equal(t, 0.5, cfg.Tolerance)

	cfg = Config{FuzzyCutoff: -3, Tolerance: -0.1}
	cfg.ApplyDefaults()
	assert.Equal(t, DefaultFuzzyCutoff, cfg.FuzzyCutoff)
	assert.Equal(t, DefaultTolerance, cfg.Tolerance)
}

func TestConfigSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	in := Config{FuzzyCutoff: 92, Tolerance: 0.2, GeminiModel: "gemini-2.5-pro"}
	require.NoError(t, SaveConfig(path, in))

	out, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 92, out.FuzzyCutoff)
	assert.Equal(t, 0.2, out.Tolerance)
	assert.Equal(t, "gemini-2.5-pro", out.GeminiModel)
	// Defaults fill the fields the saved config left empty.
	assert.Equal(t, "data/aliases.json", out.AliasPath)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultFuzzyCutoff, cfg.FuzzyCutoff)
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigClone(t *testing.T) {
	cfg := Config{FuzzyCutoff: 90, CatalogPath: "x.json"}
	clone := cfg.Clone()
	clone.CatalogPath = "y.json"
	assert.Equal(t, "x.json", cfg.CatalogPath)
}
