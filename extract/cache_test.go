package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() Report {
	return Report{
		Metadata: Metadata{ReportDate: "2026-03-01", Lab: "City Lab"},
		Tests: []TestResult{
			{TestName: "Hemoglobin", Value: 135, Unit: "g/L", RefRange: "120-150"},
			{TestName: "Glucose", Value: 98.5, Unit: "mg/dL"},
		},
	}
}

func TestCacheKeyStability(t *testing.T) {
	c := newResultCache("", "gemini-2.5-flash-lite")

	k1 := c.key("report text")
	k2 := c.key("report text")
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 40)

	// Same text under a different model must not collide.
	other := newResultCache("", "gemini-2.5-pro")
	assert.NotEqual(t, k1, other.key("report text"))

	assert.NotEqual(t, k1, c.key("different text"))
}

func TestCacheMemoryRoundTrip(t *testing.T) {
	c := newResultCache("", "m")
	key := c.key("text")

	_, ok, err := c.load(key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.save(key, sampleReport()))
	got, ok, err := c.load(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleReport(), got)
}

func TestCacheDiskRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := newResultCache(dir, "m")
	key := c.key("text")
	require.NoError(t, c.save(key, sampleReport()))

	// A fresh cache over the same directory reads the persisted entry.
	c2 := newResultCache(dir, "m")
	got, ok, err := c2.load(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleReport(), got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, key+".json", entries[0].Name())
}

func TestCacheCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c := newResultCache(dir, "m")
	key := c.key("text")
	require.NoError(t, os.WriteFile(filepath.Join(dir, key+".json"), []byte("{broken"), 0o644))

	_, _, err := c.load(key)
	assert.Error(t, err)
}
