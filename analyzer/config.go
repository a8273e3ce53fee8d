package analyzer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const defaultConfigFile = "config.json"

// Config aggregates runtime settings persisted to config.json.
type Config struct {
	FuzzyCutoff int     `json:"fuzzyCutoff"`
	Tolerance   float64 `json:"tolerance"`
	CatalogPath string  `json:"catalogPath"`
	AliasPath   string  `json:"aliasPath"`
	GeminiModel string  `json:"geminiModel"`
	CacheDir    string  `json:"cacheDir"`
}

// Clone creates a copy of the configuration so callers can mutate safely.
func (c Config) Clone() Config {
	buf, _ := json.Marshal(c)
	var out Config
	_ = json.Unmarshal(buf, &out)
	return out
}

// ApplyDefaults populates zero values and clamps out-of-range settings.
func (c *Config) ApplyDefaults() {
	if c.FuzzyCutoff <= 0 {
		c.FuzzyCutoff = DefaultFuzzyCutoff
	}
	if c.FuzzyCutoff > 100 {
		c.FuzzyCutoff = 100
	}
	if c.Tolerance <= 0 {
		c.Tolerance = DefaultTolerance
	}
	if c.Tolerance > 0.5 {
		c.Tolerance = 0.5
	}
	if c.CatalogPath == "" {
		c.CatalogPath = "data/reference_ranges.json"
	}
	if c.AliasPath == "" {
		c.AliasPath = "data/aliases.json"
	}
	if c.GeminiModel == "" {
		c.GeminiModel = "gemini-2.5-flash-lite"
	}
	if c.CacheDir == "" {
		c.CacheDir = "cache"
	}
}

// LoadConfig loads configuration from the given path or the default
// config.json. A missing file yields the defaults without error.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = defaultConfigFile
	}
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// SaveConfig persists configuration to disk via a temp-file rename.
func SaveConfig(path string, cfg Config) error {
	if path == "" {
		path = defaultConfigFile
	}
	tmp := path + ".tmp"
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	cfg.ApplyDefaults()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}
