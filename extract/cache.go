package extract

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// resultCache memoizes extraction results in memory and, when a directory is
// configured, on disk. Keys are content addressed so a changed model or
// report text never serves a stale result.
type resultCache struct {
	mu      sync.RWMutex
	m       map[string]Report
	dir     string
	modelID string
}

func newResultCache(dir, modelID string) *resultCache {
	if dir != "" {
		_ = os.MkdirAll(filepath.Clean(dir), 0o755)
	}
	return &resultCache{m: make(map[string]Report), dir: dir, modelID: modelID}
}

func (c *resultCache) key(text string) string {
	h := sha1.Sum([]byte(c.modelID + "|" + text))
	return hex.EncodeToString(h[:])
}

func (c *resultCache) load(key string) (Report, bool, error) {
	c.mu.RLock()
	r, ok := c.m[key]
	c.mu.RUnlock()
	if ok {
		return r, true, nil
	}
	if c.dir == "" {
		return Report{}, false, nil
	}
	path := filepath.Join(c.dir, key+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Report{}, false, nil
		}
		return Report{}, false, err
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return Report{}, false, err
	}
	c.mu.Lock()
	c.m[key] = report
	c.mu.Unlock()
	return report, true, nil
}

func (c *resultCache) save(key string, r Report) error {
	c.mu.Lock()
	c.m[key] = r
	c.mu.Unlock()
	if c.dir == "" {
		return nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	path := filepath.Join(c.dir, key+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
