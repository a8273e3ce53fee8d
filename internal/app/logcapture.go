package app

import (
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/data/binding"
)

// logCapture keeps the most recent log lines and mirrors them into a string
// binding once the UI attaches one.
type logCapture struct {
	mu    sync.Mutex
	lines []string
	limit int
	bind  binding.String
}

func newLogCapture(limit int) *logCapture {
	if limit <= 0 {
		limit = 200
	}
	return &logCapture{limit: limit}
}

func (c *logCapture) attach(b binding.String) {
	c.mu.Lock()
	c.bind = b
	text := strings.Join(c.lines, "")
	c.mu.Unlock()
	if b != nil {
		_ = b.Set(text)
	}
}

func (c *logCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	c.lines = append(c.lines, string(p))
	if len(c.lines) > c.limit {
		c.lines = c.lines[len(c.lines)-c.limit:]
	}
	b := c.bind
	text := strings.Join(c.lines, "")
	c.mu.Unlock()

	if b != nil {
		fyne.Do(func() { _ = b.Set(text) })
	}
	return len(p), nil
}
