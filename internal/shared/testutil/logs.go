package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogEntry is one captured record with its attributes flattened into a map.
type LogEntry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogCapture is a slog.Handler that keeps every record in memory. Loggers
// derived through With share the capture, so component loggers built inside
// the code under test are seen as well.
type LogCapture struct {
	mu      *sync.Mutex
	entries *[]LogEntry
	attrs   []slog.Attr
	t       *testing.T
}

// NewTestLogger returns a logger writing into a fresh capture. Records are
// echoed through t.Logf so they show up with -v.
func NewTestLogger(t *testing.T) (*slog.Logger, *LogCapture) {
	c := &LogCapture{mu: &sync.Mutex{}, entries: &[]LogEntry{}, t: t}
	return slog.New(c), c
}

func (c *LogCapture) Enabled(context.Context, slog.Level) bool { return true }

func (c *LogCapture) Handle(_ context.Context, r slog.Record) error {
	e := LogEntry{Level: r.Level, Message: r.Message, Attrs: make(map[string]any, len(c.attrs)+r.NumAttrs())}
	for _, a := range c.attrs {
		e.Attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		e.Attrs[a.Key] = a.Value.Any()
		return true
	})

	c.mu.Lock()
	*c.entries = append(*c.entries, e)
	c.mu.Unlock()

	if c.t != nil {
		c.t.Logf("[%s] %s %v", e.Level, e.Message, e.Attrs)
	}
	return nil
}

func (c *LogCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := *c
	derived.attrs = append(append([]slog.Attr(nil), c.attrs...), attrs...)
	return &derived
}

// WithGroup flattens groups; tests match on attribute keys only.
func (c *LogCapture) WithGroup(string) slog.Handler { return c }

// Entries returns a copy of everything captured so far.
func (c *LogCapture) Entries() []LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]LogEntry(nil), *c.entries...)
}

// Filter returns the entries for which keep reports true.
func (c *LogCapture) Filter(keep func(LogEntry) bool) []LogEntry {
	var out []LogEntry
	for _, e := range c.Entries() {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// ContainsMessage reports whether any message contains substr.
func (c *LogCapture) ContainsMessage(substr string) bool {
	return len(c.Filter(func(e LogEntry) bool { return strings.Contains(e.Message, substr) })) > 0
}

// ContainsAttr reports whether any entry carries key=value.
func (c *LogCapture) ContainsAttr(key string, value any) bool {
	return len(c.Filter(func(e LogEntry) bool {
		v, ok := e.Attrs[key]
		return ok && v == value
	})) > 0
}

// AssertLogContains fails t unless an entry at level contains message.
func AssertLogContains(t *testing.T, c *LogCapture, level slog.Level, message string) {
	t.Helper()
	atLevel := c.Filter(func(e LogEntry) bool { return e.Level == level })
	for _, e := range atLevel {
		if strings.Contains(e.Message, message) {
			return
		}
	}
	t.Errorf("no %s entry contains %q", level, message)
	for _, e := range atLevel {
		t.Logf("  - %s", e.Message)
	}
}
