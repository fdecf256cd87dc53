// Package testutil provides shared test utilities for the bdst toolchain:
// a log-capturing Logger and the compact rule-document fixtures the
// application and interface layers test against.
package testutil

import (
	"sync"

	"github.com/verdantlab/bdst/internal/infrastructure/monitoring/logging"
)

// CaptureLogger implements logging.Logger and records every entry so tests
// can assert on logged output.
type CaptureLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

// LogEntry is a single captured log call.
type LogEntry struct {
	Level   string
	Message string
	Fields  []logging.Field
}

// NewCaptureLogger creates an empty CaptureLogger.
func NewCaptureLogger() *CaptureLogger {
	return &CaptureLogger{entries: make([]LogEntry, 0)}
}

func (l *CaptureLogger) log(level, msg string, fields []logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Message: msg, Fields: fields})
}

func (l *CaptureLogger) Debug(msg string, fields ...logging.Field) { l.log("debug", msg, fields) }
func (l *CaptureLogger) Info(msg string, fields ...logging.Field)  { l.log("info", msg, fields) }
func (l *CaptureLogger) Warn(msg string, fields ...logging.Field)  { l.log("warn", msg, fields) }
func (l *CaptureLogger) Error(msg string, fields ...logging.Field) { l.log("error", msg, fields) }

// With returns the receiver; captured entries keep only per-call fields.
func (l *CaptureLogger) With(_ ...logging.Field) logging.Logger { return l }

// Named returns the receiver; names are not tracked.
func (l *CaptureLogger) Named(_ string) logging.Logger { return l }

// Entries returns a copy of all captured entries.
func (l *CaptureLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Clear removes all captured entries.
func (l *CaptureLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
}

// Has reports whether an entry with the given level and message was logged.
func (l *CaptureLogger) Has(level, msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}
