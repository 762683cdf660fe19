// Package report writes one JSON line per processed file.
package report

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type Status string

const (
	StatusUploaded    Status = "uploaded"
	StatusUnsupported Status = "unsupported"
	StatusFailed      Status = "failed"
)

type Entry struct {
	Timestamp     time.Time     `json:"timestamp"`
	Path          string        `json:"path"`
	Status        Status        `json:"status"`
	Error         string        `json:"error,omitempty"`
	Duration      time.Duration `json:"duration_ns"`
	LatencyMs     int64         `json:"latency_ms"`
	CorrelationID string        `json:"correlation_id"`
}

type Logger struct {
	writer io.Writer
	closer io.Closer
	mu     sync.Mutex
}

func NewLogger(w io.Writer) *Logger {
	return &Logger{writer: w}
}

// Discard returns a Logger that drops every entry.
func Discard() *Logger {
	return NewLogger(io.Discard)
}

func NewFileLogger(path string) (*Logger, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}

	cleanPath := filepath.Clean(path)
	f, err := os.OpenFile(cleanPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) // #nosec G304 -- path is from application config
	if err != nil {
		return nil, err
	}
	return &Logger{writer: f, closer: f}, nil
}

func (l *Logger) Log(entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	entry.LatencyMs = entry.Duration.Milliseconds()

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := json.NewEncoder(l.writer).Encode(entry); err != nil {
		slog.Error("failed to write report entry", "error", err, "path", entry.Path)
	}
}

func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
