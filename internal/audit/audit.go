// Package audit records one JSON Lines entry per relayed request.
// Entries carry request metadata only: never prompt text, attachment data
// or the provider key.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSizeMB  = 50
	keepFiles  = 3
	maxAgeDays = 28
)

// Outcome classifies how a relayed request ended.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeUpstream Outcome = "upstream_error"
	OutcomeInternal Outcome = "internal_error"
	OutcomeRejected Outcome = "rejected"
	OutcomeCanceled Outcome = "canceled"
)

// Entry is a single audit log line.
type Entry struct {
	Timestamp      time.Time     `json:"timestamp"`
	RequestID      string        `json:"request_id,omitempty"`
	Method         string        `json:"method"`
	Path           string        `json:"path"`
	StatusCode     int           `json:"status_code"`
	Outcome        Outcome       `json:"outcome"`
	Duration       time.Duration `json:"duration_ns"`
	RequestSize    int64         `json:"request_size"`
	RemoteAddr     string        `json:"remote_addr"`
	Origin         string        `json:"origin,omitempty"`
	HasAttachment  bool          `json:"has_attachment"`
	UpstreamStatus int           `json:"upstream_status,omitempty"`
}

// Logger appends entries to a size-rotated file.
// A nil *Logger discards entries, so callers need no enabled check.
type Logger struct {
	mu     sync.Mutex
	w      io.WriteCloser
	enc    *json.Encoder
	logger *slog.Logger
}

// NewLogger opens (or creates) the audit log at path.
func NewLogger(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	// Fail early on an unwritable path rather than on the first request.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	f.Close()

	return New(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: keepFiles,
		MaxAge:     maxAgeDays,
	}), nil
}

// New wraps an arbitrary writer.
func New(w io.WriteCloser) *Logger {
	return &Logger{
		w:      w,
		enc:    json.NewEncoder(w),
		logger: slog.Default(),
	}
}

// Log appends an entry. Write failures are logged, not returned: auditing
// never fails a relayed request.
func (l *Logger) Log(entry Entry) {
	if l == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.enc.Encode(entry); err != nil {
		l.logger.Warn("audit log write failed", "error", err)
	}
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Close()
}

// Rotate starts a new audit file, keeping the old one as a backup.
// Writers that cannot rotate are left alone.
func (l *Logger) Rotate() error {
	if l == nil {
		return nil
	}
	r, ok := l.w.(interface{ Rotate() error })
	if !ok {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return r.Rotate()
}

// ReadEntries reads all entries in path in chronological order.
// Malformed lines are skipped.
func ReadEntries(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("error reading audit log: %w", err)
	}

	return entries, nil
}
