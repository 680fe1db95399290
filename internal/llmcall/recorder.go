package llmcall

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Recorder appends calls as JSON lines. Recording never fails the caller;
// write errors are logged. A nil Recorder records nothing.
type Recorder struct {
	mu     sync.Mutex
	enc    *json.Encoder
	closer io.Closer
	logger *slog.Logger
}

// NewRecorder creates a recorder writing to w.
func NewRecorder(w io.Writer, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{enc: json.NewEncoder(w), logger: logger}
}

// OpenFile creates a recorder appending to path, creating parent directories.
func OpenFile(path string, logger *slog.Logger) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create call log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open call log: %w", err)
	}
	r := NewRecorder(f, logger)
	r.closer = f
	return r, nil
}

// Record writes one call. Safe for concurrent use.
func (r *Recorder) Record(call *Call) {
	if r == nil || call == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enc.Encode(call); err != nil {
		r.logger.Warn("failed to record model call", "id", call.ID, "error", err)
	}
}

// Close closes the underlying file, if the recorder owns one.
func (r *Recorder) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
