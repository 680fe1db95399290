// Package output persists normalized artifacts next to their source PDFs.
package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackzampolin/pdf2kg/internal/normalize"
)

// ErrEmptyArtifact is returned when asked to write an empty artifact.
var ErrEmptyArtifact = errors.New("artifact is empty")

// Config configures a Writer.
type Config struct {
	// Dir, if set, receives every artifact instead of the PDF's directory.
	Dir    string
	Logger *slog.Logger
}

// Writer writes artifacts to <basename>.<ext>, overwriting existing files.
// Writes are not atomic.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a Writer.
func NewWriter(cfg Config) *Writer {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Writer{dir: cfg.Dir, logger: cfg.Logger}
}

// Path returns where the artifact of format f for pdfPath is written.
func (w *Writer) Path(pdfPath string, f normalize.Format) string {
	base := filepath.Base(pdfPath)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + "." + f.Extension()

	dir := w.dir
	if dir == "" {
		dir = filepath.Dir(pdfPath)
	}
	return filepath.Join(dir, name)
}

// Exists reports whether the artifact for pdfPath and f is already on disk.
func (w *Writer) Exists(pdfPath string, f normalize.Format) bool {
	_, err := os.Stat(w.Path(pdfPath, f))
	return err == nil
}

// Write persists a to its path and returns the path.
func (w *Writer) Write(pdfPath string, a normalize.Artifact) (string, error) {
	if a.Empty() {
		return "", ErrEmptyArtifact
	}

	data, err := Encode(a)
	if err != nil {
		return "", err
	}

	path := w.Path(pdfPath, a.Format)
	if w.dir != "" {
		if err := os.MkdirAll(w.dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	w.logger.Debug("wrote artifact", "path", path, "format", a.Format, "bytes", len(data))
	return path, nil
}

// Encode renders an artifact as file contents. JSON is re-indented with two
// spaces, keeping key order and non-ASCII text as received. Turtle is
// written verbatim.
func Encode(a normalize.Artifact) ([]byte, error) {
	switch a.Format {
	case normalize.FormatJSON:
		var buf bytes.Buffer
		if err := json.Indent(&buf, a.JSON, "", "  "); err != nil {
			return nil, fmt.Errorf("failed to indent json: %w", err)
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	case normalize.FormatTurtle:
		return []byte(a.Turtle), nil
	default:
		return nil, fmt.Errorf("%w: %q", normalize.ErrUnknownFormat, a.Format)
	}
}
