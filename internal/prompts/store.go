package prompts

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
)

// validKeyPattern matches valid prompt keys (alphanumeric with dots, underscores).
var validKeyPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9._]*$`)

// overrideExt is the file extension of override templates.
const overrideExt = ".tmpl"

// Store reads and writes override templates in a directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a new prompt store rooted at dir.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

// Dir returns the override directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the override file path for key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+overrideExt)
}

// Get returns the override text for key, or ok=false if there is none.
func (s *Store) Get(key string) (text string, ok bool, err error) {
	if !validKeyPattern.MatchString(key) {
		return "", false, fmt.Errorf("invalid prompt key: %s", key)
	}
	if s.dir == "" {
		return "", false, nil
	}

	raw, err := os.ReadFile(s.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read prompt override: %w", err)
	}
	return string(raw), true, nil
}

// Put writes text as the override for key. Existing files are kept unless
// overwrite is set. It reports whether the file was written.
func (s *Store) Put(key, text string, overwrite bool) (bool, error) {
	if !validKeyPattern.MatchString(key) {
		return false, fmt.Errorf("invalid prompt key: %s", key)
	}
	if s.dir == "" {
		return false, fmt.Errorf("prompts directory not configured")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return false, fmt.Errorf("failed to create prompts directory: %w", err)
	}

	path := s.Path(key)
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			s.logger.Debug("prompt override exists, skipping", "key", key, "path", path)
			return false, nil
		}
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return false, fmt.Errorf("failed to write prompt override: %w", err)
	}
	return true, nil
}
