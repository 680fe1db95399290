package prompts

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// SourceEmbedded is ResolvedPrompt.Source for built-in defaults.
const SourceEmbedded = "embedded"

// Resolver resolves prompts with file overrides.
// Resolution order: override file > Embedded default
type Resolver struct {
	store    *Store
	embedded map[string]EmbeddedPrompt
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewResolver creates a new prompt resolver. store may be nil.
func NewResolver(store *Store, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		store:    store,
		embedded: make(map[string]EmbeddedPrompt),
		logger:   logger,
	}
}

// Register registers an embedded prompt.
func (r *Resolver) Register(prompt EmbeddedPrompt) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prompt.Hash == "" {
		prompt.Hash = HashText(prompt.Text)
	}
	if prompt.Variables == nil {
		prompt.Variables = ExtractVariables(prompt.Text)
	}

	r.embedded[prompt.Key] = prompt
	r.logger.Debug("registered embedded prompt", "key", prompt.Key, "vars", prompt.Variables)
}

// Resolve returns the override for key if one exists, otherwise the
// embedded default. Keys must be registered even when overridden.
func (r *Resolver) Resolve(key string) (*ResolvedPrompt, error) {
	r.mu.RLock()
	embedded, ok := r.embedded[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("prompt not found: %s", key)
	}

	if r.store != nil {
		text, found, err := r.store.Get(key)
		if err != nil {
			r.logger.Warn("failed to check prompt override", "key", key, "error", err)
			// Fall through to embedded default
		} else if found {
			r.logger.Info("using prompt override", "key", key, "path", r.store.Path(key))
			return &ResolvedPrompt{
				Key:        key,
				Text:       text,
				Variables:  ExtractVariables(text),
				IsOverride: true,
				Source:     r.store.Path(key),
				Hash:       HashText(text),
			}, nil
		}
	}

	return &ResolvedPrompt{
		Key:       key,
		Text:      embedded.Text,
		Variables: embedded.Variables,
		Source:    SourceEmbedded,
		Hash:      embedded.Hash,
	}, nil
}

// GetEmbedded returns the embedded default for a key.
func (r *Resolver) GetEmbedded(key string) (*EmbeddedPrompt, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.embedded[key]
	return &p, ok
}

// AllEmbedded returns all registered embedded prompts sorted by key.
func (r *Resolver) AllEmbedded() []EmbeddedPrompt {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]EmbeddedPrompt, 0, len(r.embedded))
	for _, p := range r.embedded {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

// ExportAll writes every embedded default to the store as a starting point
// for overrides. It returns the keys that were written.
func (r *Resolver) ExportAll(overwrite bool) ([]string, error) {
	if r.store == nil {
		return nil, fmt.Errorf("store not configured")
	}

	var written []string
	for _, p := range r.AllEmbedded() {
		ok, err := r.store.Put(p.Key, p.Text, overwrite)
		if err != nil {
			return written, fmt.Errorf("failed to export prompt %s: %w", p.Key, err)
		}
		if ok {
			written = append(written, p.Key)
		}
	}

	r.logger.Info("exported prompts", "dir", r.store.Dir(), "written", len(written))
	return written, nil
}
