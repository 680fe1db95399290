// Package watch reacts to PDFs appearing in a directory.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Handler processes one settled file. Calls are sequential.
type Handler func(ctx context.Context, path string)

// Config configures a Watcher.
type Config struct {
	// Debounce is how long a path must be quiet before it is handled
	// (default 2s). Writers usually emit several events per file.
	Debounce time.Duration

	// Match selects paths to handle (default: .pdf, any case).
	Match func(path string) bool

	Logger *slog.Logger
}

// Watcher watches one directory, non-recursively.
type Watcher struct {
	debounce time.Duration
	match    func(string) bool
	handler  Handler
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New creates a Watcher that calls h for each settled matching file.
func New(cfg Config, h Handler) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = 2 * time.Second
	}
	if cfg.Match == nil {
		cfg.Match = func(path string) bool {
			return strings.EqualFold(filepath.Ext(path), ".pdf")
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Watcher{
		debounce: cfg.Debounce,
		match:    cfg.Match,
		handler:  h,
		logger:   cfg.Logger,
		pending:  make(map[string]*time.Timer),
	}
}

// Run watches dir until ctx is cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context, dir string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.logger.Info("watching for PDFs", "dir", dir, "debounce", w.debounce)

	ready := make(chan string, 100)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case path := <-ready:
				w.handler(ctx, path)
			}
		}
	}()

	defer func() {
		w.stopTimers()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.match(event.Name) {
				continue
			}
			switch {
			case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
				w.schedule(ctx, event.Name, ready)
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				w.cancel(event.Name)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// schedule (re)starts the quiet-period timer for path.
func (w *Watcher) schedule(ctx context.Context, path string, ready chan<- string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		select {
		case ready <- path:
		case <-ctx.Done():
		}
	})
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}
