package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
	seen  chan string
}

func newRecorder() *recorder {
	return &recorder{seen: make(chan string, 16)}
}

func (r *recorder) handle(ctx context.Context, path string) {
	r.mu.Lock()
	r.paths = append(r.paths, filepath.Base(path))
	r.mu.Unlock()
	r.seen <- filepath.Base(path)
}

func (r *recorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.paths {
		if p == name {
			n++
		}
	}
	return n
}

func startWatcher(t *testing.T, dir string, debounce time.Duration, rec *recorder) context.CancelFunc {
	t.Helper()
	w := New(Config{Debounce: debounce, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}, rec.handle)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, dir) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run() error = %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})

	// Give fsnotify time to register the directory.
	time.Sleep(50 * time.Millisecond)
	return cancel
}

func waitFor(t *testing.T, rec *recorder, name string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case got := <-rec.seen:
			if got == name {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", name)
		}
	}
}

func TestWatcher_HandlesNewPDF(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()
	startWatcher(t, dir, 20*time.Millisecond, rec)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Report.PDF"), []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, rec, "Report.PDF")
	if rec.count("notes.txt") != 0 {
		t.Error("non-PDF files should be ignored")
	}
}

func TestWatcher_Debounces(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()
	startWatcher(t, dir, 300*time.Millisecond, rec)

	path := filepath.Join(dir, "big.pdf")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if _, err := f.WriteString("chunk\n"); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	f.Close()

	waitFor(t, rec, "big.pdf")
	time.Sleep(500 * time.Millisecond)
	if n := rec.count("big.pdf"); n != 1 {
		t.Errorf("big.pdf handled %d times, want 1", n)
	}
}

func TestWatcher_MissingDir(t *testing.T) {
	w := New(Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}, func(context.Context, string) {})
	if err := w.Run(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}
