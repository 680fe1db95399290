package llmcall

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackzampolin/pdf2kg/internal/providers"
)

func TestFromResponse(t *testing.T) {
	resp := providers.TextResponse(`{"name": "Acme"}`)
	resp.Provider = "gemini"
	resp.RequestID = "req-1"
	resp.ModelVersion = "gemini-1.5-flash"
	resp.UsageMetadata = &providers.Usage{PromptTokenCount: 120, CandidatesTokenCount: 30, TotalTokenCount: 150}

	call := FromResponse(resp, RecordOptions{
		RunID:      "run-1",
		File:       "report.pdf",
		Format:     "json",
		PromptKey:  "extract.json",
		PromptHash: "abc",
		Provider:   "ignored",
		Latency:    1500 * time.Millisecond,
	})

	if call.ID == "" {
		t.Error("expected an ID")
	}
	if !call.Success || call.Error != "" {
		t.Errorf("Success = %v, Error = %q", call.Success, call.Error)
	}
	if call.Provider != "gemini" {
		t.Errorf("Provider = %q, want response provider", call.Provider)
	}
	if call.Response != `{"name": "Acme"}` {
		t.Errorf("Response = %q", call.Response)
	}
	if call.InputTokens != 120 || call.OutputTokens != 30 {
		t.Errorf("tokens = %d/%d", call.InputTokens, call.OutputTokens)
	}
	if call.LatencyMs != 1500 {
		t.Errorf("LatencyMs = %d, want 1500", call.LatencyMs)
	}
}

func TestFromResponse_Failure(t *testing.T) {
	call := FromResponse(nil, RecordOptions{Provider: "openai", Err: errors.New("status 500")})
	if call.Success {
		t.Error("expected Success = false")
	}
	if call.Error != "status 500" {
		t.Errorf("Error = %q", call.Error)
	}
	if call.Provider != "openai" || call.Response != "" {
		t.Errorf("Provider = %q, Response = %q", call.Provider, call.Response)
	}
}

func TestRecorder_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecorder(&buf, slog.New(slog.NewTextHandler(io.Discard, nil)))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Record(FromResponse(providers.TextResponse("x"), RecordOptions{File: "a.pdf"}))
		}()
	}
	wg.Wait()

	lines := 0
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var c Call
		if err := json.Unmarshal(scanner.Bytes(), &c); err != nil {
			t.Fatalf("line %d is not a call: %v", lines, err)
		}
		lines++
	}
	if lines != 20 {
		t.Errorf("recorded %d lines, want 20", lines)
	}
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	r.Record(&Call{ID: "x"})
	if err := r.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestOpenFile_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "calls.jsonl")

	for i := 0; i < 2; i++ {
		r, err := OpenFile(path, nil)
		if err != nil {
			t.Fatalf("OpenFile() error = %v", err)
		}
		r.Record(&Call{ID: "x"})
		if err := r.Close(); err != nil {
			t.Fatal(err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if n := bytes.Count(data, []byte("\n")); n != 2 {
		t.Errorf("got %d lines, want 2", n)
	}
}
