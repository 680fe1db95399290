package pipeline

import (
	"time"

	"github.com/jackzampolin/pdf2kg/internal/normalize"
)

// Outcome is what happened to one (file, format) pair.
type Outcome string

const (
	OutcomeWritten         Outcome = "written"
	OutcomeSkippedEmpty    Outcome = "skipped_empty"
	OutcomeSkippedExisting Outcome = "skipped_existing"
	OutcomePromptFailed    Outcome = "prompt_failed"
	OutcomeQueryFailed     Outcome = "query_failed"
	OutcomeExtractFailed   Outcome = "extract_failed"
	OutcomeWriteFailed     Outcome = "write_failed"
)

// Failed reports whether the outcome counts against the run's exit status.
// A failed model query is "no data", not a failure.
func (o Outcome) Failed() bool {
	switch o {
	case OutcomePromptFailed, OutcomeExtractFailed, OutcomeWriteFailed:
		return true
	}
	return false
}

// FormatReport describes one format of one file.
type FormatReport struct {
	Format      normalize.Format       `json:"format" yaml:"format"`
	Outcome     Outcome                `json:"outcome" yaml:"outcome"`
	Path        string                 `json:"path,omitempty" yaml:"path,omitempty"`
	Error       string                 `json:"error,omitempty" yaml:"error,omitempty"`
	PromptHash  string                 `json:"prompt_hash,omitempty" yaml:"prompt_hash,omitempty"`
	Diagnostics []normalize.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Duration    time.Duration          `json:"duration" yaml:"duration"`
}

// FileReport describes one PDF.
type FileReport struct {
	File     string         `json:"file" yaml:"file"`
	Pages    int            `json:"pages" yaml:"pages"`
	Formats  []FormatReport `json:"formats" yaml:"formats"`
	Duration time.Duration  `json:"duration" yaml:"duration"`
}

// Failed reports whether any format of the file failed.
func (f FileReport) Failed() bool {
	for _, r := range f.Formats {
		if r.Outcome.Failed() {
			return true
		}
	}
	return false
}

// Report summarizes a run over a directory.
type Report struct {
	RunID      string          `json:"run_id" yaml:"run_id"`
	Dir        string          `json:"dir" yaml:"dir"`
	Provider   string          `json:"provider" yaml:"provider"`
	StartedAt  time.Time       `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time       `json:"finished_at" yaml:"finished_at"`
	Files      []FileReport    `json:"files" yaml:"files"`
	Counts     map[Outcome]int `json:"counts" yaml:"counts"`
}

// Failed reports whether any file failed.
func (r *Report) Failed() bool {
	for _, f := range r.Files {
		if f.Failed() {
			return true
		}
	}
	return false
}

// tally fills Counts from Files.
func (r *Report) tally() {
	r.Counts = make(map[Outcome]int)
	for _, f := range r.Files {
		for _, fr := range f.Formats {
			r.Counts[fr.Outcome]++
		}
	}
}
