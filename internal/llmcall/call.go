// Package llmcall records model calls for traceability.
// Every query is recorded with its prompt key, prompt hash, response and
// token counts, one JSON object per line.
package llmcall

import (
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/pdf2kg/internal/providers"
)

// Call represents a recorded model call.
type Call struct {
	// Unique identifier
	ID string `json:"id"`

	// Timing
	Timestamp time.Time `json:"timestamp"`
	LatencyMs int       `json:"latency_ms"`

	// Context references
	RunID  string `json:"run_id,omitempty"`
	File   string `json:"file"`
	Format string `json:"format"`

	// Prompt traceability
	PromptKey  string `json:"prompt_key"`
	PromptHash string `json:"prompt_hash,omitempty"` // Hash of the rendered prompt

	// Model info
	Provider  string `json:"provider"`
	Model     string `json:"model,omitempty"`
	RequestID string `json:"request_id,omitempty"`

	// Token usage
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`

	// Response
	Response string `json:"response"`

	// Status
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// RecordOptions provides context for recording a call.
type RecordOptions struct {
	RunID  string
	File   string
	Format string

	PromptKey  string
	PromptHash string

	Provider string
	Latency  time.Duration

	// Err is the query error, if any. The response is then usually nil.
	Err error
}

// FromResponse creates a Call from a model response. resp may be nil.
func FromResponse(resp *providers.Response, opts RecordOptions) *Call {
	call := &Call{
		ID:         uuid.New().String(),
		Timestamp:  time.Now(),
		LatencyMs:  int(opts.Latency.Milliseconds()),
		RunID:      opts.RunID,
		File:       opts.File,
		Format:     opts.Format,
		PromptKey:  opts.PromptKey,
		PromptHash: opts.PromptHash,
		Provider:   opts.Provider,
		Success:    opts.Err == nil,
	}
	if opts.Err != nil {
		call.Error = opts.Err.Error()
	}
	if resp == nil {
		return call
	}

	if resp.Provider != "" {
		call.Provider = resp.Provider
	}
	call.Model = resp.ModelVersion
	call.RequestID = resp.RequestID
	call.Response = resp.Text()
	if resp.UsageMetadata != nil {
		call.InputTokens = resp.UsageMetadata.PromptTokenCount
		call.OutputTokens = resp.UsageMetadata.CandidatesTokenCount
	}
	return call
}
