package providers

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// ErrNoAPIKey is returned when a provider is constructed without credentials.
var ErrNoAPIKey = errors.New("no API key configured")

// Client sends a prompt to a generative model.
type Client interface {
	// Generate sends one prompt and returns the provider's response.
	Generate(ctx context.Context, req *GenerateRequest) (*Response, error)

	// Name returns the client identifier (e.g., "gemini").
	Name() string
}

// GenerateRequest is a single-turn text generation request.
type GenerateRequest struct {
	Prompt string

	// Model selection (uses client default if empty)
	Model string

	// Generation parameters
	Temperature *float64

	// Request tracking
	RequestID string
}

// ClientConfig holds the settings shared by every provider.
type ClientConfig struct {
	Type       string        // "gemini", "openrouter", "openai", "mock"
	Model      string        // Default model
	APIKey     string        // Resolved key, never a ${ENV_VAR} reference
	BaseURL    string        // Optional (tests, proxies)
	Timeout    time.Duration // HTTP timeout (default 300s)
	MaxRetries int           // Retries after the first attempt (default 0)
	RetryDelay time.Duration // Base backoff delay (default 1s)
	RateLimit  int           // Requests per minute, 0 = unlimited
	Logger     *slog.Logger
}

func (c ClientConfig) withDefaults() ClientConfig {
	if c.Timeout == 0 {
		c.Timeout = 300 * time.Second
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = time.Second
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Response mirrors the candidate -> content -> part structure generative
// model APIs return. Every level is optional; a missing level contributes no
// text.
type Response struct {
	Candidates    []*Candidate `json:"candidates,omitempty"`
	UsageMetadata *Usage       `json:"usageMetadata,omitempty"`
	ModelVersion  string       `json:"modelVersion,omitempty"`

	// Filled in by the client, not decoded from the wire.
	Provider  string `json:"-"`
	RequestID string `json:"-"`
}

// Candidate is one alternative completion.
type Candidate struct {
	Content      *Content `json:"content,omitempty"`
	FinishReason string   `json:"finishReason,omitempty"`
}

// Content holds the parts of a candidate.
type Content struct {
	Role  string  `json:"role,omitempty"`
	Parts []*Part `json:"parts,omitempty"`
}

// Part is one fragment of content. Non-text parts have a nil Text.
type Part struct {
	Text *string `json:"text,omitempty"`
}

// Usage reports token counts when the provider supplies them.
type Usage struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// Text concatenates the text of every part of every candidate, in order.
// It is safe to call on a nil Response.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	for _, c := range r.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if p == nil || p.Text == nil {
				continue
			}
			b.WriteString(*p.Text)
		}
	}
	return b.String()
}

// TextResponse builds a Response with one single-part candidate per text.
// Chat-style providers use it to map choices onto candidates.
func TextResponse(texts ...string) *Response {
	resp := &Response{Candidates: make([]*Candidate, 0, len(texts))}
	for _, text := range texts {
		resp.Candidates = append(resp.Candidates, &Candidate{
			Content: &Content{
				Role:  "model",
				Parts: []*Part{{Text: &text}},
			},
		})
	}
	return resp
}
