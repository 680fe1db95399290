package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	OpenRouterName         = "openrouter"
	OpenRouterBaseURL      = "https://openrouter.ai/api/v1"
	openRouterDefaultModel = "google/gemini-flash-1.5"
)

// OpenRouterClient implements Client using the OpenRouter chat completions API.
// Each returned choice becomes one candidate.
type OpenRouterClient struct {
	apiKey       string
	baseURL      string
	defaultModel string
	client       *http.Client
	maxRetries   int
	retryDelay   time.Duration
	logger       *slog.Logger
}

// NewOpenRouterClient creates a new OpenRouter client.
func NewOpenRouterClient(cfg ClientConfig) (*OpenRouterClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", OpenRouterName, ErrNoAPIKey)
	}
	cfg = cfg.withDefaults()
	if cfg.BaseURL == "" {
		cfg.BaseURL = OpenRouterBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = openRouterDefaultModel
	}

	return &OpenRouterClient{
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		defaultModel: cfg.Model,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
	}, nil
}

// Name returns the client identifier.
func (c *OpenRouterClient) Name() string {
	return OpenRouterName
}

// Generate sends a single user message as a chat completion request.
func (c *OpenRouterClient) Generate(ctx context.Context, req *GenerateRequest) (*Response, error) {
	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	orReq := openRouterRequest{
		Model:       model,
		Messages:    []openRouterMessage{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
	}

	orResp, err := c.doRequest(ctx, "/chat/completions", &orReq)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(orResp.Choices))
	for _, choice := range orResp.Choices {
		texts = append(texts, choice.Message.textContent())
	}

	resp := TextResponse(texts...)
	for i, choice := range orResp.Choices {
		resp.Candidates[i].FinishReason = choice.FinishReason
	}
	resp.ModelVersion = orResp.Model
	resp.UsageMetadata = &Usage{
		PromptTokenCount:     orResp.Usage.PromptTokens,
		CandidatesTokenCount: orResp.Usage.CompletionTokens,
		TotalTokenCount:      orResp.Usage.TotalTokens,
	}
	resp.Provider = OpenRouterName
	resp.RequestID = requestID
	return resp, nil
}

// doRequest makes an HTTP request to OpenRouter with retry logic.
func (c *OpenRouterClient) doRequest(ctx context.Context, path string, orReq *openRouterRequest) (*openRouterResponse, error) {
	bodyBytes, err := json.Marshal(orReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var orResp openRouterResponse
	err = withRetry(ctx, c.maxRetries, c.retryDelay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes))
		if err != nil {
			return permanent(fmt.Errorf("failed to create request: %w", err))
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("HTTP-Referer", "https://github.com/jackzampolin/pdf2kg")
		req.Header.Set("X-Title", "pdf2kg")

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return &StatusError{Provider: "OpenRouter", StatusCode: resp.StatusCode, Body: string(respBody)}
		}

		orResp = openRouterResponse{}
		if err := json.Unmarshal(respBody, &orResp); err != nil {
			return permanent(fmt.Errorf("failed to unmarshal response: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("openrouter response", "model", orResp.Model, "choices", len(orResp.Choices))
	return &orResp, nil
}

// OpenRouter API types

type openRouterRequest struct {
	Model       string              `json:"model"`
	Messages    []openRouterMessage `json:"messages"`
	Temperature *float64            `json:"temperature,omitempty"`
}

type openRouterMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string or []openRouterContent
}

type openRouterContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// textContent flattens string or multipart content into text. Non-text
// parts are ignored.
func (m openRouterMessage) textContent() string {
	switch content := m.Content.(type) {
	case string:
		return content
	case []any:
		var buf bytes.Buffer
		for _, part := range content {
			b, err := json.Marshal(part)
			if err != nil {
				continue
			}
			var p openRouterContent
			if json.Unmarshal(b, &p) == nil && p.Type == "text" {
				buf.WriteString(p.Text)
			}
		}
		return buf.String()
	}
	return ""
}

type openRouterResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      openRouterMessage `json:"message"`
		FinishReason string            `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Verify interface
var _ Client = (*OpenRouterClient)(nil)
