package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const (
	GeminiName         = "gemini"
	GeminiBaseURL      = "https://generativelanguage.googleapis.com/v1beta"
	geminiDefaultModel = "gemini-1.5-flash"
)

// GeminiClient implements Client using the Gemini generateContent API.
type GeminiClient struct {
	apiKey       string
	baseURL      string
	defaultModel string
	client       *http.Client
	maxRetries   int
	retryDelay   time.Duration
	logger       *slog.Logger
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(cfg ClientConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", GeminiName, ErrNoAPIKey)
	}
	cfg = cfg.withDefaults()
	if cfg.BaseURL == "" {
		cfg.BaseURL = GeminiBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = geminiDefaultModel
	}

	return &GeminiClient{
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
func (c *GeminiClient) Name() string {
	return GeminiName
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature *float64 `json:"temperature,omitempty"`
}

// Generate sends a generateContent request.
func (c *GeminiClient) Generate(ctx context.Context, req *GenerateRequest) (*Response, error) {
	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	body := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}},
		},
	}
	if req.Temperature != nil {
		body.GenerationConfig = &geminiGenerationConfig{Temperature: req.Temperature}
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(model))
	start := time.Now()

	var resp Response
	err = withRetry(ctx, c.maxRetries, c.retryDelay, func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
		if err != nil {
			return permanent(fmt.Errorf("failed to create request: %w", err))
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("x-goog-api-key", c.apiKey)

		httpResp, err := c.client.Do(httpReq)
		if err != nil {
			return fmt.Errorf("calling gemini API: %w", err)
		}
		defer func() { _ = httpResp.Body.Close() }()

		respBody, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		if httpResp.StatusCode != http.StatusOK {
			return &StatusError{Provider: GeminiName, StatusCode: httpResp.StatusCode, Body: string(respBody)}
		}

		resp = Response{}
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return permanent(fmt.Errorf("failed to unmarshal response: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp.Provider = GeminiName
	resp.RequestID = requestID
	c.logger.Debug("gemini response",
		"request_id", requestID,
		"model", model,
		"candidates", len(resp.Candidates),
		"duration", time.Since(start),
	)
	return &resp, nil
}

// Verify interface
var _ Client = (*GeminiClient)(nil)
