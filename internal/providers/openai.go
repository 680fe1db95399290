package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const (
	OpenAIName         = "openai"
	openAIDefaultModel = "gpt-4o-mini"
)

// OpenAIClient implements Client using the official OpenAI SDK.
// Each returned choice becomes one candidate.
type OpenAIClient struct {
	defaultModel string
	client       openai.Client
	logger       *slog.Logger
}

// NewOpenAIClient creates a new OpenAI client. Retries are delegated to the
// SDK transport.
func NewOpenAIClient(cfg ClientConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", OpenAIName, ErrNoAPIKey)
	}
	cfg = cfg.withDefaults()
	if cfg.Model == "" {
		cfg.Model = openAIDefaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		defaultModel: cfg.Model,
		client:       openai.NewClient(opts...),
		logger:       cfg.Logger,
	}, nil
}

// Name returns the client identifier.
func (c *OpenAIClient) Name() string {
	return OpenAIName
}

// Generate sends a single user message as a chat completion request.
func (c *OpenAIClient) Generate(ctx context.Context, req *GenerateRequest) (*Response, error) {
	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion failed: %w", err)
	}

	texts := make([]string, 0, len(completion.Choices))
	for _, choice := range completion.Choices {
		texts = append(texts, choice.Message.Content)
	}

	resp := TextResponse(texts...)
	for i, choice := range completion.Choices {
		resp.Candidates[i].FinishReason = string(choice.FinishReason)
	}
	resp.ModelVersion = completion.Model
	resp.UsageMetadata = &Usage{
		PromptTokenCount:     int(completion.Usage.PromptTokens),
		CandidatesTokenCount: int(completion.Usage.CompletionTokens),
		TotalTokenCount:      int(completion.Usage.TotalTokens),
	}
	resp.Provider = OpenAIName
	resp.RequestID = requestID

	c.logger.Debug("openai response", "request_id", requestID, "model", completion.Model, "choices", len(completion.Choices))
	return resp, nil
}

// Verify interface
var _ Client = (*OpenAIClient)(nil)
