package providers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockClient is a Client for testing.
type MockClient struct {
	// Configurable behavior
	Latency    time.Duration
	ShouldFail bool
	FailAfter  int // Fail after N requests (0 = never)

	// Response is returned for every request unless Respond is set.
	Response *Response
	// Respond, if set, builds the response per request.
	Respond func(req *GenerateRequest) (*Response, error)

	// State
	requestCount atomic.Int64
	mu           sync.Mutex
	prompts      []string
}

// NewMockClient creates a new mock client returning text as a single candidate.
func NewMockClient(text string) *MockClient {
	return &MockClient{
		Response: TextResponse(text),
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// Generate returns the configured response.
func (c *MockClient) Generate(ctx context.Context, req *GenerateRequest) (*Response, error) {
	count := c.requestCount.Add(1)

	c.mu.Lock()
	c.prompts = append(c.prompts, req.Prompt)
	c.mu.Unlock()

	if c.ShouldFail {
		return nil, fmt.Errorf("mock client configured to fail")
	}
	if c.FailAfter > 0 && int(count) > c.FailAfter {
		return nil, fmt.Errorf("mock client failed after %d requests", c.FailAfter)
	}

	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if c.Respond != nil {
		return c.Respond(req)
	}
	return c.Response, nil
}

// RequestCount returns the number of requests made.
func (c *MockClient) RequestCount() int64 {
	return c.requestCount.Load()
}

// Prompts returns every prompt received, in order.
func (c *MockClient) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.prompts))
	copy(out, c.prompts)
	return out
}

// Verify interface
var _ Client = (*MockClient)(nil)
