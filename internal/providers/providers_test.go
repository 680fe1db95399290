package providers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestResponseText(t *testing.T) {
	tests := []struct {
		name string
		resp *Response
		want string
	}{
		{name: "nil response", resp: nil, want: ""},
		{name: "no candidates", resp: &Response{}, want: ""},
		{name: "nil candidate", resp: &Response{Candidates: []*Candidate{nil}}, want: ""},
		{name: "candidate without content", resp: &Response{Candidates: []*Candidate{{}}}, want: ""},
		{name: "content without parts", resp: &Response{Candidates: []*Candidate{{Content: &Content{}}}}, want: ""},
		{
			name: "non-text part",
			resp: &Response{Candidates: []*Candidate{{Content: &Content{Parts: []*Part{{}, nil}}}}},
			want: "",
		},
		{
			name: "parts concatenated in order",
			resp: &Response{Candidates: []*Candidate{
				{Content: &Content{Parts: []*Part{{Text: strPtr("a")}, {Text: strPtr("b")}}}},
				{Content: &Content{Parts: []*Part{{Text: strPtr("c")}}}},
			}},
			want: "abc",
		},
		{name: "text response", resp: TextResponse("x", "y"), want: "xy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resp.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMockClient(t *testing.T) {
	t.Run("generate", func(t *testing.T) {
		c := NewMockClient("hello world")

		resp, err := c.Generate(context.Background(), &GenerateRequest{Prompt: "test"})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if resp.Text() != "hello world" {
			t.Errorf("Text() = %q, want %q", resp.Text(), "hello world")
		}
		if c.RequestCount() != 1 {
			t.Errorf("RequestCount = %d, want 1", c.RequestCount())
		}
		if prompts := c.Prompts(); len(prompts) != 1 || prompts[0] != "test" {
			t.Errorf("Prompts() = %v", prompts)
		}
	})

	t.Run("respond func", func(t *testing.T) {
		c := &MockClient{Respond: func(req *GenerateRequest) (*Response, error) {
			return TextResponse("echo:" + req.Prompt), nil
		}}
		resp, _ := c.Generate(context.Background(), &GenerateRequest{Prompt: "p"})
		if resp.Text() != "echo:p" {
			t.Errorf("Text() = %q", resp.Text())
		}
	})

	t.Run("should fail", func(t *testing.T) {
		c := NewMockClient("x")
		c.ShouldFail = true
		if _, err := c.Generate(context.Background(), &GenerateRequest{}); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("fail after", func(t *testing.T) {
		c := NewMockClient("x")
		c.FailAfter = 2

		for i := 0; i < 2; i++ {
			if _, err := c.Generate(context.Background(), &GenerateRequest{}); err != nil {
				t.Fatalf("request %d failed: %v", i, err)
			}
		}
		if _, err := c.Generate(context.Background(), &GenerateRequest{}); err == nil {
			t.Error("expected error after FailAfter requests")
		}
	})

	t.Run("latency respects context", func(t *testing.T) {
		c := NewMockClient("x")
		c.Latency = time.Second

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		if _, err := c.Generate(ctx, &GenerateRequest{}); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected DeadlineExceeded, got %v", err)
		}
	})
}

func TestRateLimiter(t *testing.T) {
	t.Run("allows initial burst", func(t *testing.T) {
		limiter := NewRateLimiter(600)

		start := time.Now()
		for i := 0; i < 5; i++ {
			if err := limiter.Wait(context.Background()); err != nil {
				t.Fatalf("request %d failed: %v", i, err)
			}
		}
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Errorf("took too long: %v", elapsed)
		}
	})

	t.Run("refills with time", func(t *testing.T) {
		now := time.Unix(0, 0)
		limiter := NewRateLimiter(60)
		limiter.now = func() time.Time { return now }
		limiter.lastUpdate = now

		for i := 0; i < 60; i++ {
			if !limiter.TryConsume() {
				t.Fatalf("TryConsume %d should succeed", i)
			}
		}
		if limiter.TryConsume() {
			t.Fatal("bucket should be empty")
		}

		now = now.Add(time.Second)
		if !limiter.TryConsume() {
			t.Error("one token should refill after a second")
		}
		if limiter.Consumed() != 61 {
			t.Errorf("Consumed() = %d, want 61", limiter.Consumed())
		}
	})

	t.Run("respects cancellation", func(t *testing.T) {
		limiter := NewRateLimiter(1)
		limiter.Wait(context.Background())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := limiter.Wait(ctx); err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("concurrent requests", func(t *testing.T) {
		limiter := NewRateLimiter(6000)

		var wg sync.WaitGroup
		var failures atomic.Int32
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := limiter.Wait(context.Background()); err != nil {
					failures.Add(1)
				}
			}()
		}
		wg.Wait()

		if failures.Load() > 0 {
			t.Errorf("had %d errors", failures.Load())
		}
		if limiter.Consumed() != 10 {
			t.Errorf("Consumed() = %d, want 10", limiter.Consumed())
		}
	})
}

func TestWithRateLimit(t *testing.T) {
	mock := NewMockClient("x")
	if got := WithRateLimit(mock, 0); got != Client(mock) {
		t.Error("rpm <= 0 should return the client unchanged")
	}

	limited := WithRateLimit(mock, 60)
	if limited.Name() != MockClientName {
		t.Errorf("Name() = %q", limited.Name())
	}
	if _, err := limited.Generate(context.Background(), &GenerateRequest{Prompt: "p"}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if mock.RequestCount() != 1 {
		t.Errorf("RequestCount = %d, want 1", mock.RequestCount())
	}
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ClientConfig
		want    string
		wantErr error
	}{
		{name: "gemini", cfg: ClientConfig{Type: GeminiName, APIKey: "k"}, want: GeminiName},
		{name: "openrouter", cfg: ClientConfig{Type: OpenRouterName, APIKey: "k"}, want: OpenRouterName},
		{name: "openai", cfg: ClientConfig{Type: OpenAIName, APIKey: "k"}, want: OpenAIName},
		{name: "rate limited", cfg: ClientConfig{Type: GeminiName, APIKey: "k", RateLimit: 30}, want: GeminiName},
		{name: "missing key", cfg: ClientConfig{Type: GeminiName}, wantErr: ErrNoAPIKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewClient() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewClient() error = %v", err)
			}
			if client.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", client.Name(), tt.want)
			}
		})
	}

	t.Run("unknown type", func(t *testing.T) {
		if _, err := NewClient(ClientConfig{Type: "nope", APIKey: "k"}); err == nil {
			t.Error("expected error for unknown type")
		}
	})
}

func TestTypes(t *testing.T) {
	got := Types()
	want := []string{GeminiName, OpenAIName, OpenRouterName}
	if len(got) != len(want) {
		t.Fatalf("Types() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Types()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
