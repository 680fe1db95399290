package providers

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket refilled at requestsPerMinute.
type RateLimiter struct {
	mu sync.Mutex

	requestsPerMinute int
	window            time.Duration

	tokens     float64
	lastUpdate time.Time

	totalConsumed int64
	totalWaited   time.Duration

	now func() time.Time
}

// NewRateLimiter creates a new rate limiter with a full bucket.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		window:            time.Minute,
		tokens:            float64(requestsPerMinute),
		lastUpdate:        time.Now(),
		now:               time.Now,
	}
}

// Wait blocks until a token is available or context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		r.refill()

		if r.tokens >= 1.0 {
			r.tokens--
			r.totalConsumed++
			r.mu.Unlock()
			return nil
		}

		waitTime := r.timeUntilToken()
		r.mu.Unlock()

		// Wait outside lock
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
			r.mu.Lock()
			r.totalWaited += waitTime
			r.mu.Unlock()
		}
	}
}

// TryConsume attempts to consume a token without blocking.
func (r *RateLimiter) TryConsume() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()

	if r.tokens >= 1.0 {
		r.tokens--
		r.totalConsumed++
		return true
	}
	return false
}

// Consumed returns how many tokens have been handed out.
func (r *RateLimiter) Consumed() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totalConsumed
}

// timeUntilToken must be called with lock held.
func (r *RateLimiter) timeUntilToken() time.Duration {
	tokensNeeded := 1.0 - r.tokens
	perToken := r.window / time.Duration(r.requestsPerMinute)
	return time.Duration(tokensNeeded * float64(perToken))
}

// refill adds tokens based on elapsed time. Must be called with lock held.
func (r *RateLimiter) refill() {
	now := r.now()
	elapsed := now.Sub(r.lastUpdate)
	r.lastUpdate = now

	r.tokens += float64(r.requestsPerMinute) * elapsed.Seconds() / r.window.Seconds()
	if r.tokens > float64(r.requestsPerMinute) {
		r.tokens = float64(r.requestsPerMinute)
	}
}

// rateLimitedClient waits on a limiter before each request.
type rateLimitedClient struct {
	Client
	limiter *RateLimiter
}

// WithRateLimit wraps client so it sends at most rpm requests per minute.
// rpm <= 0 returns client unchanged.
func WithRateLimit(client Client, rpm int) Client {
	if rpm <= 0 {
		return client
	}
	return &rateLimitedClient{Client: client, limiter: NewRateLimiter(rpm)}
}

// Generate implements Client.
func (c *rateLimitedClient) Generate(ctx context.Context, req *GenerateRequest) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.Client.Generate(ctx, req)
}
