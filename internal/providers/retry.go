package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

// StatusError is a non-200 HTTP response from a provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests:
		return true
	default:
		// Retry on server errors (500+)
		return e.StatusCode >= 500
	}
}

// isRetryable treats transport failures and retryable statuses as transient.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return retry.IsRecoverable(err)
}

// permanent marks failures a retry cannot fix (request encoding, an
// undecodable body).
func permanent(err error) error { return retry.Unrecoverable(err) }

// withRetry runs fn once plus up to maxRetries more times with exponential
// backoff. maxRetries == 0 means a single attempt.
func withRetry(ctx context.Context, maxRetries int, delay time.Duration, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(uint(maxRetries)+1),
		retry.Delay(delay),
		retry.MaxDelay(10*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(isRetryable),
		retry.LastErrorOnly(true),
	)
}
