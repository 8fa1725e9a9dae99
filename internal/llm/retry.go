package llm

import (
	"context"
	"errors"
	"time"
)

// retryPolicy configures retry of transient provider failures with
// exponential backoff.
type retryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{
		maxAttempts: 3,
		baseDelay:   time.Second,
	}
}

// delay returns the backoff before retry attempt n (0-indexed): 1s, 2s, 4s...
func (p retryPolicy) delay(attempt int) time.Duration {
	return p.baseDelay << attempt
}

// withRetry runs fn up to maxAttempts times. Only retryable provider
// errors are retried; everything else surfaces immediately.
func withRetry[T any](ctx context.Context, policy retryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < policy.maxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var pe *ProviderError
		if !errors.As(err, &pe) || !pe.Retryable || attempt == policy.maxAttempts-1 {
			return zero, err
		}

		select {
		case <-time.After(policy.delay(attempt)):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
	return zero, lastErr
}
