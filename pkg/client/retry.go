package client

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// retryPolicy retries retryable failures with doubling backoff. An open
// circuit breaker is never retried: the breaker is already telling us the
// backend is down.
type retryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
}

func (p retryPolicy) do(ctx context.Context, op func() error) error {
	attempts := p.maxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	delay := p.baseDelay
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}

		err = op()
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
	}
	return err
}

func isRetryable(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Retryable()
	}
	return false
}
