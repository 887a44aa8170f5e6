package querycache

import (
	"context"
	"time"
)

// RetryPolicy governs how fetch functions are retried. Attempts are
// spaced by exponential backoff: BaseDelay doubles after every failure
// and is capped at MaxDelay.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration

	// MaxDelay caps the backoff growth.
	MaxDelay time.Duration
}

// DefaultRetryPolicy returns the standard policy: three attempts with
// backoff doubling from 500ms and capped at 30s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    30 * time.Second,
	}
}

// Delay returns the backoff before the given retry. The first retry is
// attempt 1.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// WithRetry wraps a fetch function with the retry policy. retryable
// decides which failures are worth another attempt; deterministic
// failures (validation, not-found) should return false so they
// propagate immediately. The context deadline is honored between
// attempts.
func WithRetry[T any](policy RetryPolicy, retryable func(error) bool, fetchFn FetchFn[T]) FetchFn[T] {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	return func(ctx context.Context) (T, error) {
		var zero T
		var lastErr error

		for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
			if attempt > 1 {
				timer := time.NewTimer(policy.Delay(attempt - 1))
				select {
				case <-ctx.Done():
					timer.Stop()
					return zero, ctx.Err()
				case <-timer.C:
				}
			}

			result, err := fetchFn(ctx)
			if err == nil {
				return result, nil
			}
			lastErr = err

			if retryable != nil && !retryable(err) {
				break
			}
		}

		return zero, lastErr
	}
}
