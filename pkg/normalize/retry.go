package normalize

import (
	"context"
	"time"

	"github.com/hvkurs/kursmap/pkg/constants"
	"github.com/hvkurs/kursmap/pkg/errors"
)

// RetryPolicy retries transient service failures with exponential
// backoff. Non-transient errors are returned immediately.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	MaxBackoff  time.Duration
}

// DefaultRetryPolicy matches the service's documented rate limits.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: constants.MaxRetries,
		Backoff:     constants.RetryBackoff,
		MaxBackoff:  constants.MaxRetryBackoff,
	}
}

// Do runs fn until it succeeds, fails non-transiently, or the attempt
// ceiling is hit. Exhaustion is escalated as ExhaustedRetriesError so
// callers can abort the whole run instead of skipping one record.
func (p RetryPolicy) Do(ctx context.Context, operation string, fn func() error) error {
	backoff := p.Backoff
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !errors.IsTransient(lastErr) {
			return lastErr
		}
		if attempt == p.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > p.MaxBackoff {
			backoff = p.MaxBackoff
		}
	}

	return &errors.ExhaustedRetriesError{
		Operation: operation,
		Attempts:  p.MaxAttempts,
		Err:       lastErr,
	}
}
