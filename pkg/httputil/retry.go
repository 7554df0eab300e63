package httputil

import (
	"context"
	"errors"
	"time"

	fgerrors "github.com/matzehuels/fusiongraph/pkg/errors"
)

const (
	// MaxBackoff caps the doubling delay between attempts.
	MaxBackoff = 30 * time.Second

	// MaxRetryAfter caps how long a Retry-After header may hold a retry.
	MaxRetryAfter = time.Minute
)

// RetryableError marks a transient failure: a network error, a 5xx
// response or a 429 from the API.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a [RetryableError]. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err carries a [RetryableError] in its chain.
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Retry runs fn up to attempts times. Only errors marked with [Retryable]
// are retried; the wait starts at delay and doubles up to [MaxBackoff]. A
// rate limited failure waits for the server's Retry-After instead when that
// is longer. It returns the last error, or ctx.Err() when cancelled while
// waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var err error
	for i := range attempts {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		t := time.NewTimer(wait(err, delay))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay = min(delay*2, MaxBackoff)
	}
	return err
}

// wait returns the pause before retrying err.
func wait(err error, delay time.Duration) time.Duration {
	var rl *fgerrors.RateLimitedError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return max(delay, min(time.Duration(rl.RetryAfter)*time.Second, MaxRetryAfter))
	}
	return delay
}
