package httputil

import (
	"context"
	"errors"
	"testing"
	"time"

	fgerrors "github.com/matzehuels/fusiongraph/pkg/errors"
)

var errTransient = errors.New("transient")

func TestRetrySuccessFirstTry(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Retry() error: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryNonRetryableStopsImmediately(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Errorf("Retry() error = %v, want %v", err, permanent)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryRetryableUntilSuccess(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return Retryable(errTransient)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry() error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryExhausted(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 2, time.Millisecond, func() error {
		calls++
		return Retryable(errTransient)
	})
	if !errors.Is(err, errTransient) {
		t.Errorf("Retry() error = %v, want %v", err, errTransient)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestRetrySingleAttempt(t *testing.T) {
	for _, attempts := range []int{0, 1} {
		calls := 0
		_ = Retry(context.Background(), attempts, time.Millisecond, func() error {
			calls++
			return Retryable(errTransient)
		})
		if calls != 1 {
			t.Errorf("attempts=%d: calls = %d, want 1", attempts, calls)
		}
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Hour, func() error {
		return Retryable(errTransient)
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry() error = %v, want context.Canceled", err)
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(errTransient)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != errTransient.Error() {
		t.Errorf("message = %q, want %q", err.Error(), errTransient.Error())
	}
	if IsRetryable(errTransient) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWait(t *testing.T) {
	limited := func(seconds int) error {
		return fgerrors.Wrap(fgerrors.ErrCodeRateLimited,
			Retryable(&fgerrors.RateLimitedError{RetryAfter: seconds}), "GetComponentVersions")
	}

	tests := []struct {
		name  string
		err   error
		delay time.Duration
		want  time.Duration
	}{
		{"transient", Retryable(errTransient), time.Second, time.Second},
		{"retry after", limited(5), time.Second, 5 * time.Second},
		{"retry after shorter than backoff", limited(1), 4 * time.Second, 4 * time.Second},
		{"retry after capped", limited(3600), time.Second, MaxRetryAfter},
		{"no retry after", limited(0), 2 * time.Second, 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wait(tt.err, tt.delay); got != tt.want {
				t.Errorf("wait() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetryRateLimited(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 2, time.Millisecond, func() error {
		calls++
		if calls == 1 {
			return fgerrors.Wrap(fgerrors.ErrCodeRateLimited, Retryable(&fgerrors.RateLimitedError{}), "GetModelHierarchy")
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("Retry() = %v after %d calls, want success after 2", err, calls)
	}
}
