package resilience

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	apperrors "github.com/sarnews/newsearch/pkg/errors"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestRetrySucceedsEventually(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "redis", fastRetry(3), func() error {
		calls++
		if calls < 3 {
			return errors.New("refused")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("Retry() = %v after %d calls", err, calls)
	}
}

func TestRetryGivesUp(t *testing.T) {
	boom := errors.New("refused")
	calls := 0
	err := Retry(context.Background(), "redis", fastRetry(2), func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) || calls != 2 {
		t.Fatalf("Retry() = %v after %d calls", err, calls)
	}
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	cfg := fastRetry(5)
	cfg.Retryable = func(err error) bool { return !errors.Is(err, apperrors.ErrInvalidInput) }
	calls := 0
	err := Retry(context.Background(), "postgres", cfg, func() error {
		calls++
		return apperrors.ErrInvalidInput
	})
	if !errors.Is(err, apperrors.ErrInvalidInput) || calls != 1 {
		t.Fatalf("Retry() = %v after %d calls", err, calls)
	}
}

func TestRetryHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, "kafka", fastRetry(5), func() error { return errors.New("x") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Retry() = %v, want context.Canceled", err)
	}
}

func TestComputeDelayIsCapped(t *testing.T) {
	cfg := RetryConfig{InitialDelay: time.Second, MaxDelay: 3 * time.Second, Multiplier: 10, JitterFraction: 0.1}
	if d := computeDelay(4, cfg); d != 3*time.Second {
		t.Errorf("delay = %v, want cap", d)
	}
}

func TestWithTimeout(t *testing.T) {
	err := WithTimeout(context.Background(), 10*time.Millisecond, "query", func(ctx context.Context) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	})
	if !errors.Is(err, apperrors.ErrTimeout) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("WithTimeout() = %v", err)
	}

	want := errors.New("bad")
	if err := WithTimeout(context.Background(), time.Second, "query", func(context.Context) error { return want }); err != want {
		t.Errorf("WithTimeout() = %v, want passthrough", err)
	}
	if err := WithTimeout(context.Background(), 0, "query", func(context.Context) error { return nil }); err != nil {
		t.Errorf("unbounded WithTimeout() = %v", err)
	}
}

func TestWithTimeoutParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	defer close(release)

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := WithTimeout(ctx, time.Second, "query", func(context.Context) error {
		<-release
		return nil
	})
	if !errors.Is(err, apperrors.ErrTimeout) || !errors.Is(err, context.Canceled) {
		t.Fatalf("WithTimeout() = %v, want ErrTimeout wrapping context.Canceled", err)
	}
	if got := apperrors.HTTPStatusCode(err); got != http.StatusServiceUnavailable {
		t.Errorf("HTTPStatusCode = %d, want 503", got)
	}
}
