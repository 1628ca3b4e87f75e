package resilience

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/sarnews/newsearch/pkg/errors"
)

// WithTimeout runs fn under a context cancelled after timeout. When the
// deadline passes or the parent is cancelled first, the returned error wraps
// errors.ErrTimeout and the context error. A non-positive timeout runs fn
// unbounded.
func WithTimeout(ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- fn(timeoutCtx)
	}()
	select {
	case err := <-done:
		return err
	case <-timeoutCtx.Done():
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w: parent context cancelled: %w", name, apperrors.ErrTimeout, ctx.Err())
		}
		return fmt.Errorf("%s: %w: %w (limit: %v)", name, apperrors.ErrTimeout, context.DeadlineExceeded, timeout)
	}
}
