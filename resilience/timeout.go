package resilience

import (
	"context"
	"errors"
	"time"
)

// WithTimeout runs op with a deadline of d. When the deadline fires while
// ctx itself is still live the error is ErrTimeout, joined with op's error.
// A non-positive d runs op with ctx unchanged.
func WithTimeout(ctx context.Context, d time.Duration, op func(context.Context) error) error {
	if d <= 0 {
		return op(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	err := op(attemptCtx)
	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return errors.Join(ErrTimeout, err)
	}
	return err
}
