package resilience

import (
	"context"
	"time"
)

// Guard composes a breaker, retries and a per-attempt timeout. Any of them
// may be nil.
type Guard struct {
	breaker *Breaker
	retry   *Retry
	timeout time.Duration
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithBreaker adds a circuit breaker around the whole retry loop.
func WithBreaker(b *Breaker) GuardOption {
	return func(g *Guard) { g.breaker = b }
}

// WithRetry retries transient failures.
func WithRetry(r *Retry) GuardOption {
	return func(g *Guard) { g.retry = r }
}

// WithAttemptTimeout bounds every attempt.
func WithAttemptTimeout(d time.Duration) GuardOption {
	return func(g *Guard) { g.timeout = d }
}

// NewGuard creates a Guard.
func NewGuard(opts ...GuardOption) *Guard {
	g := &Guard{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Breaker returns the guard's breaker, or nil.
func (g *Guard) Breaker() *Breaker { return g.breaker }

// Do runs op under the configured policies.
func (g *Guard) Do(ctx context.Context, op func(context.Context) error) error {
	attempt := func(ctx context.Context) error {
		return WithTimeout(ctx, g.timeout, op)
	}

	retried := attempt
	if g.retry != nil {
		retried = func(ctx context.Context) error {
			return g.retry.Do(ctx, attempt)
		}
	}

	if g.breaker != nil {
		return g.breaker.Do(ctx, retried)
	}
	return retried(ctx)
}
