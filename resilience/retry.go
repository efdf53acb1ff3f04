package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig configures Retry.
type RetryConfig struct {
	// MaxAttempts includes the first call. Default 3.
	MaxAttempts int

	// InitialDelay is the wait after the first failure. Default 100ms.
	InitialDelay time.Duration

	// MaxDelay caps the backoff. Default 5s.
	MaxDelay time.Duration

	// Multiplier grows the delay between attempts. Default 2.
	Multiplier float64

	// Jitter adds up to 25% random delay.
	Jitter bool

	// RetryIf decides whether an error is transient. Default: any error
	// except ErrCircuitOpen and context cancellation.
	RetryIf func(err error) bool

	// OnRetry is called before each wait.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry re-runs an operation with exponential backoff.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a Retry, applying defaults for zero fields.
func NewRetry(config RetryConfig) *Retry {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 5 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if config.RetryIf == nil {
		config.RetryIf = defaultRetryIf
	}
	return &Retry{config: config}
}

func defaultRetryIf(err error) bool {
	return err != nil &&
		!errors.Is(err, ErrCircuitOpen) &&
		!errors.Is(err, context.Canceled)
}

// Do runs op until it succeeds, returns a non-transient error, or the
// attempts are used up. The last error is returned.
func (r *Retry) Do(ctx context.Context, op func(context.Context) error) error {
	var err error
	for attempt := 1; ; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt >= r.config.MaxAttempts || !r.config.RetryIf(err) {
			return err
		}

		delay := r.backoff(attempt)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
}

func (r *Retry) backoff(attempt int) time.Duration {
	delay := time.Duration(float64(r.config.InitialDelay) * math.Pow(r.config.Multiplier, float64(attempt-1)))
	if delay > r.config.MaxDelay {
		delay = r.config.MaxDelay
	}
	if r.config.Jitter && delay >= 4 {
		delay += time.Duration(rand.Int64N(int64(delay / 4)))
	}
	return delay
}

// Config returns the effective configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}
