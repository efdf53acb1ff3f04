package resilience

import (
	"context"
	"sync"
	"time"
)

// State is the state of a circuit breaker.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures a Breaker.
type BreakerConfig struct {
	// Name identifies the guarded dependency in callbacks and snapshots.
	Name string

	// MaxFailures is the number of consecutive failures that opens the
	// breaker. Default 5.
	MaxFailures int

	// OpenFor is how long the breaker stays open before letting one probe
	// through. Default 30s.
	OpenFor time.Duration

	// IsFailure decides which errors count. Default: any non-nil error.
	IsFailure func(err error) bool

	// OnStateChange is called with the breaker lock held; keep it short.
	OnStateChange func(name string, from, to State)

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Breaker is a consecutive-failure circuit breaker.
type Breaker struct {
	config BreakerConfig

	mu        sync.Mutex
	state     State
	failures  int
	openedAt  time.Time
	probing   bool
	lastError string
}

// NewBreaker creates a closed Breaker, applying defaults for zero fields.
func NewBreaker(config BreakerConfig) *Breaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.OpenFor <= 0 {
		config.OpenFor = 30 * time.Second
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Breaker{config: config}
}

// Do runs op unless the breaker is open.
func (b *Breaker) Do(ctx context.Context, op func(context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := op(ctx)
	b.record(err)
	return err
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.stateLocked() {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if b.probing {
			return ErrCircuitOpen
		}
		b.probing = true
	}
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	failed := b.config.IsFailure(err)
	if failed {
		b.lastError = err.Error()
	}

	switch b.state {
	case StateClosed:
		if !failed {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.config.MaxFailures {
			b.transition(StateOpen)
		}

	case StateHalfOpen:
		b.probing = false
		if failed {
			b.transition(StateOpen)
			return
		}
		b.failures = 0
		b.transition(StateClosed)
	}
}

// stateLocked moves an open breaker to half-open once OpenFor has passed.
func (b *Breaker) stateLocked() State {
	if b.state == StateOpen && b.config.Now().Sub(b.openedAt) >= b.config.OpenFor {
		b.transition(StateHalfOpen)
	}
	return b.state
}

func (b *Breaker) transition(to State) {
	from := b.state
	b.state = to
	switch to {
	case StateOpen:
		b.openedAt = b.config.Now()
	case StateHalfOpen:
		b.probing = false
	}
	if from != to && b.config.OnStateChange != nil {
		b.config.OnStateChange(b.config.Name, from, to)
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

// Reset closes the breaker and clears its failure count.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.probing = false
	b.transition(StateClosed)
}

// BreakerSnapshot is a point-in-time view of a Breaker.
type BreakerSnapshot struct {
	Name      string
	State     State
	Failures  int
	OpenedAt  time.Time
	LastError string
}

// Snapshot returns the breaker's current counters.
func (b *Breaker) Snapshot() BreakerSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BreakerSnapshot{
		Name:      b.config.Name,
		State:     b.stateLocked(),
		Failures:  b.failures,
		OpenedAt:  b.openedAt,
		LastError: b.lastError,
	}
}
