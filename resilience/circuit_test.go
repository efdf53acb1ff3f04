package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

var errDown = errors.New("service down")

func fail(context.Context) error    { return errDown }
func succeed(context.Context) error { return nil }

// TestBreaker_OpensAfterMaxFailures verifies consecutive failures open the breaker.
func TestBreaker_OpensAfterMaxFailures(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	b := NewBreaker(BreakerConfig{MaxFailures: 2, Now: clk.Now})
	ctx := context.Background()

	_ = b.Do(ctx, fail)
	if b.State() != StateClosed {
		t.Fatalf("state after 1 failure = %v, want closed", b.State())
	}
	_ = b.Do(ctx, fail)
	if b.State() != StateOpen {
		t.Fatalf("state after 2 failures = %v, want open", b.State())
	}

	called := false
	err := b.Do(ctx, func(context.Context) error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) || called {
		t.Errorf("open breaker: err=%v called=%v", err, called)
	}
}

// TestBreaker_SuccessResetsCount verifies failures must be consecutive.
func TestBreaker_SuccessResetsCount(t *testing.T) {
	b := NewBreaker(BreakerConfig{MaxFailures: 2})
	ctx := context.Background()

	_ = b.Do(ctx, fail)
	_ = b.Do(ctx, succeed)
	_ = b.Do(ctx, fail)
	if b.State() != StateClosed {
		t.Errorf("state = %v, want closed", b.State())
	}
}

// TestBreaker_HalfOpenProbe verifies one probe is admitted after OpenFor.
func TestBreaker_HalfOpenProbe(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	var transitions []string
	b := NewBreaker(BreakerConfig{
		Name:        "catalog",
		MaxFailures: 1,
		OpenFor:     10 * time.Second,
		Now:         clk.Now,
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, name+":"+from.String()+"->"+to.String())
		},
	})
	ctx := context.Background()

	_ = b.Do(ctx, fail)
	clk.now = clk.now.Add(10 * time.Second)
	if b.State() != StateHalfOpen {
		t.Fatalf("state = %v, want half-open", b.State())
	}
	if err := b.Do(ctx, succeed); err != nil {
		t.Fatalf("probe error = %v", err)
	}
	if b.State() != StateClosed {
		t.Errorf("state after probe = %v, want closed", b.State())
	}

	want := []string{"catalog:closed->open", "catalog:open->half-open", "catalog:half-open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition[%d] = %q, want %q", i, transitions[i], want[i])
		}
	}
}

// TestBreaker_FailedProbeReopens verifies a failing probe reopens the breaker.
func TestBreaker_FailedProbeReopens(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	b := NewBreaker(BreakerConfig{MaxFailures: 1, OpenFor: time.Second, Now: clk.Now})
	ctx := context.Background()

	_ = b.Do(ctx, fail)
	clk.now = clk.now.Add(time.Second)
	_ = b.Do(ctx, fail)

	snap := b.Snapshot()
	if snap.State != StateOpen {
		t.Errorf("state = %v, want open", snap.State)
	}
	if snap.LastError != errDown.Error() {
		t.Errorf("LastError = %q, want %q", snap.LastError, errDown.Error())
	}
}

// TestBreaker_IsFailure verifies ignored errors do not count.
func TestBreaker_IsFailure(t *testing.T) {
	notFound := errors.New("not found")
	b := NewBreaker(BreakerConfig{
		MaxFailures: 1,
		IsFailure:   func(err error) bool { return err != nil && !errors.Is(err, notFound) },
	})

	_ = b.Do(context.Background(), func(context.Context) error { return notFound })
	if b.State() != StateClosed {
		t.Errorf("state = %v, want closed", b.State())
	}
}

// TestBreaker_Reset verifies Reset closes an open breaker.
func TestBreaker_Reset(t *testing.T) {
	b := NewBreaker(BreakerConfig{MaxFailures: 1})
	_ = b.Do(context.Background(), fail)
	b.Reset()
	if b.State() != StateClosed {
		t.Errorf("state = %v, want closed", b.State())
	}
}
