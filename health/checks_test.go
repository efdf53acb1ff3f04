package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonwraymond/fusionapi/resilience"
	"github.com/jonwraymond/fusionapi/store"
)

type downBackend struct{}

func (downBackend) Execute(context.Context, store.Request) (store.Response, error) {
	return store.Response{}, errors.New("connection refused")
}

func TestStoreChecker(t *testing.T) {
	ctx := context.Background()

	healthy := NewStoreChecker(store.New(store.NewMemory())).Check(ctx)
	if healthy.Status != StatusHealthy {
		t.Errorf("memory store status = %v, want healthy", healthy.Status)
	}

	down := NewStoreChecker(store.New(downBackend{})).Check(ctx)
	if down.Status != StatusUnhealthy {
		t.Errorf("down store status = %v, want unhealthy", down.Status)
	}
	if !errors.Is(down.Error, store.ErrUnavailable) {
		t.Errorf("down store error = %v, want ErrUnavailable", down.Error)
	}
}

func TestBreakerChecker(t *testing.T) {
	b := resilience.NewBreaker(resilience.BreakerConfig{Name: "swapi", MaxFailures: 1, OpenFor: time.Hour})
	checker := NewBreakerChecker(b)

	if checker.Name() != "swapi" {
		t.Errorf("Name() = %q, want swapi", checker.Name())
	}
	if got := checker.Check(context.Background()).Status; got != StatusHealthy {
		t.Errorf("closed breaker status = %v, want healthy", got)
	}

	_ = b.Do(context.Background(), func(context.Context) error { return errors.New("503") })

	result := checker.Check(context.Background())
	if result.Status != StatusDegraded {
		t.Errorf("open breaker status = %v, want degraded", result.Status)
	}
	if result.Details["state"] != resilience.StateOpen.String() {
		t.Errorf("details.state = %v, want %v", result.Details["state"], resilience.StateOpen)
	}
}

func TestAPIKeyChecker(t *testing.T) {
	has := false
	checker := NewAPIKeyChecker("weather", func() bool { return has })

	if got := checker.Check(context.Background()).Status; got != StatusDegraded {
		t.Errorf("missing key status = %v, want degraded", got)
	}
	has = true
	if got := checker.Check(context.Background()).Status; got != StatusHealthy {
		t.Errorf("configured key status = %v, want healthy", got)
	}
}
