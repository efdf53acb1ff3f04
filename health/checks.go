package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/fusionapi/resilience"
	"github.com/jonwraymond/fusionapi/store"
)

// NewStoreChecker reports the store unhealthy when a one-record scan
// fails.
func NewStoreChecker(s store.Store) Checker {
	return Named("store", func(ctx context.Context) Result {
		page, err := s.Scan(ctx, 1, "")
		if err != nil {
			return Unhealthy("store unreachable", err)
		}
		return Healthy("store reachable").WithDetails(map[string]any{
			"sampled": len(page.Items),
		})
	})
}

// NewBreakerChecker reports an upstream degraded while its circuit breaker
// is open or half-open. Fusion requests keep answering from the cache, so
// an open breaker never makes the service unhealthy.
func NewBreakerChecker(b *resilience.Breaker) Checker {
	return Named(b.Snapshot().Name, func(context.Context) Result {
		snap := b.Snapshot()
		details := map[string]any{
			"state":    snap.State.String(),
			"failures": snap.Failures,
		}
		if snap.LastError != "" {
			details["lastError"] = snap.LastError
		}
		if snap.State == resilience.StateClosed {
			return Healthy("circuit closed").WithDetails(details)
		}
		return Degraded(fmt.Sprintf("circuit %s", snap.State)).WithDetails(details)
	})
}

// NewAPIKeyChecker reports name degraded when hasKey is false; the weather
// client then serves fallback conditions.
func NewAPIKeyChecker(name string, hasKey func() bool) Checker {
	return Named(name, func(context.Context) Result {
		if hasKey() {
			return Healthy("api key configured")
		}
		return Degraded("api key not configured, serving fallback data")
	})
}
