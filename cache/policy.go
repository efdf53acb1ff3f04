package cache

import (
	"fmt"
	"time"
)

// MinTTL is the shortest lifetime a record can carry; expiries are stored in
// whole epoch seconds.
const MinTTL = time.Second

// Policy configures cache lifetimes.
type Policy struct {
	// DefaultTTL applies to entity entries when no override is given.
	DefaultTTL time.Duration

	// ListTTL applies to aggregate entries such as list pages.
	ListTTL time.Duration

	// HistoryRetention is the lifetime of history records.
	HistoryRetention time.Duration

	// MaxTTL clamps every cache TTL when set. Zero means no maximum.
	MaxTTL time.Duration
}

// DefaultPolicy returns the default caching policy.
// DefaultTTL: 30 minutes, ListTTL: 5 minutes, HistoryRetention: 30 days.
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL:       30 * time.Minute,
		ListTTL:          5 * time.Minute,
		HistoryRetention: 30 * 24 * time.Hour,
	}
}

// EffectiveTTL returns the TTL to use, applying defaults and clamping.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}

	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}
	if ttl < MinTTL {
		ttl = MinTTL
	}

	return ttl
}

// TTLFor returns the default lifetime for entries under key.
func (p Policy) TTLFor(key Key) time.Duration {
	if !key.Individual() && p.ListTTL > 0 {
		return p.EffectiveTTL(p.ListTTL)
	}
	return p.EffectiveTTL(0)
}

// Validate checks that every lifetime is at least MinTTL. ListTTL and MaxTTL
// may also be zero, meaning unset.
func (p Policy) Validate() error {
	if p.DefaultTTL < MinTTL {
		return fmt.Errorf("cache: default TTL must be at least %s, got %s", MinTTL, p.DefaultTTL)
	}
	if p.ListTTL != 0 && p.ListTTL < MinTTL {
		return fmt.Errorf("cache: list TTL must be zero or at least %s, got %s", MinTTL, p.ListTTL)
	}
	if p.HistoryRetention < MinTTL {
		return fmt.Errorf("cache: history retention must be at least %s, got %s", MinTTL, p.HistoryRetention)
	}
	if p.MaxTTL != 0 && p.MaxTTL < MinTTL {
		return fmt.Errorf("cache: max TTL must be zero or at least %s, got %s", MinTTL, p.MaxTTL)
	}
	return nil
}
