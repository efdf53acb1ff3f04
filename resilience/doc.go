// Package resilience guards calls to remote services.
//
// A Guard composes three policies, outermost first:
//
//   - a circuit breaker that rejects calls while a dependency is failing,
//   - retries with exponential backoff and jitter for transient errors,
//   - a timeout applied to every individual attempt.
//
// Each policy is also usable on its own.
package resilience
