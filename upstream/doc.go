// Package upstream is the shared JSON-over-HTTP client for the catalog and
// weather APIs.
//
// Every GET runs under a resilience.Guard: a circuit breaker per client,
// retries for transient failures (network errors, 429 and 5xx responses) and
// a per-attempt timeout. Non-2xx responses become *StatusError; a 404 also
// matches ErrNotFound.
package upstream
