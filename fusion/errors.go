package fusion

import "errors"

// Sentinel errors returned by the Orchestrator. Callers match them with
// errors.Is; the wrapped message carries the detail.
var (
	// ErrInvalidInput is returned for malformed ids, pages or documents.
	ErrInvalidInput = errors.New("fusion: invalid input")

	// ErrNotFound is returned when the catalog has no such character.
	ErrNotFound = errors.New("fusion: not found")

	// ErrUpstream is returned when the primary catalog fetch fails.
	ErrUpstream = errors.New("fusion: upstream unavailable")
)
