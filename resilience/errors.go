package resilience

import "errors"

var (
	// ErrCircuitOpen is returned without calling the operation while the
	// breaker is open.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrTimeout indicates an attempt exceeded its own deadline while the
	// caller's context was still live.
	ErrTimeout = errors.New("resilience: attempt timed out")
)
