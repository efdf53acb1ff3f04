package main

import (
	"errors"

	"github.com/jonwraymond/fusionapi/fusion"
)

// Exit codes for fusionctl.
const (
	ExitFailure   = 1 // upstream or store failure
	ExitUsage     = 2 // invalid flags, arguments or input
	ExitNotFound  = 3 // the requested character does not exist
	ExitUnhealthy = 4 // health check reported unhealthy
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error {
	return &exitError{code: ExitUsage, err: err}
}

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	var ee *exitError
	switch {
	case errors.As(err, &ee):
		return ee.code
	case errors.Is(err, fusion.ErrInvalidInput):
		return ExitUsage
	case errors.Is(err, fusion.ErrNotFound):
		return ExitNotFound
	default:
		return ExitFailure
	}
}
