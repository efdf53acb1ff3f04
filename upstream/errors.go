package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/jonwraymond/fusionapi/resilience"
)

var (
	// ErrNotFound matches a *StatusError with status 404.
	ErrNotFound = errors.New("upstream: not found")

	// ErrDecode indicates a 2xx response whose body is not the expected JSON.
	ErrDecode = errors.New("upstream: invalid response body")
)

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	Service string
	Path    string
	Code    int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream: %s %s: %d %s", e.Service, e.Path, e.Code, http.StatusText(e.Code))
}

// Is makes 404 responses match ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

// IsTransient reports whether err is worth retrying: transport failures,
// attempt timeouts, 429 and 5xx responses.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, resilience.ErrCircuitOpen) {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	if errors.Is(err, ErrDecode) {
		return false
	}
	if errors.Is(err, resilience.ErrTimeout) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var ne net.Error
	return errors.As(err, &ne) || errors.Is(err, context.DeadlineExceeded)
}
