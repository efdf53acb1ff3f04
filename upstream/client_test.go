package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/fusionapi/resilience"
)

type person struct {
	Name string `json:"name"`
}

func newTestClient(t *testing.T, srv *httptest.Server, mutate ...func(*Config)) *Client {
	t.Helper()
	cfg := Config{
		Service:        "swapi",
		BaseURL:        srv.URL + "/api",
		Timeout:        time.Second,
		RetryDelay:     time.Millisecond,
		HTTPClient:     srv.Client(),
		BreakerOpenFor: time.Hour,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

// TestGetJSON_DecodesBody verifies path joining, query encoding and decoding.
func TestGetJSON_DecodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/people/", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"name":"Luke Skywalker"}`))
	}))
	defer srv.Close()

	var got person
	err := newTestClient(t, srv).GetJSON(context.Background(), "/people/", url.Values{"page": {"2"}}, &got)
	require.NoError(t, err)
	assert.Equal(t, "Luke Skywalker", got.Name)
}

// TestGetJSON_NotFound verifies 404 is permanent and matches ErrNotFound.
func TestGetJSON_NotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, func(cfg *Config) { cfg.BreakerFailures = 1 })
	err := c.GetJSON(context.Background(), "/people/999/", nil, &person{})

	require.ErrorIs(t, err, ErrNotFound)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, int32(1), calls.Load(), "404 must not be retried")
	assert.Equal(t, resilience.StateClosed, c.Breaker().State(), "404 must not trip the breaker")
}

// TestGetJSON_RetriesServerErrors verifies 5xx responses are retried.
func TestGetJSON_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"name":"Leia Organa"}`))
	}))
	defer srv.Close()

	var got person
	require.NoError(t, newTestClient(t, srv).GetJSON(context.Background(), "/people/5/", nil, &got))
	assert.Equal(t, "Leia Organa", got.Name)
	assert.Equal(t, int32(3), calls.Load())
}

// TestGetJSON_BreakerOpens verifies repeated failures short-circuit later calls.
func TestGetJSON_BreakerOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, func(cfg *Config) {
		cfg.MaxAttempts = 1
		cfg.BreakerFailures = 2
	})
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_ = c.GetJSON(ctx, "/planets/1/", nil, &person{})
	}

	err := c.GetJSON(ctx, "/planets/1/", nil, &person{})
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
}

// TestGetJSON_DecodeError verifies malformed bodies are permanent errors.
func TestGetJSON_DecodeError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	err := newTestClient(t, srv).GetJSON(context.Background(), "/people/1/", nil, &person{})
	assert.ErrorIs(t, err, ErrDecode)
	assert.Equal(t, int32(1), calls.Load())
}

// TestGetJSON_AttemptTimeout verifies slow responses time out per attempt.
func TestGetJSON_AttemptTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv, func(cfg *Config) {
		cfg.Timeout = 20 * time.Millisecond
		cfg.MaxAttempts = 1
	})
	err := c.GetJSON(context.Background(), "/people/1/", nil, &person{})
	assert.ErrorIs(t, err, resilience.ErrTimeout)
}

// TestIsTransient classifies representative errors.
func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"404", &StatusError{Code: 404}, false},
		{"400", &StatusError{Code: 400}, false},
		{"429", &StatusError{Code: 429}, true},
		{"503", &StatusError{Code: 503}, true},
		{"decode", ErrDecode, false},
		{"timeout", resilience.ErrTimeout, true},
		{"canceled", context.Canceled, false},
		{"breaker", resilience.ErrCircuitOpen, false},
		{"opaque", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

// TestConfig_Validate verifies required fields.
func TestConfig_Validate(t *testing.T) {
	assert.Error(t, Config{BaseURL: "https://swapi.dev/api"}.Validate())
	assert.Error(t, Config{Service: "swapi", BaseURL: "not a url"}.Validate())
	assert.NoError(t, Config{Service: "swapi", BaseURL: "https://swapi.dev/api"}.Validate())
}
