package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/fusionapi/upstream"
)

func newSWAPI(t *testing.T, routes map[string]string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path
		if r.URL.RawQuery != "" {
			key += "?" + r.URL.RawQuery
		}
		body, ok := routes[key]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	uc, err := upstream.New(upstream.Config{
		Service:    "swapi",
		BaseURL:    srv.URL + "/api",
		HTTPClient: srv.Client(),
		Timeout:    time.Second,
		RetryDelay: time.Millisecond,
	})
	require.NoError(t, err)
	return New(uc)
}

// TestClient_Character verifies person decoding and the homeworld id.
func TestClient_Character(t *testing.T) {
	c := newSWAPI(t, map[string]string{
		"/api/people/1/": `{"name":"Luke Skywalker","height":"172","mass":"77","gender":"male","birth_year":"19BBY","homeworld":"https://swapi.dev/api/planets/1/"}`,
	})

	got, err := c.Character(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Luke Skywalker", got.Name)
	assert.Equal(t, "19BBY", got.BirthYear)
	assert.Equal(t, "1", got.HomeworldID())
}

// TestClient_NotFound verifies 404 maps to ErrNotFound.
func TestClient_NotFound(t *testing.T) {
	c := newSWAPI(t, nil)

	_, err := c.Character(context.Background(), "999")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.Planet(context.Background(), "999")
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestClient_Characters verifies page queries and nullable links.
func TestClient_Characters(t *testing.T) {
	c := newSWAPI(t, map[string]string{
		"/api/people/?page=1": `{"count":82,"next":"https://swapi.dev/api/people/?page=2","previous":null,"results":[{"name":"Luke Skywalker"}]}`,
	})

	page, err := c.Characters(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 82, page.Count)
	require.NotNil(t, page.Next)
	assert.Equal(t, "https://swapi.dev/api/people/?page=2", *page.Next)
	assert.Nil(t, page.Previous)
	require.Len(t, page.Results, 1)
}

// TestIDFromURL verifies id extraction from resource URLs.
func TestIDFromURL(t *testing.T) {
	tests := map[string]string{
		"https://swapi.dev/api/planets/1/":  "1",
		"https://swapi.dev/api/planets/28":  "28",
		"https://swapi.dev/api/planets//7//": "7",
		"":                                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, IDFromURL(in), in)
	}
}
