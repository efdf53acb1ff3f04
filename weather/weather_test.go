package weather

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/fusionapi/upstream"
)

type mockGetter struct {
	mock.Mock
}

func (m *mockGetter) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	args := m.Called(ctx, path, query, out)
	if fill, ok := args.Get(1).(func(any)); ok && fill != nil {
		fill(out)
	}
	return args.Error(0)
}

// TestLookup_Live verifies query parameters and normalization.
func TestLookup_Live(t *testing.T) {
	g := &mockGetter{}
	want := url.Values{"q": {"Tunis,TN"}, "appid": {"k"}, "units": {"metric"}}
	g.On("GetJSON", mock.Anything, "/weather", want, mock.Anything).Return(nil, func(out any) {
		r := out.(*currentResponse)
		r.Name = "Tunis"
		r.Sys.Country = "TN"
		r.Main.Temp = 31.2
		r.Main.Humidity = 40
		r.Wind.Speed = 5.1
		r.Weather = append(r.Weather, struct {
			Description string `json:"description"`
		}{Description: "few clouds"})
	})

	c := New(g, Config{APIKey: "k", FallbackOnError: true})
	got, err := c.Lookup(context.Background(), "Tunis", "TN")
	require.NoError(t, err)
	assert.Equal(t, Conditions{
		Location: "Tunis", Country: "TN", Temperature: 31.2,
		Condition: "few clouds", Humidity: 40, WindSpeed: 5.1,
	}, got)
	g.AssertExpectations(t)
}

// TestLookup_MissingCondition verifies the "Unknown" default.
func TestLookup_MissingCondition(t *testing.T) {
	g := &mockGetter{}
	g.On("GetJSON", mock.Anything, "/weather", mock.Anything, mock.Anything).Return(nil, nil)

	got, err := New(g, Config{APIKey: "k"}).Lookup(context.Background(), "Tunis", "TN")
	require.NoError(t, err)
	assert.Equal(t, "Unknown", got.Condition)
	assert.False(t, got.Fallback)
}

// TestLookup_NoKey verifies the fallback without an API key and that no
// request is made.
func TestLookup_NoKey(t *testing.T) {
	g := &mockGetter{}

	got, err := New(g, Config{FallbackOnError: true}).Lookup(context.Background(), "Tunis", "TN")
	require.NoError(t, err)
	assert.Equal(t, Fallback(), got)
	g.AssertNotCalled(t, "GetJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	_, err = New(g, Config{}).Lookup(context.Background(), "Tunis", "TN")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

// TestLookup_ErrorFallback verifies failures are masked only when enabled.
func TestLookup_ErrorFallback(t *testing.T) {
	boom := &upstream.StatusError{Service: "openweather", Path: "/weather", Code: 503}
	g := &mockGetter{}
	g.On("GetJSON", mock.Anything, "/weather", mock.Anything, mock.Anything).Return(boom, nil)

	got, err := New(g, Config{APIKey: "k", FallbackOnError: true}).Lookup(context.Background(), "Tunis", "TN")
	require.NoError(t, err)
	assert.True(t, got.Fallback)

	_, err = New(g, Config{APIKey: "k"}).Lookup(context.Background(), "Tunis", "TN")
	var se *upstream.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 503, se.Code)
}

// TestLocationFor verifies the planet table and its default.
func TestLocationFor(t *testing.T) {
	tests := []struct {
		planet string
		want   Location
	}{
		{"Tatooine", Location{"Tunis", "TN"}},
		{"Hoth", Location{"Vostok Station", "AQ"}},
		{"Kamino", Location{"Male", "MV"}},
		{"tatooine", DefaultLocation},
		{"", DefaultLocation},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LocationFor(tt.planet), tt.planet)
	}
	assert.Equal(t, "Tunis, TN", LocationFor("Tatooine").String())
}
