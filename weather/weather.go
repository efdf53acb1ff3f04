// Package weather is a client for the OpenWeather current-conditions API
// and the table that places fictional planets at real locations.
package weather

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jonwraymond/fusionapi/observe"
)

// DefaultBaseURL is the public OpenWeather API endpoint.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// ErrNoAPIKey is returned by Lookup when no key is configured and the
// fallback is disabled.
var ErrNoAPIKey = errors.New("weather: api key not configured")

// Conditions is the normalized current weather at a location.
type Conditions struct {
	Location    string  `json:"location"`
	Country     string  `json:"country,omitempty"`
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`

	// Fallback marks the canned conditions served without a live lookup.
	Fallback bool `json:"-"`
}

// Fallback returns the canned conditions used when the API is unreachable
// or unconfigured.
func Fallback() Conditions {
	return Conditions{
		Location:    "London",
		Country:     "GB",
		Temperature: 22.5,
		Condition:   "clear sky",
		Humidity:    65,
		WindSpeed:   3.6,
		Fallback:    true,
	}
}

// Config configures a Client.
type Config struct {
	// APIKey is the OpenWeather appid. Empty selects fallback data.
	APIKey string

	// FallbackOnError serves Fallback() instead of returning errors.
	FallbackOnError bool
}

// Getter is the transport Client needs; *upstream.Client implements it.
type Getter interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used to report fallbacks.
func WithLogger(l observe.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client looks up current conditions.
type Client struct {
	cfg    Config
	http   Getter
	logger observe.Logger
}

// New creates a Client over g.
func New(g Getter, cfg Config, opts ...Option) *Client {
	c := &Client{cfg: cfg, http: g, logger: observe.NopLogger()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasAPIKey reports whether live lookups are possible.
func (c *Client) HasAPIKey() bool {
	return strings.TrimSpace(c.cfg.APIKey) != ""
}

// Lookup returns current conditions for city in the ISO country code.
func (c *Client) Lookup(ctx context.Context, city, country string) (Conditions, error) {
	if !c.HasAPIKey() {
		if c.cfg.FallbackOnError {
			c.logger.Debug(ctx, "weather api key not configured, serving fallback")
			return Fallback(), nil
		}
		return Conditions{}, ErrNoAPIKey
	}

	q := url.Values{
		"q":     {city + "," + country},
		"appid": {c.cfg.APIKey},
		"units": {"metric"},
	}
	var resp currentResponse
	if err := c.http.GetJSON(ctx, "/weather", q, &resp); err != nil {
		if c.cfg.FallbackOnError && ctx.Err() == nil {
			c.logger.Warn(ctx, "weather lookup failed, serving fallback",
				observe.Field{Key: "city", Value: city}, observe.Err(err))
			return Fallback(), nil
		}
		return Conditions{}, fmt.Errorf("weather: lookup %s,%s: %w", city, country, err)
	}
	return resp.conditions(), nil
}

type currentResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
}

func (r currentResponse) conditions() Conditions {
	cond := "Unknown"
	if len(r.Weather) > 0 && r.Weather[0].Description != "" {
		cond = r.Weather[0].Description
	}
	return Conditions{
		Location:    r.Name,
		Country:     r.Sys.Country,
		Temperature: r.Main.Temp,
		Condition:   cond,
		Humidity:    r.Main.Humidity,
		WindSpeed:   r.Wind.Speed,
	}
}
