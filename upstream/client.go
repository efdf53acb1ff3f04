package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jonwraymond/fusionapi/observe"
	"github.com/jonwraymond/fusionapi/resilience"
)

// Defaults applied by New.
const (
	DefaultTimeout     = 10 * time.Second
	DefaultMaxAttempts = 3
	maxErrorBody       = 4 << 10
)

// Config configures a Client.
type Config struct {
	// Service names the API in errors, logs and spans, e.g. "swapi".
	Service string

	// BaseURL is prefixed to every request path.
	BaseURL string

	// Timeout bounds each attempt. Default 10s.
	Timeout time.Duration

	// MaxAttempts includes the first try. Default 3; 1 disables retries.
	MaxAttempts int

	// RetryDelay is the first backoff delay. Default 100ms.
	RetryDelay time.Duration

	// BreakerFailures opens the breaker after this many consecutive failed
	// calls. Default 5.
	BreakerFailures int

	// BreakerOpenFor is how long the breaker stays open. Default 30s.
	BreakerOpenFor time.Duration

	// HTTPClient is used for requests. If nil, a client with an OpenTelemetry
	// transport is used.
	HTTPClient *http.Client
}

// Validate checks required fields.
func (c Config) Validate() error {
	if c.Service == "" {
		return errors.New("upstream: service name is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("upstream: invalid base URL %q", c.BaseURL)
	}
	return nil
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the request logger.
func WithLogger(l observe.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client performs guarded JSON GET requests against one API.
type Client struct {
	cfg     Config
	base    *url.URL
	http    *http.Client
	guard   *resilience.Guard
	breaker *resilience.Breaker
	logger  observe.Logger
}

// New creates a Client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	base, _ := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))

	c := &Client{
		cfg:    cfg,
		base:   base,
		http:   cfg.HTTPClient,
		logger: observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = resilience.NewBreaker(resilience.BreakerConfig{
		Name:        cfg.Service,
		MaxFailures: cfg.BreakerFailures,
		OpenFor:     cfg.BreakerOpenFor,
		IsFailure:   IsTransient,
		OnStateChange: func(name string, from, to resilience.State) {
			c.logger.Warn(context.Background(), "circuit breaker state changed",
				observe.Field{Key: "service", Value: name},
				observe.Field{Key: "from", Value: from.String()},
				observe.Field{Key: "to", Value: to.String()},
			)
		},
	})
	c.guard = resilience.NewGuard(
		resilience.WithBreaker(c.breaker),
		resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  cfg.MaxAttempts,
			InitialDelay: cfg.RetryDelay,
			Jitter:       true,
			RetryIf:      IsTransient,
			OnRetry: func(attempt int, err error, delay time.Duration) {
				c.logger.Debug(context.Background(), "retrying upstream request",
					observe.Field{Key: "service", Value: cfg.Service},
					observe.Field{Key: "attempt", Value: attempt},
					observe.Field{Key: "delay_ms", Value: delay.Milliseconds()},
					observe.Err(err),
				)
			},
		})),
		resilience.WithAttemptTimeout(cfg.Timeout),
	)
	return c, nil
}

// Service returns the configured service name.
func (c *Client) Service() string { return c.cfg.Service }

// Breaker exposes the client's circuit breaker for health reporting.
func (c *Client) Breaker() *resilience.Breaker { return c.breaker }

// GetJSON fetches BaseURL+path with query and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	target := c.base.JoinPath(path)
	if strings.HasSuffix(path, "/") && !strings.HasSuffix(target.Path, "/") {
		target.Path += "/"
	}
	target.RawQuery = query.Encode()

	start := time.Now()
	err := c.guard.Do(ctx, func(ctx context.Context) error {
		return c.get(ctx, target.String(), path, out)
	})

	fields := []observe.Field{
		{Key: "service", Value: c.cfg.Service},
		{Key: "path", Value: path},
		{Key: "duration_ms", Value: time.Since(start).Milliseconds()},
	}
	if err != nil {
		c.logger.Debug(ctx, "upstream request failed", append(fields, observe.Err(err))...)
		return err
	}
	c.logger.Debug(ctx, "upstream request completed", fields...)
	return nil
}

func (c *Client) get(ctx context.Context, rawURL, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upstream: %s %s: %w", c.cfg.Service, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Service: c.cfg.Service, Path: path, Code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("upstream: %s %s: %w", c.cfg.Service, path, err)
		}
		return fmt.Errorf("%w: %s %s: %v", ErrDecode, c.cfg.Service, path, err)
	}
	return nil
}
