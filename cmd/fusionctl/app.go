package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jonwraymond/fusionapi/catalog"
	"github.com/jonwraymond/fusionapi/config"
	"github.com/jonwraymond/fusionapi/fusion"
	"github.com/jonwraymond/fusionapi/health"
	"github.com/jonwraymond/fusionapi/observe"
	"github.com/jonwraymond/fusionapi/secret"
	"github.com/jonwraymond/fusionapi/store"
	"github.com/jonwraymond/fusionapi/upstream"
	"github.com/jonwraymond/fusionapi/weather"
)

// app holds the wired service for one command invocation.
type app struct {
	cfg      *config.Config
	logger   observe.Logger
	observer observe.Observer
	store    store.Store
	orch     *fusion.Orchestrator
	health   *health.Aggregator
}

// newApp loads configuration and wires store, upstream clients and the
// orchestrator. Logs go to logw.
func newApp(ctx context.Context, opts *RootOptions, logw io.Writer) (*app, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, usageError(err)
	}
	if err := cfg.ResolveSecrets(ctx, secret.NewDefaultResolver()); err != nil {
		return nil, usageError(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, usageError(err)
	}

	obs, err := observe.NewObserver(ctx, cfg.Observe, observe.WithLogWriter(logw))
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("init metrics: %w", err), obs.Shutdown(ctx))
	}
	logger := obs.Logger()

	a, err := wire(ctx, cfg, logger, mw)
	if err != nil {
		return nil, errors.Join(err, obs.Shutdown(ctx))
	}
	a.observer = obs
	return a, nil
}

func wire(ctx context.Context, cfg *config.Config, logger observe.Logger, mw *observe.Middleware) (*app, error) {
	backend, err := newBackend(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	kv := store.New(backend)

	swapi, err := upstream.New(upstream.Config{
		Service:         "swapi",
		BaseURL:         cfg.SWAPI.BaseURL,
		Timeout:         cfg.SWAPI.Timeout,
		MaxAttempts:     cfg.SWAPI.MaxAttempts,
		BreakerFailures: cfg.SWAPI.BreakerFailures,
		BreakerOpenFor:  cfg.SWAPI.BreakerOpenFor,
	}, upstream.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	openweather, err := upstream.New(upstream.Config{
		Service: "openweather",
		BaseURL: cfg.Weather.BaseURL,
		Timeout: cfg.Weather.Timeout,
	}, upstream.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	wx := weather.New(openweather, weather.Config{
		APIKey:          cfg.Weather.APIKey,
		FallbackOnError: cfg.Weather.FallbackOnError,
	}, weather.WithLogger(logger))

	orch, err := fusion.New(kv, catalog.New(swapi), wx,
		fusion.WithPolicy(cfg.Policy()),
		fusion.WithLogger(logger),
		fusion.WithMiddleware(mw),
	)
	if err != nil {
		return nil, err
	}

	agg := health.NewAggregator()
	agg.Register(
		health.NewStoreChecker(kv),
		health.NewBreakerChecker(swapi.Breaker()),
		health.NewBreakerChecker(openweather.Breaker()),
		health.NewAPIKeyChecker("weather_api_key", wx.HasAPIKey),
	)

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  kv,
		orch:   orch,
		health: agg,
	}, nil
}

// newBackend selects the record store backend once, at start-up.
func newBackend(ctx context.Context, cfg config.StoreConfig) (store.Backend, error) {
	if !cfg.UseDynamoDB {
		return store.NewMemory(), nil
	}

	clientOpts := []store.ClientOption{store.WithRegion(cfg.Region)}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, store.WithEndpoint(cfg.Endpoint))
	}
	client, err := store.NewDynamoClient(ctx, clientOpts...)
	if err != nil {
		return nil, err
	}

	var dynamoOpts []store.DynamoOption
	if cfg.CompressAbove > 0 {
		dynamoOpts = append(dynamoOpts, store.WithCompressAbove(cfg.CompressAbove))
	}
	d, err := store.NewDynamo(client, cfg.Table, dynamoOpts...)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Close flushes telemetry.
func (a *app) Close(ctx context.Context) error {
	if a.observer == nil {
		return nil
	}
	return a.observer.Shutdown(ctx)
}

// withApp runs fn against a freshly wired app and closes it afterwards.
func withApp(ctx context.Context, opts *RootOptions, logw io.Writer, fn func(*app) error) error {
	a, err := newApp(ctx, opts, logw)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.WithoutCancel(ctx)); err != nil {
			a.logger.Warn(ctx, "telemetry shutdown failed", observe.Err(err))
		}
	}()
	return fn(a)
}
