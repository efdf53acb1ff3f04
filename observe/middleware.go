package observe

import (
	"context"
	"time"

	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Middleware wraps fusion operations with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Context: the span context is passed to the wrapped function.
//   - Errors: errors from the wrapped function are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware from its components. Nil components
// are replaced by no-op implementations.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NewTracer(tracenoop.NewTracerProvider().Tracer("noop"))
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{tracer: tracer, metrics: metrics, logger: logger}
}

// NopMiddleware returns a Middleware that only runs the wrapped function.
func NopMiddleware() *Middleware {
	return NewMiddleware(nil, nil, nil)
}

// Metrics returns the metrics sink, for components reporting their own counters.
func (m *Middleware) Metrics() Metrics { return m.metrics }

// Logger returns the middleware's logger.
func (m *Middleware) Logger() Logger { return m.logger }

// Run executes fn inside a span for op and records its outcome.
func (m *Middleware) Run(ctx context.Context, op Operation, fn func(ctx context.Context) error) error {
	ctx, span := m.tracer.StartSpan(ctx, op)
	start := time.Now()

	err := fn(ctx)

	duration := time.Since(start)
	m.tracer.EndSpan(span, err)
	m.metrics.RecordOperation(ctx, op, duration, err)

	opLogger := m.logger.WithOperation(op)
	fields := []Field{{Key: "duration_ms", Value: float64(duration.Milliseconds())}}
	if err != nil {
		opLogger.Error(ctx, "operation failed", append(fields, Err(err))...)
	} else {
		opLogger.Debug(ctx, "operation completed", fields...)
	}
	return err
}

// Observe is Run for functions that return a value.
func Observe[T any](ctx context.Context, m *Middleware, op Operation, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := m.Run(ctx, op, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	return out, err
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
