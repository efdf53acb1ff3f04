// Package exporters creates OpenTelemetry trace exporters and metric readers
// by name.
package exporters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ErrEndpointNotConfigured indicates an OTLP exporter with no endpoint in
// its settings or the environment.
var ErrEndpointNotConfigured = errors.New("exporters: endpoint not configured")

// Settings selects and configures one exporter.
type Settings struct {
	Name     string    // otlp|prometheus|stdout|none
	Endpoint string    // OTLP collector host:port; falls back to OTEL_EXPORTER_OTLP_* env
	Insecure bool      // OTLP without TLS
	Writer   io.Writer // stdout exporter destination; defaults to os.Stdout
}

func (s Settings) writer() io.Writer {
	if s.Writer != nil {
		return s.Writer
	}
	return os.Stdout
}

func (s Settings) endpointOrEnv(signalVar string) string {
	if s.Endpoint != "" {
		return s.Endpoint
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		return v
	}
	return os.Getenv(signalVar)
}

// NewTracingExporter creates a span exporter. "none" returns an exporter
// that discards everything.
func NewTracingExporter(ctx context.Context, s Settings) (sdktrace.SpanExporter, error) {
	switch s.Name {
	case "stdout":
		return stdouttrace.New(stdouttrace.WithWriter(s.writer()))

	case "otlp":
		if s.endpointOrEnv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT") == "" {
			return nil, fmt.Errorf("%w: set an endpoint or OTEL_EXPORTER_OTLP_ENDPOINT", ErrEndpointNotConfigured)
		}
		var opts []otlptracegrpc.Option
		if s.Endpoint != "" {
			opts = append(opts, otlptracegrpc.WithEndpoint(s.Endpoint))
		}
		if s.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		return otlptracegrpc.New(ctx, opts...)

	case "none", "":
		return stdouttrace.New(stdouttrace.WithWriter(io.Discard))

	default:
		return nil, fmt.Errorf("unknown exporter: %q", s.Name)
	}
}

// NewMetricsReader creates a metric reader. "none" returns a reader whose
// exporter discards everything.
func NewMetricsReader(ctx context.Context, s Settings) (sdkmetric.Reader, error) {
	switch s.Name {
	case "stdout":
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(s.writer()))
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout metrics exporter: %w", err)
		}
		return sdkmetric.NewPeriodicReader(exp), nil

	case "otlp":
		if s.endpointOrEnv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT") == "" {
			return nil, fmt.Errorf("%w: set an endpoint or OTEL_EXPORTER_OTLP_ENDPOINT", ErrEndpointNotConfigured)
		}
		var opts []otlpmetricgrpc.Option
		if s.Endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(s.Endpoint))
		}
		if s.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exp, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
		}
		return sdkmetric.NewPeriodicReader(exp), nil

	case "prometheus":
		exp, err := prometheus.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		return exp, nil

	case "none", "":
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(io.Discard))
		if err != nil {
			return nil, err
		}
		return sdkmetric.NewPeriodicReader(exp), nil

	default:
		return nil, fmt.Errorf("unknown metrics exporter: %q", s.Name)
	}
}
