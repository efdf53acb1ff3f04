package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type telemetry struct {
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
	mw     *Middleware
}

func newTelemetry(t *testing.T) telemetry {
	t.Helper()
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return telemetry{
		spans:  spans,
		reader: reader,
		mw:     NewMiddleware(NewTracer(tp.Tracer("test")), metrics, NopLogger()),
	}
}

func (tel telemetry) sum(t *testing.T, name string, match func(attribute.Set) bool) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := tel.reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			data, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s is %T, want Sum[int64]", name, m.Data)
			}
			for _, dp := range data.DataPoints {
				if match == nil || match(dp.Attributes) {
					total += dp.Value
				}
			}
		}
	}
	return total
}

// TestMiddleware_Success verifies a successful run records a span and a call.
func TestMiddleware_Success(t *testing.T) {
	tel := newTelemetry(t)
	op := Operation{Name: "character", Target: "CHARACTER#1"}

	err := tel.mw.Run(context.Background(), op, func(ctx context.Context) error { return nil })
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	spans := tel.spans.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name() != "fusion.character" {
		t.Errorf("span name = %q, want fusion.character", spans[0].Name())
	}
	if spans[0].Status().Code != codes.Ok {
		t.Errorf("span status = %v, want Ok", spans[0].Status().Code)
	}
	if got := tel.sum(t, "fusion.op.total", nil); got != 1 {
		t.Errorf("fusion.op.total = %d, want 1", got)
	}
	if got := tel.sum(t, "fusion.op.errors", nil); got != 0 {
		t.Errorf("fusion.op.errors = %d, want 0", got)
	}
}

// TestMiddleware_Error verifies failures are recorded and returned unchanged.
func TestMiddleware_Error(t *testing.T) {
	tel := newTelemetry(t)
	want := errors.New("upstream down")

	got := tel.mw.Run(context.Background(), Operation{Name: "characters"}, func(ctx context.Context) error { return want })
	if got != want {
		t.Fatalf("Run() error = %v, want %v", got, want)
	}

	span := tel.spans.Ended()[0]
	if span.Status().Code != codes.Error {
		t.Errorf("span status = %v, want Error", span.Status().Code)
	}
	if got := tel.sum(t, "fusion.op.errors", nil); got != 1 {
		t.Errorf("fusion.op.errors = %d, want 1", got)
	}
}

// TestObserve_ReturnsValue verifies the generic wrapper passes values through.
func TestObserve_ReturnsValue(t *testing.T) {
	tel := newTelemetry(t)

	v, err := Observe(context.Background(), tel.mw, Operation{Name: "history"}, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	if err != nil || v != 42 {
		t.Fatalf("Observe() = %d, %v; want 42, nil", v, err)
	}
}

// TestMetrics_CacheLookups verifies lookups are counted by outcome.
func TestMetrics_CacheLookups(t *testing.T) {
	tel := newTelemetry(t)
	ctx := context.Background()
	m := tel.mw.Metrics()

	m.RecordCacheLookup(ctx, "CHARACTER", "hit")
	m.RecordCacheLookup(ctx, "CHARACTER", "miss")
	m.RecordCacheLookup(ctx, "LIST", "hit")

	hits := tel.sum(t, "fusion.cache.lookups", func(s attribute.Set) bool {
		v, _ := s.Value("cache.result")
		return v.AsString() == "hit"
	})
	if hits != 2 {
		t.Errorf("hits = %d, want 2", hits)
	}
}

// TestNopMiddleware verifies the no-op middleware still runs the function.
func TestNopMiddleware(t *testing.T) {
	called := false
	err := NopMiddleware().Run(context.Background(), Operation{Name: "x"}, func(context.Context) error {
		called = true
		return nil
	})
	if err != nil || !called {
		t.Fatalf("Run() called=%v err=%v", called, err)
	}
}
