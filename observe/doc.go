// Package observe provides logging, tracing and metrics for fusion
// operations.
//
// Logging is built on log/slog. Records can additionally be exported through
// the OpenTelemetry log bridge. Tracing and metrics use the OpenTelemetry SDK
// with exporters chosen by name (see package exporters). Middleware ties the
// three together around a single operation.
package observe
