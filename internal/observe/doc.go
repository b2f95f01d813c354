// ABOUTME: Metrics package
// Package observe provides the monitor's OpenTelemetry metrics.
//
// Instruments are created with [NewMetrics] on any
// [go.opentelemetry.io/otel/metric.MeterProvider]. [NewProvider] wires them
// to an SDK provider with a manual reader so the application can log a
// [Summary] at exit; there is no exporter. Tests and callers that do not care
// about metrics use [Discard].
package observe
