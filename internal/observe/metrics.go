// ABOUTME: OpenTelemetry instruments for the monitoring loop
// ABOUTME: Frames, read errors, level distribution and icon handoff counters
package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// meterName is the instrumentation scope for all micmonitor metrics
const meterName = "github.com/micmonitor/micmonitor"

// Metric names
const (
	FramesName         = "micmonitor.frames"
	ReadErrorsName     = "micmonitor.read_errors"
	LevelName          = "micmonitor.level"
	IconsPublishedName = "micmonitor.icons.published"
	IconsDroppedName   = "micmonitor.icons.dropped"
)

// Read error kinds, recorded as the "kind" attribute
const (
	KindTransient = "transient"
	KindFatal     = "fatal"
)

// levelBuckets split the 0..100 volume scale into tenths
var levelBuckets = []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

// Metrics holds the instruments. All fields are safe for concurrent use.
type Metrics struct {
	// Frames counts PCM chunks estimated
	Frames metric.Int64Counter

	// ReadErrors counts capture read failures. Use with attribute:
	//   attribute.String("kind", KindTransient|KindFatal)
	ReadErrors metric.Int64Counter

	// Level records every volume estimate
	Level metric.Float64Histogram

	// IconsPublished counts icon updates handed to a host
	IconsPublished metric.Int64Counter

	// IconsDropped counts updates replaced before the UI consumed them
	IconsDropped metric.Int64Counter
}

// NewMetrics creates the instruments on mp
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Frames, err = m.Int64Counter(FramesName,
		metric.WithDescription("PCM chunks read and estimated."),
	); err != nil {
		return nil, err
	}
	if met.ReadErrors, err = m.Int64Counter(ReadErrorsName,
		metric.WithDescription("Capture read failures by kind."),
	); err != nil {
		return nil, err
	}
	if met.Level, err = m.Float64Histogram(LevelName,
		metric.WithDescription("Estimated microphone volume."),
		metric.WithUnit("%"),
		metric.WithExplicitBucketBoundaries(levelBuckets...),
	); err != nil {
		return nil, err
	}
	if met.IconsPublished, err = m.Int64Counter(IconsPublishedName,
		metric.WithDescription("Icon updates handed to the host."),
	); err != nil {
		return nil, err
	}
	if met.IconsDropped, err = m.Int64Counter(IconsDroppedName,
		metric.WithDescription("Icon updates superseded before display."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// Discard returns instruments that record nothing
func Discard() *Metrics {
	met, err := NewMetrics(noop.NewMeterProvider())
	if err != nil {
		// the no-op provider never fails
		panic(err)
	}
	return met
}

// RecordFrame records one estimated chunk
func (m *Metrics) RecordFrame(ctx context.Context, volume float64) {
	m.Frames.Add(ctx, 1)
	m.Level.Record(ctx, volume)
}

// RecordReadError records a capture failure of the given kind
func (m *Metrics) RecordReadError(ctx context.Context, kind string) {
	m.ReadErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
