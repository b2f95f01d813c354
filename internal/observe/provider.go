// ABOUTME: In-process meter provider with an end-of-run summary
// ABOUTME: Collects through a manual reader; nothing is exported
package observe

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Provider owns the SDK meter provider and the reader the summary is built from
type Provider struct {
	Metrics *Metrics

	reader *sdkmetric.ManualReader
	mp     *sdkmetric.MeterProvider
}

// NewProvider creates a meter provider backed by a manual reader
func NewProvider() (*Provider, error) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	met, err := NewMetrics(mp)
	if err != nil {
		return nil, errors.Join(err, mp.Shutdown(context.Background()))
	}
	return &Provider{Metrics: met, reader: reader, mp: mp}, nil
}

// Summary is a snapshot of the run's counters
type Summary struct {
	Frames          int64
	TransientErrors int64
	FatalErrors     int64
	IconsPublished  int64
	IconsDropped    int64
	LevelMean       float64
	LevelMax        float64

	// SidetoneDropped is filled by the caller from the sidetone's own count
	SidetoneDropped int64
}

// MarshalZerologObject lets a Summary be embedded in a log event
func (s Summary) MarshalZerologObject(e *zerolog.Event) {
	e.Int64("frames", s.Frames).
		Int64("transient_errors", s.TransientErrors).
		Int64("fatal_errors", s.FatalErrors).
		Int64("icons_published", s.IconsPublished).
		Int64("icons_dropped", s.IconsDropped).
		Float64("level_mean", s.LevelMean).
		Float64("level_max", s.LevelMax).
		Int64("sidetone_dropped", s.SidetoneDropped)
}

// Summary collects the current values
func (p *Provider) Summary(ctx context.Context) (Summary, error) {
	var rm metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &rm); err != nil {
		return Summary{}, err
	}

	var s Summary
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch m.Name {
			case FramesName:
				s.Frames = sumInt64(m.Data, "")
			case ReadErrorsName:
				s.TransientErrors = sumInt64(m.Data, KindTransient)
				s.FatalErrors = sumInt64(m.Data, KindFatal)
			case IconsPublishedName:
				s.IconsPublished = sumInt64(m.Data, "")
			case IconsDroppedName:
				s.IconsDropped = sumInt64(m.Data, "")
			case LevelName:
				s.LevelMean, s.LevelMax = histogramStats(m.Data)
			}
		}
	}
	return s, nil
}

// Shutdown releases the provider
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.mp.Shutdown(ctx)
}

// sumInt64 totals the data points of a counter, optionally only those whose
// "kind" attribute equals kind
func sumInt64(data metricdata.Aggregation, kind string) int64 {
	sum, ok := data.(metricdata.Sum[int64])
	if !ok {
		return 0
	}
	var total int64
	for _, dp := range sum.DataPoints {
		if kind != "" {
			v, ok := dp.Attributes.Value("kind")
			if !ok || v.AsString() != kind {
				continue
			}
		}
		total += dp.Value
	}
	return total
}

func histogramStats(data metricdata.Aggregation) (mean, maxVal float64) {
	hist, ok := data.(metricdata.Histogram[float64])
	if !ok {
		return 0, 0
	}
	var count uint64
	var sum float64
	for _, dp := range hist.DataPoints {
		count += dp.Count
		sum += dp.Sum
		if v, ok := dp.Max.Value(); ok && v > maxVal {
			maxVal = v
		}
	}
	if count == 0 {
		return 0, 0
	}
	return sum / float64(count), maxVal
}
