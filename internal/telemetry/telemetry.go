// Package telemetry collects in-process otel metrics for a single CLI run.
package telemetry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Provider is a MeterProvider backed by a manual reader. Nothing is exported
// until Collect is called.
type Provider struct {
	reader *sdkmetric.ManualReader
	mp     *sdkmetric.MeterProvider
}

// Sample is one collected data point. Counters report their sum in Value;
// histograms report the observation count and the sum of observations.
type Sample struct {
	Name       string  `json:"name"`
	Attributes string  `json:"attributes,omitempty"`
	Value      int64   `json:"value,omitempty"`
	Count      uint64  `json:"count,omitempty"`
	Sum        float64 `json:"sum,omitempty"`
}

func (s Sample) String() string {
	name := s.Name
	if s.Attributes != "" {
		name += "{" + s.Attributes + "}"
	}
	if s.Count > 0 {
		return fmt.Sprintf("%s count=%d sum=%.0f", name, s.Count, s.Sum)
	}
	return fmt.Sprintf("%s %d", name, s.Value)
}

// New returns a Provider.
func New() *Provider {
	reader := sdkmetric.NewManualReader()
	return &Provider{
		reader: reader,
		mp:     sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	}
}

// MeterProvider exposes the underlying provider, e.g. for otel.SetMeterProvider.
func (p *Provider) MeterProvider() metric.MeterProvider { return p.mp }

// Meter returns a named meter.
func (p *Provider) Meter(name string) metric.Meter { return p.mp.Meter(name) }

// Collect reads every instrument recorded so far, sorted by name and
// attributes.
func (p *Provider) Collect(ctx context.Context) ([]Sample, error) {
	var rm metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("collect metrics: %w", err)
	}

	var out []Sample
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					out = append(out, Sample{Name: m.Name, Attributes: formatAttrs(dp.Attributes), Value: dp.Value})
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					out = append(out, Sample{Name: m.Name, Attributes: formatAttrs(dp.Attributes), Count: dp.Count, Sum: dp.Sum})
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Attributes < out[j].Attributes
	})
	return out, nil
}

// Log collects and writes each sample at level. Collection failures are
// logged, not returned.
func (p *Provider) Log(ctx context.Context, log zerolog.Logger, level zerolog.Level) {
	samples, err := p.Collect(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("metrics unavailable")
		return
	}
	for _, s := range samples {
		log.WithLevel(level).Str("metric", s.String()).Msg("metric")
	}
}

// Shutdown flushes and stops the provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.mp.Shutdown(ctx)
}

func formatAttrs(set attribute.Set) string {
	kvs := set.ToSlice()
	parts := make([]string, 0, len(kvs))
	for _, kv := range kvs {
		parts = append(parts, string(kv.Key)+"="+kv.Value.Emit())
	}
	return strings.Join(parts, ",")
}
