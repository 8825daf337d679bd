package middleware

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/breezy/breezy/internal/weather"
)

var _ weather.MetricsRecorder = (*ProviderMetrics)(nil)

// ProviderMetrics records weather provider latency and weather cache
// lookups. It satisfies weather.MetricsRecorder.
type ProviderMetrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	cacheLookups    metric.Int64Counter
}

// NewProviderMetrics creates the provider instruments on the global meter
// provider.
func NewProviderMetrics() (*ProviderMetrics, error) {
	meter := otel.Meter(meterName)
	m := &ProviderMetrics{}
	var err error

	if m.requestDuration, err = meter.Float64Histogram(
		"weather.provider.request.duration",
		metric.WithDescription("Duration of weather provider requests in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating provider duration histogram: %w", err)
	}

	if m.requestTotal, err = meter.Int64Counter(
		"weather.provider.request.total",
		metric.WithDescription("Total number of weather provider requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("creating provider request counter: %w", err)
	}

	if m.cacheLookups, err = meter.Int64Counter(
		"weather.cache.lookups",
		metric.WithDescription("Weather cache lookups by result"),
		metric.WithUnit("{lookup}"),
	); err != nil {
		return nil, fmt.Errorf("creating cache lookup counter: %w", err)
	}

	return m, nil
}

func providerAttrs(provider, operation string, extra ...attribute.KeyValue) metric.MeasurementOption {
	return metric.WithAttributes(append([]attribute.KeyValue{
		attribute.String("provider.name", provider),
		attribute.String("provider.operation", operation),
	}, extra...)...)
}

// RecordRequest records one provider call. Metrics outlive the request, so
// the caller's context is not used.
func (m *ProviderMetrics) RecordRequest(provider, operation string, duration time.Duration, err error) {
	attrs := providerAttrs(provider, operation, attribute.Bool("error", err != nil))
	ctx := context.Background()
	m.requestDuration.Record(ctx, duration.Seconds(), attrs)
	m.requestTotal.Add(ctx, 1, attrs)
}

func (m *ProviderMetrics) RecordCacheHit(provider, operation string) {
	m.cacheLookups.Add(context.Background(), 1, providerAttrs(provider, operation, attribute.String("cache.result", "hit")))
}

func (m *ProviderMetrics) RecordCacheMiss(provider, operation string) {
	m.cacheLookups.Add(context.Background(), 1, providerAttrs(provider, operation, attribute.String("cache.result", "miss")))
}
