package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/zap"
)

// MeterProvider is the metrics pipeline. A nil sdk means metrics are off.
type MeterProvider struct {
	sdk *sdkmetric.MeterProvider
}

func newMeterProvider(ctx context.Context, s Settings, res *resource.Resource, log *zap.Logger) (*MeterProvider, error) {
	if !s.MetricsEnabled {
		log.Info("Metrics disabled")
		return &MeterProvider{}, nil
	}

	interval := s.MetricsInterval
	if interval <= 0 {
		interval = 60 * time.Second
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(s.Endpoint)}
	if s.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	mp := &MeterProvider{sdk: sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)}
	otel.SetMeterProvider(mp.sdk)

	log.Info("Metrics enabled",
		zap.String("endpoint", s.Endpoint),
		zap.Duration("export_interval", interval),
	)
	return mp, nil
}

// NewMeterProviderWithReader builds an enabled provider around reader.
// Tests pass a sdkmetric.ManualReader and collect from it.
func NewMeterProviderWithReader(reader sdkmetric.Reader) *MeterProvider {
	return &MeterProvider{sdk: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))}
}

// Meter returns a named meter; the global no-op meter when metrics are off
func (mp *MeterProvider) Meter(name string) metric.Meter {
	if !mp.IsEnabled() {
		return otel.GetMeterProvider().Meter(name)
	}
	return mp.sdk.Meter(name)
}

// IsEnabled reports whether metrics are exported
func (mp *MeterProvider) IsEnabled() bool {
	return mp != nil && mp.sdk != nil
}

func (mp *MeterProvider) shutdown(ctx context.Context) error {
	if !mp.IsEnabled() {
		return nil
	}
	if err := mp.sdk.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}

// Attribute keys shared by metrics and spans. Entity, actor and record ids
// go on spans only; as metric labels they would be unbounded.
var (
	AttrHTTPMethod     = attribute.Key("http.method")
	AttrHTTPStatusCode = attribute.Key("http.status_code")
	AttrHTTPRoute      = attribute.Key("http.route")

	AttrAuditTable   = attribute.Key("audit.table")
	AttrAuditAction  = attribute.Key("audit.action")
	AttrAuditOutcome = attribute.Key("audit.outcome")

	AttrAuditEntityID = attribute.Key("audit.entity_id")
	AttrAuditActorID  = attribute.Key("audit.actor_id")
	AttrAuditRecordID = attribute.Key("audit.record_id")
)

// Histogram bucket boundaries in seconds
var (
	HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	TxDurationBuckets   = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}
)

// SecondsHistogram creates a float64 histogram in seconds with explicit buckets
func SecondsHistogram(meter metric.Meter, name, description string, buckets []float64) (metric.Float64Histogram, error) {
	h, err := meter.Float64Histogram(name,
		metric.WithDescription(description),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(buckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram %s: %w", name, err)
	}
	return h, nil
}
