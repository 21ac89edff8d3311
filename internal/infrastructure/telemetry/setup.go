// Package telemetry wires OpenTelemetry traces, metrics and logs for the
// service and holds the instruments the audit trail reports through.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// shutdownTimeout bounds the final flush of every pipeline
const shutdownTimeout = 10 * time.Second

// Settings configures the three OTLP pipelines. They share one collector
// endpoint and service resource; each can be switched on separately.
type Settings struct {
	ServiceName string
	Endpoint    string // collector gRPC address, e.g. "localhost:4317"
	Insecure    bool   // plaintext gRPC, development only

	TracesEnabled bool
	SamplingRatio float64

	MetricsEnabled  bool
	MetricsInterval time.Duration // default 60s

	LogsEnabled bool
}

// Telemetry owns the providers built by Setup
type Telemetry struct {
	Traces  *TracerProvider
	Metrics *MeterProvider
	Logs    *LoggerProvider
}

// Setup builds every enabled pipeline and registers it globally.
// Disabled pipelines stay no-ops, so the result is always usable.
func Setup(ctx context.Context, s Settings, log *zap.Logger) (*Telemetry, error) {
	res, err := serviceResource(s.ServiceName)
	if err != nil {
		return nil, err
	}

	t := &Telemetry{}
	if t.Traces, err = newTracerProvider(ctx, s, res, log); err != nil {
		return nil, err
	}
	if t.Metrics, err = newMeterProvider(ctx, s, res, log); err != nil {
		_ = t.Shutdown(ctx)
		return nil, err
	}
	if t.Logs, err = newLoggerProvider(ctx, s, res, log); err != nil {
		_ = t.Shutdown(ctx)
		return nil, err
	}
	return t, nil
}

// Shutdown flushes and stops every pipeline, reporting all failures
func (t *Telemetry) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return errors.Join(
		t.Traces.shutdown(ctx),
		t.Metrics.shutdown(ctx),
		t.Logs.shutdown(ctx),
	)
}

func serviceResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}
