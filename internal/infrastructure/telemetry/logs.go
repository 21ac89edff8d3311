package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerProvider is the log export pipeline. A nil sdk means logs stay local.
type LoggerProvider struct {
	sdk   *sdklog.LoggerProvider
	scope string
}

func newLoggerProvider(ctx context.Context, s Settings, res *resource.Resource, log *zap.Logger) (*LoggerProvider, error) {
	if !s.LogsEnabled {
		log.Info("Log export disabled")
		return &LoggerProvider{}, nil
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(s.Endpoint)}
	if s.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP logs exporter: %w", err)
	}

	lp := &LoggerProvider{
		sdk: sdklog.NewLoggerProvider(
			sdklog.WithResource(res),
			sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		),
		scope: s.ServiceName,
	}
	global.SetLoggerProvider(lp.sdk)

	log.Info("Log export enabled", zap.String("endpoint", s.Endpoint))
	return lp, nil
}

// NewLoggerProviderWithProcessor builds an enabled provider around processor
func NewLoggerProviderWithProcessor(processor sdklog.Processor, scope string) *LoggerProvider {
	return &LoggerProvider{
		sdk:   sdklog.NewLoggerProvider(sdklog.WithProcessor(processor)),
		scope: scope,
	}
}

// IsEnabled reports whether logs are exported
func (lp *LoggerProvider) IsEnabled() bool {
	return lp != nil && lp.sdk != nil
}

// Bridge tees base into the OTLP pipeline for entries at or above level.
// base comes back unchanged when export is off.
func (lp *LoggerProvider) Bridge(base *zap.Logger, level zapcore.Level) *zap.Logger {
	if !lp.IsEnabled() {
		return base
	}
	exported := &minLevelCore{
		Core: otelzap.NewCore(lp.scope, otelzap.WithLoggerProvider(lp.sdk)),
		min:  level,
	}
	return base.WithOptions(zap.WrapCore(func(local zapcore.Core) zapcore.Core {
		return zapcore.NewTee(local, exported)
	}))
}

func (lp *LoggerProvider) shutdown(ctx context.Context) error {
	if !lp.IsEnabled() {
		return nil
	}
	if err := lp.sdk.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown logger provider: %w", err)
	}
	return nil
}

// minLevelCore drops entries below min; the otelzap core accepts every level
type minLevelCore struct {
	zapcore.Core
	min zapcore.Level
}

func (c *minLevelCore) Enabled(lvl zapcore.Level) bool {
	return lvl >= c.min && c.Core.Enabled(lvl)
}

func (c *minLevelCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(entry.Level) {
		return ce
	}
	return c.Core.Check(entry, ce)
}

func (c *minLevelCore) With(fields []zapcore.Field) zapcore.Core {
	return &minLevelCore{Core: c.Core.With(fields), min: c.min}
}
