package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func TestSetup_AllDisabled(t *testing.T) {
	tel, err := Setup(context.Background(), Settings{ServiceName: "inventa-test"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tel.Traces.IsEnabled())
	assert.False(t, tel.Metrics.IsEnabled())
	assert.False(t, tel.Logs.IsEnabled())
	assert.NotNil(t, tel.Metrics.Meter("test"), "disabled metrics still hand out a no-op meter")

	base := zap.NewNop()
	assert.Same(t, base, tel.Logs.Bridge(base, zapcore.InfoLevel))
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestNilProvidersAreDisabled(t *testing.T) {
	var (
		tp *TracerProvider
		mp *MeterProvider
		lp *LoggerProvider
	)
	assert.False(t, tp.IsEnabled())
	assert.False(t, mp.IsEnabled())
	assert.False(t, lp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
}

func TestAuditMetrics_Observe(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := NewMeterProviderWithReader(reader)
	metrics, err := NewAuditMetrics(mp)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.Observe(ctx, "products", "create", OutcomeCommitted, 5*time.Millisecond)
	metrics.Observe(ctx, "products", "create", OutcomeCommitted, 7*time.Millisecond)
	metrics.Observe(ctx, "users", "delete", OutcomeRolledBack, time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	byName := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			byName[m.Name] = m
		}
	}

	sum, ok := byName["audit_mutations_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(3), total)
	assert.Len(t, sum.DataPoints, 2)

	hist, ok := byName["audit_transaction_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Len(t, hist.DataPoints, 2)
}

func TestAuditMetrics_NilIsNoop(t *testing.T) {
	var metrics *AuditMetrics
	assert.NotPanics(t, func() {
		metrics.Observe(context.Background(), "products", "create", OutcomeCommitted, time.Second)
	})
}

type captureProcessor struct {
	mu      sync.Mutex
	records []string
}

func (p *captureProcessor) OnEmit(_ context.Context, r *sdklog.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, r.Body().AsString())
	return nil
}

func (p *captureProcessor) Enabled(context.Context, sdklog.EnabledParameters) bool { return true }
func (p *captureProcessor) Shutdown(context.Context) error                         { return nil }
func (p *captureProcessor) ForceFlush(context.Context) error                       { return nil }

func TestLoggerProvider_Bridge(t *testing.T) {
	capture := &captureProcessor{}
	lp := NewLoggerProviderWithProcessor(capture, "inventa-test")
	require.True(t, lp.IsEnabled())

	logger := lp.Bridge(zaptest.NewLogger(t), zapcore.WarnLevel)
	logger.Info("below threshold")
	logger.Warn("exported")
	logger.With(zap.String("op", "products.create")).Error("also exported")

	capture.mu.Lock()
	defer capture.mu.Unlock()
	assert.Equal(t, []string{"exported", "also exported"}, capture.records)
}
