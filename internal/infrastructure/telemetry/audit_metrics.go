package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Audit outcomes
const (
	OutcomeCommitted  = "committed"
	OutcomeRejected   = "rejected"
	OutcomeRolledBack = "rolled_back"
)

// AuditMetrics counts audited mutations by outcome and times their transactions
type AuditMetrics struct {
	mutations metric.Int64Counter
	duration  metric.Float64Histogram
}

// NewAuditMetrics creates the audit instruments on mp
func NewAuditMetrics(mp *MeterProvider) (*AuditMetrics, error) {
	meter := mp.Meter("inventa.audit")

	mutations, err := meter.Int64Counter("audit_mutations_total",
		metric.WithDescription("Audited mutations by table, action and outcome"),
		metric.WithUnit("{mutation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter audit_mutations_total: %w", err)
	}

	duration, err := SecondsHistogram(meter, "audit_transaction_duration_seconds",
		"Duration of the transaction holding a mutation and its audit record",
		TxDurationBuckets,
	)
	if err != nil {
		return nil, err
	}

	return &AuditMetrics{mutations: mutations, duration: duration}, nil
}

// Observe records one mutation. A nil receiver records nothing.
func (m *AuditMetrics) Observe(ctx context.Context, table, action, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.mutations.Add(ctx, 1, metric.WithAttributes(
		AttrAuditTable.String(table),
		AttrAuditAction.String(action),
		AttrAuditOutcome.String(outcome),
	))
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(
		AttrAuditTable.String(table),
		AttrAuditAction.String(action),
	))
}
