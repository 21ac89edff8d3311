package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inventa/backend/internal/domain/audit"
	"github.com/inventa/backend/internal/domain/shared"
	"github.com/inventa/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Mutation identifies an audited change before it runs
type Mutation struct {
	Table   string
	Action  audit.Action
	ActorID *uint64 // nil when the caller is anonymous
}

// Op names the mutation in errors, logs and spans, e.g. "products.update"
func (m Mutation) Op() string {
	return m.Table + "." + string(m.Action)
}

// Change is reported by a mutation step once the row has been written.
// Before is the snapshot captured under the row lock; After is the new state.
type Change struct {
	EntityID uint64
	Before   map[string]any
	After    map[string]any
}

// MutationFunc performs the entity mutation using the transactional repositories
type MutationFunc func(ctx context.Context, repos TransactionalRepositories) (Change, error)

// Recorder runs an entity mutation and writes its audit record in the same
// transaction. Either both are committed or neither is.
type Recorder struct {
	scope   TransactionScope
	redact  RedactMap
	logger  *zap.Logger
	metrics *telemetry.AuditMetrics
}

// RecorderOption configures a Recorder
type RecorderOption func(*Recorder)

// WithRedactions replaces the default snapshot redactions
func WithRedactions(redact RedactMap) RecorderOption {
	return func(r *Recorder) {
		r.redact = redact
	}
}

// WithMetrics counts every mutation by outcome
func WithMetrics(metrics *telemetry.AuditMetrics) RecorderOption {
	return func(r *Recorder) {
		r.metrics = metrics
	}
}

// NewRecorder creates a new Recorder
func NewRecorder(scope TransactionScope, logger *zap.Logger, opts ...RecorderOption) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Recorder{
		scope:  scope,
		redact: DefaultRedactions(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record runs fn and appends the audit record describing its change.
//
// Validation and not-found errors from fn are returned unchanged. Any other
// failure, including a failed audit write, rolls the transaction back and is
// returned as a *shared.TransactionError.
func (r *Recorder) Record(ctx context.Context, m Mutation, fn MutationFunc) (*audit.Record, error) {
	ctx, span := telemetry.StartSpan(ctx, "audit."+m.Op(),
		telemetry.AttrAuditTable.String(m.Table),
		telemetry.AttrAuditAction.String(string(m.Action)),
	)
	defer span.End()
	if m.ActorID != nil {
		span.SetAttributes(telemetry.ID(telemetry.AttrAuditActorID, *m.ActorID))
	}

	start := time.Now()
	var record *audit.Record
	err := r.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		change, err := fn(ctx, repos)
		if err != nil {
			return err
		}

		changes := PayloadFor(m.Action, r.redact.Apply(change.Before), r.redact.Apply(change.After))
		entityID := change.EntityID
		rec, err := audit.NewRecord(m.ActorID, m.Action, m.Table, &entityID, changes)
		if err != nil {
			return err
		}
		if err := repos.AuditRepo().Create(ctx, rec); err != nil {
			return fmt.Errorf("write audit record: %w", err)
		}
		record = rec
		return nil
	})
	if err != nil {
		telemetry.Fail(span, err)
		err = r.classify(m, err)
		r.observe(ctx, m, outcome(err), start)
		return nil, err
	}
	r.observe(ctx, m, telemetry.OutcomeCommitted, start)

	span.SetAttributes(
		telemetry.ID(telemetry.AttrAuditEntityID, *record.AffectedID),
		telemetry.ID(telemetry.AttrAuditRecordID, record.ID),
	)
	r.logger.Debug("Audit record written",
		zap.String("op", m.Op()),
		zap.Uint64("record_id", record.ID),
		zap.Uint64("entity_id", *record.AffectedID),
		actorField(m.ActorID),
	)
	return record, nil
}

// classify passes caller errors through and wraps store failures
func (r *Recorder) classify(m Mutation, err error) error {
	var verr *shared.ValidationError
	var derr *shared.DomainError
	if errors.As(err, &verr) || errors.As(err, &derr) {
		return err
	}

	r.logger.Error("Audited mutation rolled back",
		zap.String("op", m.Op()),
		actorField(m.ActorID),
		zap.Error(err),
	)
	return shared.NewTransactionError(m.Op(), err)
}

func (r *Recorder) observe(ctx context.Context, m Mutation, result string, start time.Time) {
	r.metrics.Observe(ctx, m.Table, string(m.Action), result, time.Since(start))
}

func outcome(err error) string {
	var terr *shared.TransactionError
	if errors.As(err, &terr) {
		return telemetry.OutcomeRolledBack
	}
	return telemetry.OutcomeRejected
}

func actorField(actorID *uint64) zap.Field {
	if actorID == nil {
		return zap.Skip()
	}
	return zap.Uint64("actor_id", *actorID)
}
