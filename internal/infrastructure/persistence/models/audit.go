package models

import (
	"time"

	"github.com/inventa/backend/internal/domain/audit"
	"gorm.io/datatypes"
)

// AuditModel is the persistence model for the audit Record entity.
// actor_id and affected_id carry no foreign keys so records outlive the rows they describe.
type AuditModel struct {
	BaseModel
	ActorID       *uint64           `gorm:"index"`
	Action        audit.Action      `gorm:"type:varchar(20);not null;index"`
	AffectedTable string            `gorm:"type:varchar(64);not null;index:idx_audits_affected,priority:1"`
	AffectedID    *uint64           `gorm:"index:idx_audits_affected,priority:2"`
	Changes       datatypes.JSONMap `gorm:"not null"`
	EventTime     time.Time         `gorm:"not null;index"`
}

func (AuditModel) TableName() string {
	return "audits"
}

func (m *AuditModel) ToDomain() *audit.Record {
	changes := map[string]any(m.Changes)
	if changes == nil {
		changes = map[string]any{}
	}
	return &audit.Record{
		BaseEntity:    m.BaseEntity(),
		ActorID:       m.ActorID,
		Action:        m.Action,
		AffectedTable: m.AffectedTable,
		AffectedID:    m.AffectedID,
		Changes:       changes,
		EventTime:     m.EventTime,
	}
}

// AuditModelFromDomain maps r onto a row. A zero event time becomes now.
func AuditModelFromDomain(r *audit.Record) *AuditModel {
	m := &AuditModel{
		BaseModel:     BaseModel(r.BaseEntity),
		ActorID:       r.ActorID,
		Action:        r.Action,
		AffectedTable: r.AffectedTable,
		AffectedID:    r.AffectedID,
		Changes:       datatypes.JSONMap(r.Changes),
		EventTime:     r.EventTime,
	}
	if m.EventTime.IsZero() {
		m.EventTime = time.Now()
	}
	return m
}
