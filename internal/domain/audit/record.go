package audit

import (
	"maps"
	"time"

	"github.com/inventa/backend/internal/domain/shared"
)

// Action identifies the kind of mutation an audit record describes
type Action string

const (
	ActionCreate      Action = "create"
	ActionUpdate      Action = "update"
	ActionDelete      Action = "delete"
	ActionRestore     Action = "restore"
	ActionForceDelete Action = "force_delete"
)

// AllActions returns all valid audit actions
func AllActions() []Action {
	return []Action{
		ActionCreate,
		ActionUpdate,
		ActionDelete,
		ActionRestore,
		ActionForceDelete,
	}
}

// IsValid checks if the action is valid
func (a Action) IsValid() bool {
	for _, v := range AllActions() {
		if a == v {
			return true
		}
	}
	return false
}

// Payload keys, one per action
const (
	KeyNew                = "new"
	KeyBefore             = "before"
	KeyAfter              = "after"
	KeyDeleted            = "deleted"
	KeyRestored           = "restored"
	KeyPermanentlyDeleted = "permanently_deleted"
)

// Record is an immutable entry in the audit trail.
// ActorID and AffectedID are historical references: they are never enforced
// against the users table or the affected table.
type Record struct {
	shared.BaseEntity
	ActorID       *uint64
	Action        Action
	AffectedTable string
	AffectedID    *uint64
	Changes       map[string]any
	EventTime     time.Time
}

// NewRecord creates a new audit record stamped at the current time
func NewRecord(actorID *uint64, action Action, table string, affectedID *uint64, changes map[string]any) (*Record, error) {
	if !action.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACTION", "Invalid audit action")
	}
	if table == "" {
		return nil, shared.NewDomainError("INVALID_TABLE", "Affected table cannot be empty")
	}
	if changes == nil {
		changes = map[string]any{}
	}

	now := time.Now()
	return &Record{
		BaseEntity:    shared.BaseEntity{CreatedAt: now, UpdatedAt: now},
		ActorID:       actorID,
		Action:        action,
		AffectedTable: table,
		AffectedID:    affectedID,
		Changes:       changes,
		EventTime:     now,
	}, nil
}

// GetChanges returns a copy of the change payload
func (r *Record) GetChanges() map[string]any {
	result := make(map[string]any, len(r.Changes))
	maps.Copy(result, r.Changes)
	return result
}
