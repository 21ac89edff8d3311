package audit

import (
	"time"

	"github.com/inventa/backend/internal/domain/audit"
)

// ListAuditsRequest holds the audit listing query parameters
type ListAuditsRequest struct {
	Table   string `form:"table" binding:"omitempty,oneof=products users"`
	Action  string `form:"action" binding:"omitempty,oneof=create update delete restore force_delete"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}

// AuditResponse represents an audit record in API responses
type AuditResponse struct {
	ID            uint64         `json:"id"`
	ActorID       *uint64        `json:"actor_id"`
	Action        string         `json:"action"`
	AffectedTable string         `json:"affected_table"`
	AffectedID    *uint64        `json:"affected_id"`
	Changes       map[string]any `json:"changes"`
	EventTime     time.Time      `json:"event_time"`
	CreatedAt     time.Time      `json:"created_at"`
}

// ToAuditResponse converts a domain record to a response DTO
func ToAuditResponse(r audit.Record) AuditResponse {
	return AuditResponse{
		ID:            r.ID,
		ActorID:       r.ActorID,
		Action:        string(r.Action),
		AffectedTable: r.AffectedTable,
		AffectedID:    r.AffectedID,
		Changes:       r.GetChanges(),
		EventTime:     r.EventTime,
		CreatedAt:     r.CreatedAt,
	}
}
