package audit

import (
	"context"

	"github.com/inventa/backend/internal/domain/shared"
)

// Filter narrows an audit listing. Empty fields match everything.
type Filter struct {
	shared.Filter
	Table  string
	Action Action
}

// Repository defines the interface for audit record persistence.
//
// Records are append-only. Delete exists only for administrative cleanup.
type Repository interface {
	// Create appends a record and assigns its ID
	Create(ctx context.Context, record *Record) error

	// FindByID finds a record by its ID
	FindByID(ctx context.Context, id uint64) (*Record, error)

	// List returns records matching the filter, newest event first
	List(ctx context.Context, filter Filter) (shared.Paginated[Record], error)

	// Delete removes a record
	Delete(ctx context.Context, id uint64) error
}
