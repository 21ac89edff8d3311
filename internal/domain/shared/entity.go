package shared

import "time"

// BaseEntity is the identity and timestamps of a stored entity
type BaseEntity struct {
	ID        uint64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SoftDeletableEntity can be moved to the trash and restored.
// A non-nil DeletedAt hides it from default lookups.
type SoftDeletableEntity struct {
	BaseEntity
	DeletedAt *time.Time
}

// IsTrashed reports whether the entity is soft-deleted
func (e *SoftDeletableEntity) IsTrashed() bool {
	return e.DeletedAt != nil
}
