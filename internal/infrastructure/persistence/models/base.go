// Package models holds the GORM row types. Domain entities carry no GORM tags;
// repositories convert with ToDomain and the *FromDomain constructors.
package models

import (
	"time"

	"github.com/inventa/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// BaseModel holds the id and timestamps every table has
type BaseModel struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BaseEntity returns the domain view of the columns
func (m BaseModel) BaseEntity() shared.BaseEntity {
	return shared.BaseEntity(m)
}

// SoftDeleteModel adds deleted_at; GORM hides rows where it is set from
// default queries.
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func newSoftDeleteModel(e shared.SoftDeletableEntity) SoftDeleteModel {
	m := SoftDeleteModel{BaseModel: BaseModel(e.BaseEntity)}
	if e.DeletedAt != nil {
		m.DeletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	}
	return m
}

// SoftDeletable returns the domain view of the columns
func (m SoftDeleteModel) SoftDeletable() shared.SoftDeletableEntity {
	e := shared.SoftDeletableEntity{BaseEntity: m.BaseEntity()}
	if m.DeletedAt.Valid {
		at := m.DeletedAt.Time
		e.DeletedAt = &at
	}
	return e
}
