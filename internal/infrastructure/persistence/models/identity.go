package models

import (
	"github.com/inventa/backend/internal/domain/identity"
)

// UserModel is a row of the users table. Only the bcrypt hash is stored.
type UserModel struct {
	SoftDeleteModel
	Name         string `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_name"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null"`
}

func (UserModel) TableName() string {
	return identity.TableName
}

func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		SoftDeletableEntity: m.SoftDeletable(),
		Name:                m.Name,
		Email:               m.Email,
		PasswordHash:        m.PasswordHash,
	}
}

// UserModelFromDomain maps u onto a row, id and timestamps included
func UserModelFromDomain(u *identity.User) *UserModel {
	return &UserModel{
		SoftDeleteModel: newSoftDeleteModel(u.SoftDeletableEntity),
		Name:            u.Name,
		Email:           u.Email,
		PasswordHash:    u.PasswordHash,
	}
}
