package identity

import (
	"time"

	appaudit "github.com/inventa/backend/internal/application/audit"
	"github.com/inventa/backend/internal/domain/identity"
	"github.com/inventa/backend/internal/domain/shared"
)

// CreateUserRequest represents a request to create a new user
type CreateUserRequest struct {
	Name                 string `json:"name" binding:"required,max=255"`
	Email                string `json:"email" binding:"required,email,max=255"`
	Password             string `json:"password" binding:"required,min=6,max=72"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

// UpdateUserRequest represents a request to update a user.
// An empty password keeps the current one.
type UpdateUserRequest struct {
	Name                 string `json:"name" binding:"required,max=255"`
	Email                string `json:"email" binding:"required,email,max=255"`
	Password             string `json:"password" binding:"omitempty,min=6,max=72"`
	PasswordConfirmation string `json:"password_confirmation" binding:"eqfield=Password"`
}

// ListUsersRequest holds the user listing query parameters
type ListUsersRequest struct {
	Search  string `form:"search"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}

// GraveyardRequest pages the two halves of the graveyard view independently
type GraveyardRequest struct {
	Page         int `form:"page"`
	PerPage      int `form:"per_page"`
	AuditPage    int `form:"audit_page"`
	AuditPerPage int `form:"audit_per_page"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID        uint64     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// GraveyardResponse lists trashed users next to the records of permanently deleted ones
type GraveyardResponse struct {
	Trashed shared.Paginated[UserResponse]           `json:"trashed"`
	Deleted shared.Paginated[appaudit.AuditResponse] `json:"deleted"`
}

// ToUserResponse converts a domain User to UserResponse
func ToUserResponse(u identity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		DeletedAt: u.DeletedAt,
	}
}
