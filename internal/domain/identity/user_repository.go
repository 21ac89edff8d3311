package identity

import (
	"context"

	"github.com/inventa/backend/internal/domain/shared"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByID finds an active user by its ID
	FindByID(ctx context.Context, id uint64) (*User, error)

	// FindByIDForUpdate finds an active user and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uint64) (*User, error)

	// FindTrashedByIDForUpdate finds a soft-deleted user and locks its row
	FindTrashedByIDForUpdate(ctx context.Context, id uint64) (*User, error)

	// FindAnyByIDForUpdate finds a user whether trashed or not and locks its row
	FindAnyByIDForUpdate(ctx context.Context, id uint64) (*User, error)

	// List returns active users whose name contains the search term
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[User], error)

	// ListTrashed returns soft-deleted users, most recently deleted first
	ListTrashed(ctx context.Context, filter shared.Filter) (shared.Paginated[User], error)

	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	SoftDelete(ctx context.Context, id uint64) error
	Restore(ctx context.Context, id uint64) error
	ForceDelete(ctx context.Context, id uint64) error

	// ExistsByName and ExistsByEmail check uniqueness across active and trashed rows.
	// excludeID of 0 excludes nothing.
	ExistsByName(ctx context.Context, name string, excludeID uint64) (bool, error)
	ExistsByEmail(ctx context.Context, email string, excludeID uint64) (bool, error)
}
