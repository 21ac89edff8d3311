package catalog

import (
	"context"

	"github.com/inventa/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence.
// Default lookups never return trashed products; the Trashed variants return only those.
type ProductRepository interface {
	// FindByID finds an active product by its ID
	FindByID(ctx context.Context, id uint64) (*Product, error)

	// FindByIDForUpdate finds an active product and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uint64) (*Product, error)

	// FindTrashedByIDForUpdate finds a soft-deleted product and locks its row
	FindTrashedByIDForUpdate(ctx context.Context, id uint64) (*Product, error)

	// FindAnyByIDForUpdate finds a product whether trashed or not and locks its row
	FindAnyByIDForUpdate(ctx context.Context, id uint64) (*Product, error)

	// List returns active products matching the filter, newest first
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[Product], error)

	// ListTrashed returns soft-deleted products, most recently deleted first
	ListTrashed(ctx context.Context, filter shared.Filter) (shared.Paginated[Product], error)

	// Create inserts a product and assigns its ID
	Create(ctx context.Context, product *Product) error

	// Update persists the editable attributes of an active product
	Update(ctx context.Context, product *Product) error

	// SoftDelete marks an active product as deleted
	SoftDelete(ctx context.Context, id uint64) error

	// Restore clears the deletion mark of a trashed product
	Restore(ctx context.Context, id uint64) error

	// ForceDelete permanently removes a product row
	ForceDelete(ctx context.Context, id uint64) error

	// ExistsByName checks name uniqueness across active and trashed rows.
	// excludeID of 0 excludes nothing.
	ExistsByName(ctx context.Context, name string, excludeID uint64) (bool, error)

	// NextCodeSequence reserves the next sequence number for a code base.
	// A number is never issued twice, even after its product is force deleted.
	NextCodeSequence(ctx context.Context, base string) (int, error)
}
