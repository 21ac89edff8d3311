package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/inventa/backend/internal/domain/identity"
	"github.com/inventa/backend/internal/domain/shared"
	"github.com/inventa/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

const (
	userDefaultOrder = "id ASC"
	userTrashedOrder = "deleted_at DESC, id DESC"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds an active user by its ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*identity.User, error) {
	return r.first(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds an active user and locks its row
func (r *GormUserRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*identity.User, error) {
	return r.first(r.db.WithContext(ctx).Scopes(forUpdate), id)
}

// FindTrashedByIDForUpdate finds a soft-deleted user and locks its row
func (r *GormUserRepository) FindTrashedByIDForUpdate(ctx context.Context, id uint64) (*identity.User, error) {
	return r.first(r.db.WithContext(ctx).Scopes(onlyTrashed, forUpdate), id)
}

// FindAnyByIDForUpdate finds a user whether trashed or not and locks its row
func (r *GormUserRepository) FindAnyByIDForUpdate(ctx context.Context, id uint64) (*identity.User, error) {
	return r.first(r.db.WithContext(ctx).Unscoped().Scopes(forUpdate), id)
}

func (r *GormUserRepository) first(db *gorm.DB, id uint64) (*identity.User, error) {
	var model models.UserModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// List returns active users whose name contains the search term
func (r *GormUserRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[identity.User], error) {
	query := r.db.WithContext(ctx).Model(&models.UserModel{})
	if term := strings.TrimSpace(filter.Search); term != "" {
		query = query.Where("LOWER(name) LIKE ?"+likeEscape, "%"+strings.ToLower(escapeLike(term))+"%")
	}
	order := userOrdering.clause(filter.OrderBy, filter.OrderDir, userDefaultOrder)
	return r.page(query, filter, order)
}

// ListTrashed returns soft-deleted users, most recently deleted first
func (r *GormUserRepository) ListTrashed(ctx context.Context, filter shared.Filter) (shared.Paginated[identity.User], error) {
	query := r.db.WithContext(ctx).Model(&models.UserModel{}).Scopes(onlyTrashed)
	order := userOrdering.clause(filter.OrderBy, filter.OrderDir, userTrashedOrder)
	return r.page(query, filter, order)
}

func (r *GormUserRepository) page(query *gorm.DB, filter shared.Filter, order string) (shared.Paginated[identity.User], error) {
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[identity.User]{}, err
	}

	var rows []models.UserModel
	if err := query.Order(order).Scopes(paginate(filter)).Find(&rows).Error; err != nil {
		return shared.Paginated[identity.User]{}, err
	}

	users := make([]identity.User, len(rows))
	for i := range rows {
		users[i] = *rows[i].ToDomain()
	}
	return shared.NewPaginated(users, total, filter.Page, filter.PageSize), nil
}

// Create inserts a user and assigns its ID and timestamps
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err)
	}
	user.SoftDeletableEntity = model.SoftDeletable()
	return nil
}

// Update persists the editable attributes of an active user
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = time.Now()
	}
	result := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"name":          user.Name,
			"email":         user.Email,
			"password_hash": user.PasswordHash,
			"updated_at":    user.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SoftDelete marks an active user as deleted
func (r *GormUserRepository) SoftDelete(ctx context.Context, id uint64) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"deleted_at": now, "updated_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Restore clears the deletion mark of a trashed user
func (r *GormUserRepository) Restore(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Scopes(onlyTrashed).
		Where("id = ?", id).
		Updates(map[string]any{"deleted_at": nil, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ForceDelete permanently removes a user row, trashed or not
func (r *GormUserRepository) ForceDelete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Unscoped().Where("id = ?", id).Delete(&models.UserModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByName checks name uniqueness across active and trashed rows
func (r *GormUserRepository) ExistsByName(ctx context.Context, name string, excludeID uint64) (bool, error) {
	return r.exists(ctx, "name", name, excludeID)
}

// ExistsByEmail checks email uniqueness across active and trashed rows
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string, excludeID uint64) (bool, error) {
	return r.exists(ctx, "email", email, excludeID)
}

func (r *GormUserRepository) exists(ctx context.Context, column, value string, excludeID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&models.UserModel{}).
		Where(column+" = ?", value).
		Scopes(excludingID(excludeID)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormUserRepository implements UserRepository
var _ identity.UserRepository = (*GormUserRepository)(nil)
