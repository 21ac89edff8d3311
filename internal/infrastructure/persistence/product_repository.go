package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/inventa/backend/internal/domain/catalog"
	"github.com/inventa/backend/internal/domain/shared"
	"github.com/inventa/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	productDefaultOrder = "created_at DESC, id DESC"
	productTrashedOrder = "deleted_at DESC, id DESC"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds an active product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uint64) (*catalog.Product, error) {
	return r.first(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds an active product and locks its row
func (r *GormProductRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*catalog.Product, error) {
	return r.first(r.db.WithContext(ctx).Scopes(forUpdate), id)
}

// FindTrashedByIDForUpdate finds a soft-deleted product and locks its row
func (r *GormProductRepository) FindTrashedByIDForUpdate(ctx context.Context, id uint64) (*catalog.Product, error) {
	return r.first(r.db.WithContext(ctx).Scopes(onlyTrashed, forUpdate), id)
}

// FindAnyByIDForUpdate finds a product whether trashed or not and locks its row
func (r *GormProductRepository) FindAnyByIDForUpdate(ctx context.Context, id uint64) (*catalog.Product, error) {
	return r.first(r.db.WithContext(ctx).Unscoped().Scopes(forUpdate), id)
}

func (r *GormProductRepository) first(db *gorm.DB, id uint64) (*catalog.Product, error) {
	var model models.ProductModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// List returns active products matching the filter.
// The search term is a prefix of the name, code or id; a whole number also
// matches products with at least that quantity.
func (r *GormProductRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[catalog.Product], error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{}).Scopes(r.search(filter.Search))
	order := productOrdering.clause(filter.OrderBy, filter.OrderDir, productDefaultOrder)
	return r.page(query, filter, order)
}

// ListTrashed returns soft-deleted products, most recently deleted first
func (r *GormProductRepository) ListTrashed(ctx context.Context, filter shared.Filter) (shared.Paginated[catalog.Product], error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{}).Scopes(onlyTrashed)
	order := productOrdering.clause(filter.OrderBy, filter.OrderDir, productTrashedOrder)
	return r.page(query, filter, order)
}

func (r *GormProductRepository) search(term string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" {
			return db
		}
		prefix := strings.ToLower(escapeLike(term)) + "%"
		cond := db.Session(&gorm.Session{NewDB: true}).
			Where("LOWER(name) LIKE ?"+likeEscape, prefix).
			Or("LOWER(code) LIKE ?"+likeEscape, prefix).
			Or("CAST(id AS TEXT) LIKE ?"+likeEscape, prefix)
		if qty, ok := parseQuantity(term); ok {
			cond = cond.Or("quantity >= ?", qty)
		}
		return db.Where(cond)
	}
}

func (r *GormProductRepository) page(query *gorm.DB, filter shared.Filter, order string) (shared.Paginated[catalog.Product], error) {
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[catalog.Product]{}, err
	}

	var rows []models.ProductModel
	if err := query.Order(order).Scopes(paginate(filter)).Find(&rows).Error; err != nil {
		return shared.Paginated[catalog.Product]{}, err
	}

	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return shared.NewPaginated(products, total, filter.Page, filter.PageSize), nil
}

// Create inserts a product and assigns its ID and timestamps
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err)
	}
	product.SoftDeletableEntity = model.SoftDeletable()
	return nil
}

// Update persists the editable attributes of an active product
func (r *GormProductRepository) Update(ctx context.Context, product *catalog.Product) error {
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = time.Now()
	}
	result := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":       product.Name,
			"code":       product.Code,
			"price":      product.Price,
			"quantity":   product.Quantity,
			"updated_at": product.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SoftDelete marks an active product as deleted
func (r *GormProductRepository) SoftDelete(ctx context.Context, id uint64) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.ProductModel{}).
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

// Restore clears the deletion mark of a trashed product
func (r *GormProductRepository) Restore(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Model(&models.ProductModel{}).
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

// ForceDelete permanently removes a product row, trashed or not
func (r *GormProductRepository) ForceDelete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Unscoped().Where("id = ?", id).Delete(&models.ProductModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByName checks name uniqueness across active and trashed rows
func (r *GormProductRepository) ExistsByName(ctx context.Context, name string, excludeID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&models.ProductModel{}).
		Where("name = ?", name).
		Scopes(excludingID(excludeID)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// NextCodeSequence reserves the next sequence number for base. The counter row
// stays locked until the transaction ends; a rollback returns the number.
func (r *GormProductRepository) NextCodeSequence(ctx context.Context, base string) (int, error) {
	db := r.db.WithContext(ctx)
	counter := models.CodeSequenceModel{Base: base}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&counter).Error; err != nil {
		return 0, err
	}
	if err := db.Scopes(forUpdate).Where("base = ?", base).First(&counter).Error; err != nil {
		return 0, err
	}

	// Codes written before the counter existed, or edited by hand, still count.
	var codes []string
	err := db.Unscoped().Model(&models.ProductModel{}).
		Where("LOWER(code) LIKE ?"+likeEscape, escapeLike(base)+"%").
		Pluck("code", &codes).Error
	if err != nil {
		return 0, err
	}
	next := counter.LastValue
	for _, code := range codes {
		if seq, ok := catalog.CodeSequence(base, code); ok {
			next = max(next, seq)
		}
	}
	next++

	err = db.Model(&models.CodeSequenceModel{}).Where("base = ?", base).Update("last_value", next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
