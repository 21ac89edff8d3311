package persistence

import (
	"context"

	"github.com/inventa/backend/internal/domain/audit"
	"github.com/inventa/backend/internal/domain/shared"
	"github.com/inventa/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

const auditDefaultOrder = "event_time DESC, id DESC"

// GormAuditRepository implements audit.Repository using GORM
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Create appends a record and assigns its ID
func (r *GormAuditRepository) Create(ctx context.Context, record *audit.Record) error {
	model := models.AuditModelFromDomain(record)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	record.BaseEntity = model.BaseEntity()
	record.EventTime = model.EventTime
	return nil
}

// FindByID finds a record by its ID
func (r *GormAuditRepository) FindByID(ctx context.Context, id uint64) (*audit.Record, error) {
	var model models.AuditModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// List returns records matching the filter, newest event first
func (r *GormAuditRepository) List(ctx context.Context, filter audit.Filter) (shared.Paginated[audit.Record], error) {
	query := r.db.WithContext(ctx).Model(&models.AuditModel{})
	if filter.Table != "" {
		query = query.Where("affected_table = ?", filter.Table)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[audit.Record]{}, err
	}

	order := auditOrdering.clause(filter.OrderBy, filter.OrderDir, auditDefaultOrder)
	var rows []models.AuditModel
	if err := query.Order(order).Scopes(paginate(filter.Filter)).Find(&rows).Error; err != nil {
		return shared.Paginated[audit.Record]{}, err
	}

	records := make([]audit.Record, len(rows))
	for i := range rows {
		records[i] = *rows[i].ToDomain()
	}
	return shared.NewPaginated(records, total, filter.Page, filter.PageSize), nil
}

// Delete removes a record
func (r *GormAuditRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.AuditModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormAuditRepository implements audit.Repository
var _ audit.Repository = (*GormAuditRepository)(nil)
