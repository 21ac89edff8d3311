package persistence

import (
	"context"

	appaudit "github.com/inventa/backend/internal/application/audit"
	"github.com/inventa/backend/internal/domain/audit"
	"github.com/inventa/backend/internal/domain/catalog"
	"github.com/inventa/backend/internal/domain/identity"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error or panics, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appaudit.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories bound to one transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormTransactionalRepositories) UserRepo() identity.UserRepository {
	return NewGormUserRepository(r.tx)
}

func (r *gormTransactionalRepositories) AuditRepo() audit.Repository {
	return NewGormAuditRepository(r.tx)
}

var _ appaudit.TransactionScope = (*GormTransactionScope)(nil)
var _ appaudit.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
