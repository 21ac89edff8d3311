package audit

import (
	"context"

	"github.com/inventa/backend/internal/domain/audit"
	"github.com/inventa/backend/internal/domain/catalog"
	"github.com/inventa/backend/internal/domain/identity"
)

// TransactionScope provides transactional access to the audited repositories.
// Everything done through the repositories handed to fn is committed or rolled
// back together with the audit record written for it.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides repositories that share one transaction
type TransactionalRepositories interface {
	ProductRepo() catalog.ProductRepository
	UserRepo() identity.UserRepository
	AuditRepo() audit.Repository
}

// NoOpTransactionScope runs fn against plain repositories without a transaction.
// Used in unit tests where atomicity is not under test.
type NoOpTransactionScope struct {
	productRepo catalog.ProductRepository
	userRepo    identity.UserRepository
	auditRepo   audit.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	productRepo catalog.ProductRepository,
	userRepo identity.UserRepository,
	auditRepo audit.Repository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		productRepo: productRepo,
		userRepo:    userRepo,
		auditRepo:   auditRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ProductRepo returns the product repository
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository { return s.productRepo }

// UserRepo returns the user repository
func (s *NoOpTransactionScope) UserRepo() identity.UserRepository { return s.userRepo }

// AuditRepo returns the audit repository
func (s *NoOpTransactionScope) AuditRepo() audit.Repository { return s.auditRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
