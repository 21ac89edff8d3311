package catalog

import (
	"context"
	"strings"

	appaudit "github.com/inventa/backend/internal/application/audit"
	"github.com/inventa/backend/internal/domain/audit"
	"github.com/inventa/backend/internal/domain/catalog"
	"github.com/inventa/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Default page sizes for product listings
const (
	DefaultPerPage = 5
	TrashedPerPage = 5
)

// ProductService handles product-related business operations.
// Every mutation goes through the audit recorder, so the product write and its
// audit record commit together.
type ProductService struct {
	productRepo catalog.ProductRepository
	recorder    *appaudit.Recorder
	audits      *appaudit.QueryService
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	recorder *appaudit.Recorder,
	audits *appaudit.QueryService,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		recorder:    recorder,
		audits:      audits,
	}
}

func mutation(action audit.Action, actorID *uint64) appaudit.Mutation {
	return appaudit.Mutation{Table: catalog.TableName, Action: action, ActorID: actorID}
}

// Create creates a new product.
// A non-empty code is treated as a base and suffixed with the next free sequence.
func (s *ProductService) Create(ctx context.Context, actorID *uint64, req CreateProductRequest) (*ProductResponse, error) {
	var created *catalog.Product
	_, err := s.recorder.Record(ctx, mutation(audit.ActionCreate, actorID),
		func(ctx context.Context, repos appaudit.TransactionalRepositories) (appaudit.Change, error) {
			repo := repos.ProductRepo()
			if err := checkNameAvailable(ctx, repo, req.Name, 0); err != nil {
				return appaudit.Change{}, err
			}

			code, err := nextCode(ctx, repo, req.Code)
			if err != nil {
				return appaudit.Change{}, err
			}

			product, err := catalog.NewProduct(req.Name, code, derefDecimal(req.Price), derefInt(req.Quantity))
			if err != nil {
				return appaudit.Change{}, err
			}
			if err := repo.Create(ctx, product); err != nil {
				return appaudit.Change{}, err
			}

			created = product
			return appaudit.Change{EntityID: product.ID, After: product.Snapshot()}, nil
		})
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(*created)
	return &response, nil
}

// Update replaces the editable attributes of an active product
func (s *ProductService) Update(ctx context.Context, actorID *uint64, id uint64, req UpdateProductRequest) (*ProductResponse, error) {
	var updated *catalog.Product
	_, err := s.recorder.Record(ctx, mutation(audit.ActionUpdate, actorID),
		func(ctx context.Context, repos appaudit.TransactionalRepositories) (appaudit.Change, error) {
			repo := repos.ProductRepo()
			product, err := repo.FindByIDForUpdate(ctx, id)
			if err != nil {
				return appaudit.Change{}, err
			}
			before := product.Snapshot()

			if err := checkNameAvailable(ctx, repo, req.Name, id); err != nil {
				return appaudit.Change{}, err
			}
			if err := product.Update(req.Name, req.Code, derefDecimal(req.Price), derefInt(req.Quantity)); err != nil {
				return appaudit.Change{}, err
			}
			if err := repo.Update(ctx, product); err != nil {
				return appaudit.Change{}, err
			}

			updated = product
			return appaudit.Change{EntityID: id, Before: before, After: product.Snapshot()}, nil
		})
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(*updated)
	return &response, nil
}

// Delete moves an active product to the trash
func (s *ProductService) Delete(ctx context.Context, actorID *uint64, id uint64) (*ProductResponse, error) {
	var trashed *catalog.Product
	_, err := s.recorder.Record(ctx, mutation(audit.ActionDelete, actorID),
		func(ctx context.Context, repos appaudit.TransactionalRepositories) (appaudit.Change, error) {
			repo := repos.ProductRepo()
			product, err := repo.FindByIDForUpdate(ctx, id)
			if err != nil {
				return appaudit.Change{}, err
			}
			before := product.Snapshot()

			if err := repo.SoftDelete(ctx, id); err != nil {
				return appaudit.Change{}, err
			}
			if trashed, err = repo.FindTrashedByIDForUpdate(ctx, id); err != nil {
				return appaudit.Change{}, err
			}
			return appaudit.Change{EntityID: id, Before: before}, nil
		})
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(*trashed)
	return &response, nil
}

// Restore brings a trashed product back.
// The audit record holds the product as it was while trashed.
func (s *ProductService) Restore(ctx context.Context, actorID *uint64, id uint64) (*ProductResponse, error) {
	var restored *catalog.Product
	_, err := s.recorder.Record(ctx, mutation(audit.ActionRestore, actorID),
		func(ctx context.Context, repos appaudit.TransactionalRepositories) (appaudit.Change, error) {
			repo := repos.ProductRepo()
			product, err := repo.FindTrashedByIDForUpdate(ctx, id)
			if err != nil {
				return appaudit.Change{}, err
			}
			before := product.Snapshot()

			if err := repo.Restore(ctx, id); err != nil {
				return appaudit.Change{}, err
			}
			if restored, err = repo.FindByID(ctx, id); err != nil {
				return appaudit.Change{}, err
			}
			return appaudit.Change{EntityID: id, Before: before, After: restored.Snapshot()}, nil
		})
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(*restored)
	return &response, nil
}

// ForceDelete permanently removes a product, trashed or not
func (s *ProductService) ForceDelete(ctx context.Context, actorID *uint64, id uint64) error {
	_, err := s.recorder.Record(ctx, mutation(audit.ActionForceDelete, actorID),
		func(ctx context.Context, repos appaudit.TransactionalRepositories) (appaudit.Change, error) {
			repo := repos.ProductRepo()
			product, err := repo.FindAnyByIDForUpdate(ctx, id)
			if err != nil {
				return appaudit.Change{}, err
			}
			before := product.Snapshot()

			if err := repo.ForceDelete(ctx, id); err != nil {
				return appaudit.Change{}, err
			}
			return appaudit.Change{EntityID: id, Before: before}, nil
		})
	return err
}

// GetByID retrieves an active product
func (s *ProductService) GetByID(ctx context.Context, id uint64) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(*product)
	return &response, nil
}

// List retrieves active products, newest first
func (s *ProductService) List(ctx context.Context, req ListProductsRequest) (shared.Paginated[ProductResponse], error) {
	filter, err := shared.NewPageFilter(req.Page, req.PerPage, DefaultPerPage)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	filter.Search = req.Search

	result, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	return shared.MapPaginated(result, ToProductResponse), nil
}

// ListTrashed retrieves trashed products, most recently deleted first
func (s *ProductService) ListTrashed(ctx context.Context, req ListProductsRequest) (shared.Paginated[ProductResponse], error) {
	filter, err := shared.NewPageFilter(req.Page, req.PerPage, TrashedPerPage)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}

	result, err := s.productRepo.ListTrashed(ctx, filter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	return shared.MapPaginated(result, ToProductResponse), nil
}

// Graveyard lists trashed products together with the audit records of
// products that were permanently deleted.
func (s *ProductService) Graveyard(ctx context.Context, req GraveyardRequest) (*GraveyardResponse, error) {
	trashed, err := s.ListTrashed(ctx, ListProductsRequest{Page: req.Page, PerPage: req.PerPage})
	if err != nil {
		return nil, err
	}
	deleted, err := s.audits.ForceDeleted(ctx, catalog.TableName, req.AuditPage, req.AuditPerPage)
	if err != nil {
		return nil, err
	}
	return &GraveyardResponse{Trashed: trashed, Deleted: deleted}, nil
}

func checkNameAvailable(ctx context.Context, repo catalog.ProductRepository, name string, excludeID uint64) error {
	taken, err := repo.ExistsByName(ctx, strings.TrimSpace(name), excludeID)
	if err != nil {
		return err
	}
	if taken {
		return shared.NewValidationError("name", "has already been taken")
	}
	return nil
}

// nextCode reserves the next code for base inside the caller's transaction
func nextCode(ctx context.Context, repo catalog.ProductRepository, base string) (string, error) {
	base = catalog.NormalizeCodeBase(base)
	if base == "" {
		return "", nil
	}
	seq, err := repo.NextCodeSequence(ctx, base)
	if err != nil {
		return "", err
	}
	return catalog.GenerateCode(base, seq), nil
}

func derefDecimal(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func derefInt(n *int64) int64 {
	if n == nil {
		return 0
	}
	return *n
}
