package audit

import (
	"context"
	"slices"

	"github.com/inventa/backend/internal/domain/audit"
	"github.com/inventa/backend/internal/domain/catalog"
	"github.com/inventa/backend/internal/domain/identity"
	"github.com/inventa/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Default page sizes
const (
	DefaultPerPage   = 20
	GraveyardPerPage = 10
)

// AuditedTables lists the tables whose mutations are recorded
var AuditedTables = []string{catalog.TableName, identity.TableName}

// QueryService provides read access to the audit trail
type QueryService struct {
	repo   audit.Repository
	logger *zap.Logger
}

// NewQueryService creates a new QueryService
func NewQueryService(repo audit.Repository, logger *zap.Logger) *QueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryService{repo: repo, logger: logger}
}

// List returns audit records filtered by table and action, most recent event first
func (s *QueryService) List(ctx context.Context, req ListAuditsRequest) (shared.Paginated[AuditResponse], error) {
	page, err := shared.NewPageFilter(req.Page, req.PerPage, DefaultPerPage)
	if err != nil {
		return shared.Paginated[AuditResponse]{}, err
	}

	verr := &shared.ValidationError{}
	if req.Table != "" && !slices.Contains(AuditedTables, req.Table) {
		verr.Add("table", "is not an audited table")
	}
	if req.Action != "" && !audit.Action(req.Action).IsValid() {
		verr.Add("action", "is not a valid action")
	}
	if err := verr.OrNil(); err != nil {
		return shared.Paginated[AuditResponse]{}, err
	}

	return s.list(ctx, audit.Filter{Filter: page, Table: req.Table, Action: audit.Action(req.Action)})
}

// ForceDeleted returns the permanent-deletion records of a table, used by the graveyard views
func (s *QueryService) ForceDeleted(ctx context.Context, table string, page, perPage int) (shared.Paginated[AuditResponse], error) {
	filter, err := shared.NewPageFilter(page, perPage, GraveyardPerPage)
	if err != nil {
		return shared.Paginated[AuditResponse]{}, err
	}
	return s.list(ctx, audit.Filter{Filter: filter, Table: table, Action: audit.ActionForceDelete})
}

func (s *QueryService) list(ctx context.Context, filter audit.Filter) (shared.Paginated[AuditResponse], error) {
	result, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list audit records",
			zap.String("table", filter.Table),
			zap.String("action", string(filter.Action)),
			zap.Error(err))
		return shared.Paginated[AuditResponse]{}, err
	}
	return shared.MapPaginated(result, ToAuditResponse), nil
}

// Get returns a single audit record
func (s *QueryService) Get(ctx context.Context, id uint64) (*AuditResponse, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToAuditResponse(*record)
	return &resp, nil
}

// Delete removes an audit record. This is an administrative escape hatch and
// is always logged.
func (s *QueryService) Delete(ctx context.Context, id uint64, actorID *uint64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Warn("Audit record deleted",
		zap.Uint64("record_id", id),
		actorField(actorID),
	)
	return nil
}
