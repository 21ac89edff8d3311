package audit

import (
	"context"
	"testing"
	"time"

	"github.com/inventa/backend/internal/domain/audit"
	"github.com/inventa/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAuditRepository is a mock implementation of audit.Repository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, record *audit.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAuditRepository) FindByID(ctx context.Context, id uint64) (*audit.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*audit.Record), args.Error(1)
}

func (m *MockAuditRepository) List(ctx context.Context, filter audit.Filter) (shared.Paginated[audit.Record], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[audit.Record]), args.Error(1)
}

func (m *MockAuditRepository) Delete(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func sampleRecord(id uint64, action audit.Action) audit.Record {
	affected := uint64(5)
	return audit.Record{
		BaseEntity:    shared.BaseEntity{ID: id, CreatedAt: time.Now()},
		Action:        action,
		AffectedTable: "products",
		AffectedID:    &affected,
		Changes:       map[string]any{"deleted": map[string]any{"name": "Widget"}},
		EventTime:     time.Now(),
	}
}

func TestQueryService_List(t *testing.T) {
	repo := new(MockAuditRepository)
	svc := NewQueryService(repo, nil)
	ctx := context.Background()

	repo.On("List", ctx, mock.MatchedBy(func(f audit.Filter) bool {
		return f.Table == "products" && f.Action == audit.ActionDelete && f.PageSize == DefaultPerPage && f.Page == 2
	})).Return(shared.NewPaginated([]audit.Record{sampleRecord(1, audit.ActionDelete)}, 21, 2, DefaultPerPage), nil)

	result, err := svc.List(ctx, ListAuditsRequest{Table: "products", Action: "delete", Page: 2})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "delete", result.Items[0].Action)
	assert.Equal(t, uint64(5), *result.Items[0].AffectedID)
	assert.Equal(t, 2, result.TotalPages)
	repo.AssertExpectations(t)
}

func TestQueryService_List_RejectsUnknownFilters(t *testing.T) {
	repo := new(MockAuditRepository)
	svc := NewQueryService(repo, nil)

	_, err := svc.List(context.Background(), ListAuditsRequest{Table: "orders", Action: "purge"})

	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 2)
	assert.Equal(t, "table", verr.Fields[0].Field)
	assert.Equal(t, "action", verr.Fields[1].Field)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestQueryService_List_RejectsPageSize(t *testing.T) {
	svc := NewQueryService(new(MockAuditRepository), nil)
	_, err := svc.List(context.Background(), ListAuditsRequest{PerPage: 500})

	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "per_page", verr.Fields[0].Field)
}

func TestQueryService_ForceDeleted(t *testing.T) {
	repo := new(MockAuditRepository)
	svc := NewQueryService(repo, nil)
	ctx := context.Background()

	repo.On("List", ctx, mock.MatchedBy(func(f audit.Filter) bool {
		return f.Table == "users" && f.Action == audit.ActionForceDelete && f.PageSize == GraveyardPerPage
	})).Return(shared.NewPaginated[audit.Record](nil, 0, 1, GraveyardPerPage), nil)

	result, err := svc.ForceDeleted(ctx, "users", 1, 0)
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	repo.AssertExpectations(t)
}

func TestQueryService_GetAndDelete(t *testing.T) {
	repo := new(MockAuditRepository)
	svc := NewQueryService(repo, nil)
	ctx := context.Background()
	rec := sampleRecord(3, audit.ActionForceDelete)

	repo.On("FindByID", ctx, uint64(3)).Return(&rec, nil)
	repo.On("FindByID", ctx, uint64(4)).Return(nil, shared.ErrNotFound)
	repo.On("Delete", ctx, uint64(3)).Return(nil)

	got, err := svc.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "force_delete", got.Action)
	assert.Equal(t, "Widget", got.Changes["deleted"].(map[string]any)["name"])

	_, err = svc.Get(ctx, 4)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, 3, nil))
	repo.AssertExpectations(t)
}
