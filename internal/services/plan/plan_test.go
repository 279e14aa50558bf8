package plan

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/campusvitality/brokerage/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreatePlan(ctx context.Context, plan models.Plan) (string, error) {
	args := m.Called(ctx, plan)
	return args.String(0), args.Error(1)
}
func (m *RepoMock) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}
func (m *RepoMock) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Plan), args.Error(1)
}
func (m *RepoMock) ListPlansByCreator(ctx context.Context, creatorUID string) ([]*models.Plan, error) {
	args := m.Called(ctx, creatorUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Plan), args.Error(1)
}
func (m *RepoMock) UpdatePlan(ctx context.Context, id string, plan models.Plan) (*models.Plan, error) {
	args := m.Called(ctx, id, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}
func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateConvertsDollarsToCents(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := NewPlanService(repo, cache, discardLogger())

	repo.On("CreatePlan", mock.Anything, mock.MatchedBy(func(p models.Plan) bool {
		return p.PriceCents == 12050 && p.CreatedBy == "sales-1"
	})).Return("plan-1", nil)
	cache.On("Invalidate", mock.Anything).Return(nil)

	id, err := svc.Create(context.Background(), "sales-1", models.DummyPlan{
		Name:            "Gold",
		Description:     "Full cover",
		Price:           120.50,
		Features:        []string{"dental"},
		ServiceProvider: "Acme",
	})
	require.NoError(t, err)
	assert.Equal(t, "plan-1", id)
	repo.AssertExpectations(t)
}

func TestReadUsesCache(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := NewPlanService(repo, cache, discardLogger())

	cached := models.Plan{ID: "plan-1", Name: "Gold"}
	cache.On("Get", "plan:plan-1", mock.Anything).
		Run(func(args mock.Arguments) {
			*args.Get(1).(*models.Plan) = cached
		}).Return(true, nil)

	got, err := svc.Read(context.Background(), "plan-1")
	require.NoError(t, err)
	assert.Equal(t, "Gold", got.Name)
	repo.AssertNotCalled(t, "GetPlan", mock.Anything, mock.Anything)
}

func TestReadFallsThroughToRepo(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := NewPlanService(repo, cache, discardLogger())

	plan := &models.Plan{ID: "plan-1", Name: "Gold"}
	cache.On("Get", "plan:plan-1", mock.Anything).Return(false, nil)
	repo.On("GetPlan", mock.Anything, "plan-1").Return(plan, nil)
	cache.On("Set", "plan:plan-1", plan, time.Hour).Return(nil)

	got, err := svc.Read(context.Background(), "plan-1")
	require.NoError(t, err)
	assert.Equal(t, plan, got)
	cache.AssertExpectations(t)
}

func TestUpdateRejectsForeignPlan(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := NewPlanService(repo, cache, discardLogger())

	repo.On("GetPlan", mock.Anything, "plan-1").
		Return(&models.Plan{ID: "plan-1", CreatedBy: "sales-1"}, nil)

	name := "Renamed"
	_, err := svc.Update(context.Background(), "plan-1", "sales-2", models.RoleSales,
		models.UpdatePlanRequest{Name: &name})
	assert.ErrorIs(t, err, ErrNotOwner)
	repo.AssertNotCalled(t, "UpdatePlan", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateAllowsAdmin(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := NewPlanService(repo, cache, discardLogger())

	current := &models.Plan{ID: "plan-1", Name: "Gold", CreatedBy: "sales-1", PriceCents: 10000}
	repo.On("GetPlan", mock.Anything, "plan-1").Return(current, nil)

	discontinued := true
	repo.On("UpdatePlan", mock.Anything, "plan-1", mock.MatchedBy(func(p models.Plan) bool {
		return p.Discontinued && p.PriceCents == 10000
	})).Return(&models.Plan{ID: "plan-1", Discontinued: true}, nil)
	cache.On("Invalidate", mock.Anything).Return(nil)

	updated, err := svc.Update(context.Background(), "plan-1", "admin-1", models.RoleAdmin,
		models.UpdatePlanRequest{Discontinued: &discontinued})
	require.NoError(t, err)
	assert.True(t, updated.Discontinued)
}
