package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/campusvitality/brokerage/internal/models"
)

type UsersMock struct{ mock.Mock }

func (m *UsersMock) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *UsersMock) ListUsersByRole(ctx context.Context, role string) ([]*models.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
func (m *UsersMock) UpdateUser(ctx context.Context, uid string, req models.UpdateUserRequest) (*models.User, error) {
	args := m.Called(ctx, uid, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *UsersMock) SetStudentVerification(ctx context.Context, uid string, verified bool) (int, error) {
	args := m.Called(ctx, uid, verified)
	return args.Int(0), args.Error(1)
}
func (m *UsersMock) DeleteSalesUser(ctx context.Context, uid string) ([]string, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type PlanCacheMock struct{ mock.Mock }

func (m *PlanCacheMock) InvalidatePlans(ids []string) {
	m.Called(ids)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestListStudents(t *testing.T) {
	users := new(UsersMock)
	svc := NewUserService(users, new(PlanCacheMock), discardLogger())

	expected := []*models.User{{UID: "u1", Role: models.RoleStudent}}
	users.On("ListUsersByRole", mock.Anything, models.RoleStudent).Return(expected, nil)

	got, err := svc.ListStudents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expected, got)
}

func TestSetStudentVerification(t *testing.T) {
	tests := []struct {
		name     string
		affected int
		repoErr  error
		wantErr  bool
	}{
		{name: "verified", affected: 1},
		{name: "not a student", affected: 0},
		{name: "storage error", repoErr: errors.New("db down"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UsersMock)
			svc := NewUserService(users, new(PlanCacheMock), discardLogger())

			users.On("SetStudentVerification", mock.Anything, "u1", true).
				Return(tt.affected, tt.repoErr)

			affected, err := svc.SetStudentVerification(context.Background(), "u1", true)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.affected, affected)
		})
	}
}

func TestDeleteSalesUserReportsDiscontinuedPlans(t *testing.T) {
	users := new(UsersMock)
	planCache := new(PlanCacheMock)
	svc := NewUserService(users, planCache, discardLogger())

	planIDs := []string{"p1", "p2", "p3"}
	users.On("DeleteSalesUser", mock.Anything, "sales-1").Return(planIDs, nil)
	planCache.On("InvalidatePlans", planIDs).Return()

	discontinued, err := svc.DeleteSalesUser(context.Background(), "sales-1")
	require.NoError(t, err)
	assert.Equal(t, 3, discontinued)
	users.AssertExpectations(t)
	planCache.AssertExpectations(t)
}

func TestDeleteSalesUserSkipsCacheOnError(t *testing.T) {
	users := new(UsersMock)
	planCache := new(PlanCacheMock)
	svc := NewUserService(users, planCache, discardLogger())

	users.On("DeleteSalesUser", mock.Anything, "sales-1").
		Return(nil, errors.New("db down"))

	_, err := svc.DeleteSalesUser(context.Background(), "sales-1")
	require.Error(t, err)
	planCache.AssertNotCalled(t, "InvalidatePlans", mock.Anything)
}
