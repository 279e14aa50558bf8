// Package user содержит бизнес-логику управления профилями
// и административные операции над пользователями.
package user

import (
	"context"
	"log/slog"

	"github.com/campusvitality/brokerage/internal/models"
)

// Интерфейс репозитория пользователей
type UserRepository interface {
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
	ListUsersByRole(ctx context.Context, role string) ([]*models.User, error)
	UpdateUser(ctx context.Context, uid string, req models.UpdateUserRequest) (*models.User, error)
	SetStudentVerification(ctx context.Context, uid string, verified bool) (int, error)
	DeleteSalesUser(ctx context.Context, uid string) ([]string, error)
}

// PlanCacheInvalidator сбрасывает кэш каталога планов.
type PlanCacheInvalidator interface {
	InvalidatePlans(ids []string)
}

// UserService реализует операции над пользователями.
type UserService struct {
	users     UserRepository
	planCache PlanCacheInvalidator
	log       *slog.Logger
}

func NewUserService(users UserRepository, planCache PlanCacheInvalidator, log *slog.Logger) *UserService {
	return &UserService{users: users, planCache: planCache, log: log}
}

// GetUser возвращает пользователя по uid.
func (s *UserService) GetUser(ctx context.Context, uid string) (*models.User, error) {
	return s.users.GetUserByUID(ctx, uid)
}

// UpdateUser частично обновляет профиль. Роль не изменяется.
func (s *UserService) UpdateUser(ctx context.Context, uid string, req models.UpdateUserRequest) (*models.User, error) {
	return s.users.UpdateUser(ctx, uid, req)
}

// ListStudents возвращает всех студентов.
func (s *UserService) ListStudents(ctx context.Context) ([]*models.User, error) {
	return s.users.ListUsersByRole(ctx, models.RoleStudent)
}

// ListSales возвращает всех sales-пользователей.
func (s *UserService) ListSales(ctx context.Context) ([]*models.User, error) {
	return s.users.ListUsersByRole(ctx, models.RoleSales)
}

// SetStudentVerification отмечает студента подтверждённым или снимает
// отметку. Возвращает количество затронутых записей: ноль означает,
// что пользователь не найден или не является студентом.
func (s *UserService) SetStudentVerification(ctx context.Context, uid string, verified bool) (int, error) {
	affected, err := s.users.SetStudentVerification(ctx, uid, verified)
	if err != nil {
		return 0, err
	}
	s.log.Info("student verification updated",
		slog.String("uid", uid), slog.Bool("verified", verified))
	return affected, nil
}

// DeleteSalesUser удаляет sales-пользователя и снимает с продажи все
// созданные им планы. Существующие бронирования не затрагиваются.
// Возвращает количество снятых с продажи планов.
func (s *UserService) DeleteSalesUser(ctx context.Context, uid string) (int, error) {
	planIDs, err := s.users.DeleteSalesUser(ctx, uid)
	if err != nil {
		return 0, err
	}
	// Планы изменены в обход каталога, иначе кэш отдаёт их
	// не снятыми с продажи до истечения TTL.
	s.planCache.InvalidatePlans(planIDs)
	s.log.Info("sales user removed",
		slog.String("uid", uid), slog.Int("plans_discontinued", len(planIDs)))
	return len(planIDs), nil
}
