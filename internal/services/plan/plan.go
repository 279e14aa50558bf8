// Package plan содержит бизнес-логику каталога страховых планов
// с кэшированием чтения.
package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/campusvitality/brokerage/internal/lib/pricing"
	"github.com/campusvitality/brokerage/internal/lib/sl"
	"github.com/campusvitality/brokerage/internal/models"
)

const (
	cacheKeyAll = "plans:all"
	cacheTTL    = time.Hour
)

// ErrNotOwner возвращается при попытке изменить чужой план.
var ErrNotOwner = errors.New("plan belongs to another sales user")

// PlanRepository определяет методы для работы с планами в хранилище.
type PlanRepository interface {
	CreatePlan(ctx context.Context, plan models.Plan) (string, error)
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
	ListPlans(ctx context.Context) ([]*models.Plan, error)
	ListPlansByCreator(ctx context.Context, creatorUID string) ([]*models.Plan, error)
	UpdatePlan(ctx context.Context, id string, plan models.Plan) (*models.Plan, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// PlanService реализует операции каталога планов.
type PlanService struct {
	repo  PlanRepository
	cache Cache
	log   *slog.Logger
}

func NewPlanService(repo PlanRepository, cache Cache, log *slog.Logger) *PlanService {
	return &PlanService{repo: repo, cache: cache, log: log}
}

// Create создаёт план от имени sales-пользователя. Цена приходит
// в долларах и хранится в центах.
func (s *PlanService) Create(ctx context.Context, creatorUID string, req models.DummyPlan) (string, error) {
	plan := models.Plan{
		Name:            req.Name,
		Description:     req.Description,
		PriceCents:      pricing.DollarsToCents(req.Price),
		Features:        req.Features,
		ServiceProvider: req.ServiceProvider,
		CreatedBy:       creatorUID,
	}
	id, err := s.repo.CreatePlan(ctx, plan)
	if err != nil {
		return "", err
	}

	s.log.Info("created new plan", slog.String("id", id))
	s.invalidate(id)
	return id, nil
}

// Read возвращает план по ID, используя кэш.
func (s *PlanService) Read(ctx context.Context, id string) (*models.Plan, error) {
	cacheKey := "plan:" + id
	var cached models.Plan
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("cache read failed", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	plan, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(cacheKey, plan, cacheTTL); err != nil {
		s.log.Warn("failed to cache plan", slog.String("key", cacheKey), sl.Err(err))
	}
	return plan, nil
}

// List возвращает все планы, используя кэш.
func (s *PlanService) List(ctx context.Context) ([]*models.Plan, error) {
	var cached []*models.Plan
	found, err := s.cache.Get(cacheKeyAll, &cached)
	if err != nil {
		s.log.Warn("cache read failed", slog.String("key", cacheKeyAll), sl.Err(err))
	}
	if found {
		return cached, nil
	}

	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(cacheKeyAll, plans, cacheTTL); err != nil {
		s.log.Warn("failed to cache plans", sl.Err(err))
	}
	return plans, nil
}

// ListByCreator возвращает планы sales-пользователя без кэша.
func (s *PlanService) ListByCreator(ctx context.Context, creatorUID string) ([]*models.Plan, error) {
	return s.repo.ListPlansByCreator(ctx, creatorUID)
}

// Update изменяет план. Sales-пользователь может менять только свои
// планы, администратор — любые.
func (s *PlanService) Update(ctx context.Context, id, actorUID, actorRole string, req models.UpdatePlanRequest) (*models.Plan, error) {
	current, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorRole != models.RoleAdmin && current.CreatedBy != actorUID {
		return nil, ErrNotOwner
	}

	next := *current
	if req.Name != nil {
		next.Name = *req.Name
	}
	if req.Description != nil {
		next.Description = *req.Description
	}
	if req.Price != nil {
		next.PriceCents = pricing.DollarsToCents(*req.Price)
	}
	if req.Features != nil {
		next.Features = req.Features
	}
	if req.ServiceProvider != nil {
		next.ServiceProvider = *req.ServiceProvider
	}
	if req.Discontinued != nil {
		next.Discontinued = *req.Discontinued
	}

	updated, err := s.repo.UpdatePlan(ctx, id, next)
	if err != nil {
		return nil, err
	}
	s.invalidate(id)
	return updated, nil
}

// InvalidatePlans сбрасывает кэш перечисленных планов и общего списка.
// Вызывается и снаружи каталога, когда планы меняются в обход сервиса,
// например при удалении sales-пользователя.
func (s *PlanService) InvalidatePlans(ids []string) {
	if err := s.cache.Invalidate(cacheKeyAll); err != nil {
		s.log.Warn(fmt.Sprintf("failed to invalidate %s", cacheKeyAll), sl.Err(err))
	}
	for _, id := range ids {
		key := "plan:" + id
		if err := s.cache.Invalidate(key); err != nil {
			s.log.Warn(fmt.Sprintf("failed to invalidate %s", key), sl.Err(err))
		}
	}
}

func (s *PlanService) invalidate(id string) {
	for _, key := range []string{"plan:" + id, cacheKeyAll} {
		if err := s.cache.Invalidate(key); err != nil {
			s.log.Warn(fmt.Sprintf("failed to invalidate %s", key), sl.Err(err))
		}
	}
}
