package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/campusvitality/brokerage/internal/models"
)

const planColumns = `id, name, description, price_cents, features, service_provider,
	discontinued, created_by, created_at, updated_at`

// CreatePlan вставляет новый страховой план и возвращает его ID.
// Features сериализуются в jsonb.
func (s *Storage) CreatePlan(ctx context.Context, plan models.Plan) (string, error) {
	const op = "storage.CreatePlan"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	features, err := json.Marshal(plan.Features)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO plans (name, description, price_cents, features, service_provider, created_by)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID string
	err = s.DB.QueryRowContext(ctx, query,
		plan.Name, plan.Description, plan.PriceCents, features,
		plan.ServiceProvider, plan.CreatedBy).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetPlan возвращает план по его ID.
func (s *Storage) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	const op = "storage.GetPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`
	result, err := scanPlan(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListPlans возвращает все планы, включая снятые с продажи.
func (s *Storage) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	const op = "storage.ListPlans"
	return s.listPlans(ctx, op,
		`SELECT `+planColumns+` FROM plans ORDER BY created_at`)
}

// ListPlansByCreator возвращает планы, созданные указанным sales-пользователем.
func (s *Storage) ListPlansByCreator(ctx context.Context, creatorUID string) ([]*models.Plan, error) {
	const op = "storage.ListPlansByCreator"
	return s.listPlans(ctx, op,
		`SELECT `+planColumns+` FROM plans WHERE created_by = $1 ORDER BY created_at`,
		creatorUID)
}

func (s *Storage) listPlans(ctx context.Context, op, query string, args ...any) ([]*models.Plan, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Plan
	for rows.Next() {
		item, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdatePlan обновляет поля плана и возвращает обновлённую запись.
// Права владельца проверяются на уровне сервиса.
func (s *Storage) UpdatePlan(ctx context.Context, id string, plan models.Plan) (*models.Plan, error) {
	const op = "storage.UpdatePlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	features, err := json.Marshal(plan.Features)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE plans
			  SET name = $1, description = $2, price_cents = $3, features = $4,
			      service_provider = $5, discontinued = $6, updated_at = now()
			  WHERE id = $7
			  RETURNING ` + planColumns
	result, err := scanPlan(s.DB.QueryRowContext(ctx, query,
		plan.Name, plan.Description, plan.PriceCents, features,
		plan.ServiceProvider, plan.Discontinued, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func scanPlan(row interface{ Scan(dest ...any) error }) (*models.Plan, error) {
	var item models.Plan
	var features []byte
	if err := row.Scan(&item.ID, &item.Name, &item.Description, &item.PriceCents,
		&features, &item.ServiceProvider, &item.Discontinued,
		&item.CreatedBy, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &item.Features); err != nil {
			return nil, err
		}
	}
	return &item, nil
}
