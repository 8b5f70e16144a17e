package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/thermopolio/thermopolio/internal/models"
	"github.com/thermopolio/thermopolio/internal/storage"
)

// CreatePlan stores a new subscription plan.
func (s *Storage) CreatePlan(ctx context.Context, plan models.Plan) error {
	const op = "storage.CreatePlan"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	// Anonymous plans carry no owner; an empty UID becomes NULL.
	query := `INSERT INTO subscription_plans (id, owner_uid, name, description, plan_type, base_price)
			  VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6)`
	_, err := s.DB.ExecContext(ctx, query,
		plan.ID, plan.OwnerUID, plan.Name, plan.Description, plan.PlanType, plan.BasePrice)
	if err != nil {
		// An owner UID that matches no account trips the FK.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListPlans returns every plan, ordered by name.
func (s *Storage) ListPlans(ctx context.Context) ([]models.Plan, error) {
	const op = "storage.ListPlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, COALESCE(owner_uid::text, ''), name, description, plan_type, base_price
			  FROM subscription_plans
			  ORDER BY name`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Plan
	for rows.Next() {
		var p models.Plan
		if err = rows.Scan(&p.ID, &p.OwnerUID, &p.Name, &p.Description,
			&p.PlanType, &p.BasePrice); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListPlansByOwner returns the plans owned by a restaurant, ordered by name.
func (s *Storage) ListPlansByOwner(ctx context.Context, ownerUID string) ([]models.Plan, error) {
	const op = "storage.ListPlansByOwner"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, COALESCE(owner_uid::text, ''), name, description, plan_type, base_price
			  FROM subscription_plans
			  WHERE owner_uid = $1::uuid
			  ORDER BY name`
	rows, err := s.DB.QueryContext(ctx, query, ownerUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Plan
	for rows.Next() {
		var p models.Plan
		if err = rows.Scan(&p.ID, &p.OwnerUID, &p.Name, &p.Description,
			&p.PlanType, &p.BasePrice); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
