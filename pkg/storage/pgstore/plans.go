package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/planmeter/pkg/catalog"
	"github.com/dmitrymomot/planmeter/pkg/pg"
)

const planColumns = `id, name, description, price, speed_mbps, data_quota_gb, features,
	auto_renew_default, created_at, updated_at`

// PlanRepository implements catalog.Repository on PostgreSQL. Names are
// unique case-insensitively through the plans_name_key index.
type PlanRepository struct {
	pool *pgxpool.Pool
}

func NewPlanRepository(pool *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{pool: pool}
}

func (r *PlanRepository) List(ctx context.Context) ([]catalog.Plan, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+planColumns+` FROM plans ORDER BY price ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	plans, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Plan, error) {
		return scanPlan(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan plans: %w", err)
	}
	return plans, nil
}

func (r *PlanRepository) FindByID(ctx context.Context, id string) (*catalog.Plan, error) {
	p, err := scanPlan(r.pool.QueryRow(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, id))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, catalog.ErrPlanNotFound
		}
		return nil, fmt.Errorf("find plan: %w", err)
	}
	return &p, nil
}

func (r *PlanRepository) Create(ctx context.Context, plan *catalog.Plan) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO plans (`+planColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		plan.ID, plan.Name, plan.Description, plan.Price, plan.SpeedMbps, plan.DataQuotaGB,
		features(plan), plan.AutoRenewDefault, plan.CreatedAt, plan.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return catalog.ErrPlanNameTaken
		}
		return fmt.Errorf("insert plan: %w", err)
	}
	return nil
}

func (r *PlanRepository) Update(ctx context.Context, plan *catalog.Plan) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE plans SET
			name = $2, description = $3, price = $4, speed_mbps = $5, data_quota_gb = $6,
			features = $7, auto_renew_default = $8, updated_at = $9
		WHERE id = $1`,
		plan.ID, plan.Name, plan.Description, plan.Price, plan.SpeedMbps, plan.DataQuotaGB,
		features(plan), plan.AutoRenewDefault, plan.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return catalog.ErrPlanNameTaken
		}
		return fmt.Errorf("update plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrPlanNotFound
	}
	return nil
}

func (r *PlanRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrPlanNotFound
	}
	return nil
}

func features(p *catalog.Plan) []string {
	if p.Features == nil {
		return []string{}
	}
	return p.Features
}

func scanPlan(row scanner) (catalog.Plan, error) {
	var p catalog.Plan
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.SpeedMbps, &p.DataQuotaGB, &p.Features,
		&p.AutoRenewDefault, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}
