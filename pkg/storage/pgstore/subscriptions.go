package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/planmeter/pkg/pg"
	"github.com/dmitrymomot/planmeter/pkg/subscription"
)

const subscriptionColumns = `id, user_id, plan_id, status, auto_renew, start_date, end_date,
	data_used_gb, quota_gb, created_at, updated_at, cancelled_at`

// SubscriptionStore implements subscription.Store on PostgreSQL.
// The partial unique index subscriptions_active_user_plan makes inserts and
// reactivations conditional on there being no other active record.
type SubscriptionStore struct {
	pool *pgxpool.Pool
}

func NewSubscriptionStore(pool *pgxpool.Pool) *SubscriptionStore {
	return &SubscriptionStore{pool: pool}
}

func (s *SubscriptionStore) Insert(ctx context.Context, sub *subscription.Subscription) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO subscriptions (`+subscriptionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		sub.ID, sub.UserID, sub.PlanID, string(sub.Status), sub.AutoRenew, sub.StartDate, sub.EndDate,
		sub.Usage.DataUsedGB, sub.Usage.QuotaGB, sub.CreatedAt, sub.UpdatedAt, sub.CancelledAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return subscription.ErrAlreadySubscribed
		}
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

func (s *SubscriptionStore) FindByID(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id)
	return scanOne(row)
}

func (s *SubscriptionStore) FindActive(ctx context.Context, userID, planID string) (*subscription.Subscription, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE user_id = $1 AND plan_id = $2 AND status = 'active'`,
		userID, planID,
	)
	return scanOne(row)
}

func (s *SubscriptionStore) FindByUser(ctx context.Context, userID string) ([]subscription.Subscription, error) {
	return s.FindAll(ctx, subscription.Filter{UserID: userID})
}

func (s *SubscriptionStore) FindAll(ctx context.Context, filter subscription.Filter) ([]subscription.Subscription, error) {
	var status, userID *string
	if filter.Status != "" {
		v := string(filter.Status)
		status = &v
	}
	if filter.UserID != "" {
		userID = &filter.UserID
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR user_id = $2)
		ORDER BY created_at DESC, seq DESC`,
		status, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	subs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (subscription.Subscription, error) {
		return scanSubscription(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan subscriptions: %w", err)
	}
	return subs, nil
}

// ChangePlan sets plan and quota only. Moving an active row into an occupied
// (user, plan) slot trips the partial unique index.
func (s *SubscriptionStore) ChangePlan(ctx context.Context, id uuid.UUID, planID string, quotaGB float64, at time.Time) (*subscription.Subscription, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE subscriptions
		SET plan_id = $2, quota_gb = $3, updated_at = $4
		WHERE id = $1
		RETURNING `+subscriptionColumns,
		id, planID, quotaGB, at,
	)
	sub, err := scanOne(row)
	if err != nil && pg.IsDuplicateKeyError(err) {
		return nil, subscription.ErrAlreadySubscribed
	}
	return sub, err
}

func (s *SubscriptionStore) Cancel(ctx context.Context, id uuid.UUID, at time.Time) (*subscription.Subscription, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE subscriptions
		SET status = 'cancelled', auto_renew = false, updated_at = $2,
			cancelled_at = COALESCE(cancelled_at, $2)
		WHERE id = $1
		RETURNING `+subscriptionColumns,
		id, at,
	)
	return scanOne(row)
}

func (s *SubscriptionStore) SetAutoRenew(ctx context.Context, id uuid.UUID, autoRenew bool, at time.Time) (*subscription.Subscription, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE subscriptions
		SET auto_renew = $2, updated_at = $3
		WHERE id = $1 AND (NOT $2 OR status = 'active')
		RETURNING `+subscriptionColumns,
		id, autoRenew, at,
	)
	return s.conditional(ctx, id, row)
}

// IncrementUsage adds dataGB in one statement so concurrent recordings
// accumulate instead of overwriting each other.
func (s *SubscriptionStore) IncrementUsage(ctx context.Context, id uuid.UUID, dataGB float64, at time.Time) (*subscription.Subscription, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE subscriptions
		SET data_used_gb = data_used_gb + $2, updated_at = $3
		WHERE id = $1 AND status = 'active'
		RETURNING `+subscriptionColumns,
		id, dataGB, at,
	)
	return s.conditional(ctx, id, row)
}

// conditional scans a guarded UPDATE ... RETURNING. No row back means the
// id is unknown or the row failed the status guard.
func (s *SubscriptionStore) conditional(ctx context.Context, id uuid.UUID, row pgx.Row) (*subscription.Subscription, error) {
	sub, err := scanOne(row)
	if errors.Is(err, subscription.ErrSubscriptionNotFound) {
		if _, ferr := s.FindByID(ctx, id); ferr != nil {
			return nil, ferr
		}
		return nil, subscription.ErrInvalidSubscriptionState
	}
	return sub, err
}

func (s *SubscriptionStore) CountByPlan(ctx context.Context, limit int) ([]subscription.PlanCount, error) {
	var lim *int
	if limit > 0 {
		lim = &limit
	}
	rows, err := s.pool.Query(ctx, `
		SELECT plan_id, count(*) FROM subscriptions
		GROUP BY plan_id
		ORDER BY count(*) DESC, plan_id ASC
		LIMIT $1`,
		lim,
	)
	if err != nil {
		return nil, fmt.Errorf("count subscriptions by plan: %w", err)
	}
	counts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (subscription.PlanCount, error) {
		var c subscription.PlanCount
		err := row.Scan(&c.PlanID, &c.Count)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan plan counts: %w", err)
	}
	return counts, nil
}

func (s *SubscriptionStore) HasActiveForPlan(ctx context.Context, planID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM subscriptions WHERE plan_id = $1 AND status = 'active')`,
		planID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active subscriptions: %w", err)
	}
	return exists, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOne(row pgx.Row) (*subscription.Subscription, error) {
	sub, err := scanSubscription(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, subscription.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("scan subscription: %w", err)
	}
	return &sub, nil
}

func scanSubscription(row scanner) (subscription.Subscription, error) {
	var (
		sub    subscription.Subscription
		status string
	)
	err := row.Scan(
		&sub.ID, &sub.UserID, &sub.PlanID, &status, &sub.AutoRenew, &sub.StartDate, &sub.EndDate,
		&sub.Usage.DataUsedGB, &sub.Usage.QuotaGB, &sub.CreatedAt, &sub.UpdatedAt, &sub.CancelledAt,
	)
	if err != nil {
		return subscription.Subscription{}, err
	}
	sub.Status = subscription.Status(status)
	if !sub.Status.Valid() {
		return subscription.Subscription{}, fmt.Errorf("%w: %q", ErrUnexpectedStatus, status)
	}
	return sub, nil
}
