package pgstore_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/planmeter/pkg/catalog"
	"github.com/dmitrymomot/planmeter/pkg/logger"
	"github.com/dmitrymomot/planmeter/pkg/pg"
	"github.com/dmitrymomot/planmeter/pkg/storage/pgstore"
	"github.com/dmitrymomot/planmeter/pkg/subscription"
)

// Runs against a disposable database named by PGSTORE_TEST_URL.
func setup(t *testing.T) (*pgstore.SubscriptionStore, *pgstore.PlanRepository) {
	t.Helper()
	url := os.Getenv("PGSTORE_TEST_URL")
	if url == "" {
		t.Skip("PGSTORE_TEST_URL not set")
	}

	ctx := context.Background()
	cfg := pg.Config{ConnectionString: url, MaxOpenConns: 4, MaxIdleConns: 1, RetryAttempts: 1, MigrationsTable: "schema_migrations"}
	pool, err := pg.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pgstore.Migrate(ctx, pool, cfg, logger.Discard()))
	_, err = pool.Exec(ctx, `TRUNCATE subscriptions, plans`)
	require.NoError(t, err)

	return pgstore.NewSubscriptionStore(pool), pgstore.NewPlanRepository(pool)
}

func newSub(userID, planID string, at time.Time) *subscription.Subscription {
	return &subscription.Subscription{
		ID:        uuid.New(),
		UserID:    userID,
		PlanID:    planID,
		Status:    subscription.StatusActive,
		AutoRenew: true,
		StartDate: at,
		EndDate:   at.Add(30 * 24 * time.Hour),
		Usage:     subscription.Usage{QuotaGB: 100},
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestSubscriptionStore(t *testing.T) {
	subs, _ := setup(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	first := newSub("u1", "basic", now)
	require.NoError(t, subs.Insert(ctx, first))
	assert.ErrorIs(t, subs.Insert(ctx, newSub("u1", "basic", now)), subscription.ErrAlreadySubscribed)

	got, err := subs.FindActive(ctx, "u1", "basic")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	updated, err := subs.IncrementUsage(ctx, first.ID, 12.5, now.Add(time.Minute))
	require.NoError(t, err)
	assert.InDelta(t, 12.5, updated.Usage.DataUsedGB, 1e-9)

	cancelledAt := now.Add(time.Hour)
	cancelled, err := subs.Cancel(ctx, first.ID, cancelledAt)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusCancelled, cancelled.Status)
	assert.False(t, cancelled.AutoRenew)
	assert.InDelta(t, 12.5, cancelled.Usage.DataUsedGB, 1e-9)

	again, err := subs.Cancel(ctx, first.ID, cancelledAt.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, again.CancelledAt)
	assert.True(t, cancelledAt.Equal(*again.CancelledAt), "first cancellation time is kept")

	_, err = subs.SetAutoRenew(ctx, first.ID, true, now)
	assert.ErrorIs(t, err, subscription.ErrInvalidSubscriptionState)
	_, err = subs.Cancel(ctx, uuid.New(), now)
	assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)

	_, err = subs.IncrementUsage(ctx, first.ID, 1, now)
	assert.ErrorIs(t, err, subscription.ErrInvalidSubscriptionState)
	_, err = subs.IncrementUsage(ctx, uuid.New(), 1, now)
	assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)

	second := newSub("u1", "basic", now.Add(2*time.Hour))
	require.NoError(t, subs.Insert(ctx, second))

	list, err := subs.FindByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	history, err := subs.FindAll(ctx, subscription.Filter{Status: subscription.StatusCancelled})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, first.ID, history[0].ID)

	moved, err := subs.ChangePlan(ctx, first.ID, "standard", 100, now)
	require.NoError(t, err)
	assert.Equal(t, "standard", moved.PlanID)
	assert.Equal(t, subscription.StatusCancelled, moved.Status)
	assert.InDelta(t, 12.5, moved.Usage.DataUsedGB, 1e-9)

	renew, err := subs.SetAutoRenew(ctx, second.ID, false, now)
	require.NoError(t, err)
	assert.False(t, renew.AutoRenew)

	other := newSub("u1", "standard", now)
	require.NoError(t, subs.Insert(ctx, other))
	_, err = subs.ChangePlan(ctx, other.ID, "basic", 50, now)
	assert.ErrorIs(t, err, subscription.ErrAlreadySubscribed)

	require.NoError(t, subs.Insert(ctx, newSub("u2", "pro", now)))
	counts, err := subs.CountByPlan(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []subscription.PlanCount{
		{PlanID: "standard", Count: 2},
		{PlanID: "basic", Count: 1},
		{PlanID: "pro", Count: 1},
	}, counts)

	has, err := subs.HasActiveForPlan(ctx, "pro")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestSubscriptionStoreConcurrentInsert(t *testing.T) {
	subs, _ := setup(t)
	ctx := context.Background()
	now := time.Now().UTC()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := subs.Insert(ctx, newSub("racer", "basic", now)); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestPlanRepository(t *testing.T) {
	_, plans := setup(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	require.NoError(t, plans.Create(ctx, &catalog.Plan{ID: "p2", Name: "Pro", Price: 30, SpeedMbps: 100, DataQuotaGB: 100, CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, plans.Create(ctx, &catalog.Plan{ID: "p1", Name: "Basic", Price: 10, SpeedMbps: 10, DataQuotaGB: 10, Features: []string{"email"}, CreatedAt: now, UpdatedAt: now}))
	assert.ErrorIs(t, plans.Create(ctx, &catalog.Plan{ID: "p3", Name: "pro", CreatedAt: now, UpdatedAt: now}), catalog.ErrPlanNameTaken)

	list, err := plans.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Basic", list[0].Name)
	assert.Equal(t, []string{"email"}, list[0].Features)

	_, err = plans.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, catalog.ErrPlanNotFound)
	assert.ErrorIs(t, plans.Delete(ctx, "missing"), catalog.ErrPlanNotFound)
	require.NoError(t, plans.Delete(ctx, "p2"))
}
