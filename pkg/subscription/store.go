package subscription

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/planmeter/pkg/catalog"
)

// Store persists subscription records.
//
// Implementations must make Insert conditional: when an active subscription
// for the same (UserID, PlanID) already exists the write fails with
// ErrAlreadySubscribed. ChangePlan obeys the same rule for active records.
// Unknown ids yield ErrSubscriptionNotFound.
//
// Writes after Insert touch only the fields they own, so a usage increment
// never races a plan change or a cancellation into a stale overwrite.
type Store interface {
	Insert(ctx context.Context, sub *Subscription) error
	FindByID(ctx context.Context, id uuid.UUID) (*Subscription, error)
	// FindActive returns ErrSubscriptionNotFound when the user has no active
	// subscription to the plan.
	FindActive(ctx context.Context, userID, planID string) (*Subscription, error)
	// FindByUser returns the user's subscriptions, newest first.
	FindByUser(ctx context.Context, userID string) ([]Subscription, error)
	// ChangePlan sets PlanID and Usage.QuotaGB; status and usage are kept.
	ChangePlan(ctx context.Context, id uuid.UUID, planID string, quotaGB float64, at time.Time) (*Subscription, error)
	// Cancel sets Status cancelled and AutoRenew false. CancelledAt keeps
	// its first value.
	Cancel(ctx context.Context, id uuid.UUID, at time.Time) (*Subscription, error)
	// SetAutoRenew returns ErrInvalidSubscriptionState when enabling renewal
	// on a record that is not active.
	SetAutoRenew(ctx context.Context, id uuid.UUID, autoRenew bool, at time.Time) (*Subscription, error)
	// IncrementUsage atomically adds dataGB to an active subscription.
	// Returns ErrInvalidSubscriptionState when the record is not active.
	IncrementUsage(ctx context.Context, id uuid.UUID, dataGB float64, at time.Time) (*Subscription, error)
	// FindAll returns every subscription matching filter, newest first.
	FindAll(ctx context.Context, filter Filter) ([]Subscription, error)
	// CountByPlan groups all subscriptions by plan, most subscribed first,
	// ties by plan id. limit <= 0 means no limit.
	CountByPlan(ctx context.Context, limit int) ([]PlanCount, error)
	HasActiveForPlan(ctx context.Context, planID string) (bool, error)
}

// PlanCatalog is the read side of the plan catalog.
// List must return plans sorted by ascending price.
type PlanCatalog interface {
	FindByID(ctx context.Context, id string) (*catalog.Plan, error)
	List(ctx context.Context) ([]catalog.Plan, error)
}
