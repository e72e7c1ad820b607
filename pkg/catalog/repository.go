package catalog

import "context"

// Repository persists plans. Implementations enforce name uniqueness and
// return ErrPlanNameTaken on violation and ErrPlanNotFound for unknown ids.
type Repository interface {
	List(ctx context.Context) ([]Plan, error)
	FindByID(ctx context.Context, id string) (*Plan, error)
	Create(ctx context.Context, plan *Plan) error
	Update(ctx context.Context, plan *Plan) error
	Delete(ctx context.Context, id string) error
}

// UsageChecker reports whether any active subscription references a plan.
type UsageChecker interface {
	HasActiveForPlan(ctx context.Context, planID string) (bool, error)
}

// Cache holds the full, price-sorted plan list.
type Cache interface {
	Get(ctx context.Context) ([]Plan, error) // ErrCacheMiss when empty
	Set(ctx context.Context, plans []Plan) error
	Invalidate(ctx context.Context) error
}
