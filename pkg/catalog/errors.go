package catalog

import "errors"

var (
	ErrPlanNotFound   = errors.New("plan not found")
	ErrPlanNameTaken  = errors.New("plan name already exists")
	ErrPlanInUse      = errors.New("plan is referenced by an active subscription")
	ErrInvalidPlan    = errors.New("invalid plan")
	ErrCacheMiss      = errors.New("plan catalog cache miss")
	ErrFailedToLoad   = errors.New("failed to load plan catalog")
	ErrFailedToDecode = errors.New("failed to decode plan seed file")
)
