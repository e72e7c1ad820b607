package subscription

import "errors"

var (
	ErrPlanNotFound             = errors.New("plan not found")
	ErrSubscriptionNotFound     = errors.New("subscription not found")
	ErrAlreadySubscribed        = errors.New("user already has an active subscription to this plan")
	ErrInvalidSubscriptionState = errors.New("invalid subscription state")
	ErrInvalidUsage             = errors.New("invalid usage amount")
	ErrInvalidFilter            = errors.New("invalid subscription filter")
	ErrInvalidUpdate            = errors.New("invalid subscription update")
	ErrStorage                  = errors.New("subscription storage failure")
)
