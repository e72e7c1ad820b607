// Package subscription implements the subscription lifecycle and usage
// accounting engine together with the plan recommendation heuristic.
//
// A subscription is created active with a quota snapshot of its plan, may be
// moved between plans (the snapshot is refreshed, usage is kept), meters data
// usage while active and is cancelled through the lifecycle state machine:
//
//	active --cancel--> cancelled --cancel--> cancelled
//
// At most one active subscription may exist per (user, plan). The Store
// enforces this on write, so concurrent subscribe calls yield exactly one
// winner and ErrAlreadySubscribed for the rest.
//
// # Usage
//
//	svc := subscription.NewService(store, plans,
//		subscription.WithLogger(log),
//		subscription.WithObserver(metrics.NewSubscriptionObserver(reg)),
//	)
//
//	sub, err := svc.Subscribe(ctx, userID, planID, nil)
//	rec, err := svc.Recommend(ctx, userID)
//
// # Errors
//
// Domain failures are sentinel errors (ErrPlanNotFound,
// ErrSubscriptionNotFound, ErrAlreadySubscribed, ErrInvalidSubscriptionState,
// ErrInvalidUsage). Store and catalog failures, timeouts included, are logged
// and returned joined with ErrStorage.
package subscription
