package subscriptions

import "github.com/dmitrymomot/planmeter/pkg/validator"

func requirePlanID(planID string) error {
	return validator.Apply(
		validator.Required("planId", planID),
		validator.MaxLen("planId", planID, 64),
	)
}
