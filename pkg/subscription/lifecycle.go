package subscription

import (
	"context"
	"errors"

	"github.com/dmitrymomot/planmeter/pkg/statemachine"
)

const EventCancel = statemachine.StringEvent("cancel")

// lifecycle: active -cancel-> cancelled, cancelled -cancel-> cancelled.
// Nothing leads back to active.
var lifecycle = statemachine.MustDefinition(
	statemachine.WithTransition(StatusActive, StatusCancelled, EventCancel),
	statemachine.WithSelfTransition(StatusCancelled, EventCancel),
)

// nextStatus applies event to the stored status.
func nextStatus(ctx context.Context, current Status, event statemachine.Event) (Status, error) {
	next, err := lifecycle.Next(ctx, current, event, nil)
	if err != nil {
		return "", errors.Join(ErrInvalidSubscriptionState, err)
	}
	return Status(next.Name()), nil
}
