// Package statemachine provides finite state machines with guards and actions.
//
// A Definition is an immutable transition table that can be evaluated against
// any stored state, which suits entities whose state lives in a database row:
//
//	var lifecycle = statemachine.MustDefinition(
//		statemachine.WithTransition(Active, Cancelled, Cancel),
//		statemachine.WithSelfTransition(Cancelled, Cancel),
//	)
//
//	next, err := lifecycle.Next(ctx, statemachine.StringState(rec.Status), Cancel, rec)
//
// A Machine binds a Definition to an in-memory current state and serialises
// Fire calls with a mutex.
//
// Errors: ErrNoTransition when the state does not accept the event,
// ErrTransitionRejected when guards block every candidate, and ErrActionFailed
// (joined with the cause) when an action returns an error.
package statemachine
