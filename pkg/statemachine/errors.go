package statemachine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition  = errors.New("transition needs from, to and event")
	ErrInvalidEvent       = errors.New("event is nil")
	ErrInvalidState       = errors.New("state is nil")
	ErrNilDefinition      = errors.New("state machine definition is nil")
	ErrActionFailed       = errors.New("transition action failed")
	ErrNoTransition       = errors.New("no transition for event")
	ErrTransitionRejected = errors.New("transition rejected by guards")
)

// TransitionError names the state and event that failed to resolve.
// It matches ErrNoTransition or ErrTransitionRejected via errors.Is.
type TransitionError struct {
	State string
	Event string
	Err   error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: state '%s', event '%s'", e.Err, e.State, e.Event)
}

func (e *TransitionError) Unwrap() error { return e.Err }
