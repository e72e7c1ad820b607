package statemachine

import (
	"context"
)

// State is a named node of the machine.
type State interface {
	Name() string
}

// Event is a named trigger that moves the machine between states.
type Event interface {
	Name() string
}

// Guard decides at runtime whether a transition may be taken.
type Guard func(ctx context.Context, from State, event Event, data any) bool

// Action runs before the state changes. A non-nil error aborts the transition.
type Action func(ctx context.Context, from, to State, event Event, data any) error

// Transition is a single edge of the machine.
type Transition struct {
	From    State
	To      State
	Event   Event
	Guards  []Guard
	Actions []Action
}

// StringState is a State backed by a plain string.
type StringState string

func (s StringState) Name() string { return string(s) }

// StringEvent is an Event backed by a plain string.
type StringEvent string

func (e StringEvent) Name() string { return string(e) }
