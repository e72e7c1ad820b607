package statemachine

import "fmt"

// Option registers transitions on a Definition.
type Option func(*Definition) error

// TransitionOption attaches guards and actions to a single transition.
type TransitionOption func(*Transition)

// WithTransition registers an edge from -> to on event.
// Several edges may share from/event; the first one whose guards pass wins.
func WithTransition(from, to State, event Event, opts ...TransitionOption) Option {
	return func(d *Definition) error {
		t := Transition{From: from, To: to, Event: event}
		for _, opt := range opts {
			opt(&t)
		}
		if err := d.add(t); err != nil {
			return fmt.Errorf("add transition on %s: %w", eventName(event), err)
		}
		return nil
	}
}

// WithSelfTransition registers an event that is accepted in a state without leaving it.
func WithSelfTransition(state State, event Event, opts ...TransitionOption) Option {
	return WithTransition(state, state, event, opts...)
}

func WithGuard(guard Guard) TransitionOption {
	return func(t *Transition) {
		if guard != nil {
			t.Guards = append(t.Guards, guard)
		}
	}
}

func WithAction(action Action) TransitionOption {
	return func(t *Transition) {
		if action != nil {
			t.Actions = append(t.Actions, action)
		}
	}
}

func eventName(e Event) string {
	if e == nil {
		return "<nil>"
	}
	return e.Name()
}
