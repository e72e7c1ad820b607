package statemachine

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Definition is an immutable transition table.
// It holds no current state, so a single Definition is shared by every
// record whose lifecycle it describes and is safe for concurrent use.
type Definition struct {
	// [from][event] -> candidate transitions in registration order
	table map[string]map[string][]Transition
}

// NewDefinition builds a transition table from options.
func NewDefinition(opts ...Option) (*Definition, error) {
	d := &Definition{table: make(map[string]map[string][]Transition)}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// MustDefinition works like NewDefinition but panics on error.
func MustDefinition(opts ...Option) *Definition {
	d, err := NewDefinition(opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to build state machine definition: %v", err))
	}
	return d
}

func (d *Definition) add(t Transition) error {
	if t.From == nil || t.To == nil || t.Event == nil {
		return ErrInvalidTransition
	}
	byEvent, ok := d.table[t.From.Name()]
	if !ok {
		byEvent = make(map[string][]Transition)
		d.table[t.From.Name()] = byEvent
	}
	byEvent[t.Event.Name()] = append(byEvent[t.Event.Name()], t)
	return nil
}

// match returns the first transition whose guards all pass.
func (d *Definition) match(ctx context.Context, from State, event Event, data any) (*Transition, error) {
	if from == nil {
		return nil, ErrInvalidState
	}
	if event == nil {
		return nil, ErrInvalidEvent
	}

	candidates := d.table[from.Name()][event.Name()]
	if len(candidates) == 0 {
		return nil, &TransitionError{State: from.Name(), Event: event.Name(), Err: ErrNoTransition}
	}

	for i := range candidates {
		if guardsPass(ctx, candidates[i].Guards, from, event, data) {
			return &candidates[i], nil
		}
	}
	return nil, &TransitionError{State: from.Name(), Event: event.Name(), Err: ErrTransitionRejected}
}

// Next resolves the state reached from `from` on `event`, running the
// transition's actions. The caller owns persisting the returned state.
func (d *Definition) Next(ctx context.Context, from State, event Event, data any) (State, error) {
	t, err := d.match(ctx, from, event, data)
	if err != nil {
		return nil, err
	}
	for _, action := range t.Actions {
		if err := action(ctx, from, t.To, event, data); err != nil {
			return nil, errors.Join(ErrActionFailed, err)
		}
	}
	return t.To, nil
}

// Can reports whether `event` is accepted in state `from`. Actions are not run.
func (d *Definition) Can(ctx context.Context, from State, event Event, data any) bool {
	_, err := d.match(ctx, from, event, data)
	return err == nil
}

// Events lists event names registered for a state, sorted.
func (d *Definition) Events(from State) []string {
	if from == nil {
		return nil
	}
	byEvent := d.table[from.Name()]
	names := make([]string, 0, len(byEvent))
	for name := range byEvent {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func guardsPass(ctx context.Context, guards []Guard, from State, event Event, data any) bool {
	for _, g := range guards {
		if !g(ctx, from, event, data) {
			return false
		}
	}
	return true
}
