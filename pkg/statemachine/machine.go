package statemachine

import (
	"context"
	"sync"
)

// Machine tracks the current state of one entity against a Definition.
type Machine struct {
	def     *Definition
	initial State
	current State
	mu      sync.RWMutex
}

// New returns a Machine positioned at initial.
func New(def *Definition, initial State) (*Machine, error) {
	if def == nil {
		return nil, ErrNilDefinition
	}
	if initial == nil {
		return nil, ErrInvalidState
	}
	return &Machine{def: def, initial: initial, current: initial}, nil
}

func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Fire applies event to the current state.
func (m *Machine) Fire(ctx context.Context, event Event, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := m.def.Next(ctx, m.current, event, data)
	if err != nil {
		return err
	}
	m.current = next
	return nil
}

func (m *Machine) CanFire(ctx context.Context, event Event, data any) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.def.Can(ctx, m.current, event, data)
}

// Reset moves the machine back to its initial state.
func (m *Machine) Reset() {
	m.mu.Lock()
	m.current = m.initial
	m.mu.Unlock()
}
