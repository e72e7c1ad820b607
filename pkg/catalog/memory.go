package catalog

import (
	"context"
	"sync"
)

// MemoryRepository keeps plans in process memory. Used by tests and the
// "memory" storage driver.
type MemoryRepository struct {
	mu    sync.RWMutex
	plans map[string]Plan
}

// NewMemoryRepository returns a repository pre-populated with plans.
func NewMemoryRepository(plans ...Plan) *MemoryRepository {
	r := &MemoryRepository{plans: make(map[string]Plan, len(plans))}
	for _, p := range plans {
		r.plans[p.ID] = p.Clone()
	}
	return r
}

func (r *MemoryRepository) List(_ context.Context) ([]Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Plan, 0, len(r.plans))
	for _, p := range r.plans {
		out = append(out, p.Clone())
	}
	return out, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plans[id]
	if !ok {
		return nil, ErrPlanNotFound
	}
	p = p.Clone()
	return &p, nil
}

func (r *MemoryRepository) Create(_ context.Context, plan *Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTaken(plan.Name, "") {
		return ErrPlanNameTaken
	}
	r.plans[plan.ID] = plan.Clone()
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, plan *Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plans[plan.ID]; !ok {
		return ErrPlanNotFound
	}
	if r.nameTaken(plan.Name, plan.ID) {
		return ErrPlanNameTaken
	}
	r.plans[plan.ID] = plan.Clone()
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plans[id]; !ok {
		return ErrPlanNotFound
	}
	delete(r.plans, id)
	return nil
}

// nameTaken compares names case-insensitively; caller holds the lock.
func (r *MemoryRepository) nameTaken(name, exceptID string) bool {
	key := NameKey(name)
	for id, p := range r.plans {
		if id != exceptID && NameKey(p.Name) == key {
			return true
		}
	}
	return false
}
