package subscription

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a Store kept in process memory. A single mutex makes the
// active-uniqueness check and the write one atomic step.
type MemoryStore struct {
	mu   sync.RWMutex
	seq  uint64
	subs map[uuid.UUID]memoryRecord
}

type memoryRecord struct {
	sub Subscription
	seq uint64 // insertion order, breaks CreatedAt ties
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[uuid.UUID]memoryRecord)}
}

func (m *MemoryStore) Insert(_ context.Context, sub *Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.subs[sub.ID]; ok {
		return ErrAlreadySubscribed
	}
	if sub.IsActive() && m.activeExists(sub.UserID, sub.PlanID, sub.ID) {
		return ErrAlreadySubscribed
	}
	m.seq++
	m.subs[sub.ID] = memoryRecord{sub: sub.Clone(), seq: m.seq}
	return nil
}

func (m *MemoryStore) FindByID(_ context.Context, id uuid.UUID) (*Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.subs[id]
	if !ok {
		return nil, ErrSubscriptionNotFound
	}
	sub := rec.sub.Clone()
	return &sub, nil
}

func (m *MemoryStore) FindActive(_ context.Context, userID, planID string) (*Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rec := range m.subs {
		if rec.sub.UserID == userID && rec.sub.PlanID == planID && rec.sub.IsActive() {
			sub := rec.sub.Clone()
			return &sub, nil
		}
	}
	return nil, ErrSubscriptionNotFound
}

func (m *MemoryStore) FindByUser(ctx context.Context, userID string) ([]Subscription, error) {
	return m.FindAll(ctx, Filter{UserID: userID})
}

func (m *MemoryStore) ChangePlan(_ context.Context, id uuid.UUID, planID string, quotaGB float64, at time.Time) (*Subscription, error) {
	return m.modify(id, func(sub *Subscription) error {
		if sub.IsActive() && m.activeExists(sub.UserID, planID, id) {
			return ErrAlreadySubscribed
		}
		sub.PlanID = planID
		sub.Usage.QuotaGB = quotaGB
		sub.UpdatedAt = at
		return nil
	})
}

func (m *MemoryStore) Cancel(_ context.Context, id uuid.UUID, at time.Time) (*Subscription, error) {
	return m.modify(id, func(sub *Subscription) error {
		sub.Status = StatusCancelled
		sub.AutoRenew = false
		sub.UpdatedAt = at
		if sub.CancelledAt == nil {
			sub.CancelledAt = &at
		}
		return nil
	})
}

func (m *MemoryStore) SetAutoRenew(_ context.Context, id uuid.UUID, autoRenew bool, at time.Time) (*Subscription, error) {
	return m.modify(id, func(sub *Subscription) error {
		if autoRenew && !sub.IsActive() {
			return ErrInvalidSubscriptionState
		}
		sub.AutoRenew = autoRenew
		sub.UpdatedAt = at
		return nil
	})
}

// modify applies fn to the stored record under the write lock. The record is
// saved only when fn succeeds.
func (m *MemoryStore) modify(id uuid.UUID, fn func(sub *Subscription) error) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.subs[id]
	if !ok {
		return nil, ErrSubscriptionNotFound
	}
	sub := rec.sub.Clone()
	if err := fn(&sub); err != nil {
		return nil, err
	}
	rec.sub = sub
	m.subs[id] = rec

	out := sub.Clone()
	return &out, nil
}

func (m *MemoryStore) IncrementUsage(_ context.Context, id uuid.UUID, dataGB float64, at time.Time) (*Subscription, error) {
	return m.modify(id, func(sub *Subscription) error {
		if !sub.IsActive() {
			return ErrInvalidSubscriptionState
		}
		sub.Usage.DataUsedGB += dataGB
		sub.UpdatedAt = at
		return nil
	})
}

func (m *MemoryStore) FindAll(_ context.Context, filter Filter) ([]Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recs := make([]memoryRecord, 0, len(m.subs))
	for _, rec := range m.subs {
		if filter.Match(&rec.sub) {
			recs = append(recs, rec)
		}
	}
	slices.SortFunc(recs, func(a, b memoryRecord) int {
		if c := b.sub.CreatedAt.Compare(a.sub.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})

	out := make([]Subscription, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.sub.Clone())
	}
	return out, nil
}

func (m *MemoryStore) CountByPlan(_ context.Context, limit int) ([]PlanCount, error) {
	m.mu.RLock()
	counts := make(map[string]int64)
	for _, rec := range m.subs {
		counts[rec.sub.PlanID]++
	}
	m.mu.RUnlock()

	out := make([]PlanCount, 0, len(counts))
	for planID, n := range counts {
		out = append(out, PlanCount{PlanID: planID, Count: n})
	}
	slices.SortFunc(out, func(a, b PlanCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.PlanID, b.PlanID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) HasActiveForPlan(_ context.Context, planID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rec := range m.subs {
		if rec.sub.PlanID == planID && rec.sub.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

// activeExists reports another active record for (userID, planID); caller holds the lock.
func (m *MemoryStore) activeExists(userID, planID string, except uuid.UUID) bool {
	for id, rec := range m.subs {
		if id != except && rec.sub.UserID == userID && rec.sub.PlanID == planID && rec.sub.IsActive() {
			return true
		}
	}
	return false
}
