package subscription

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/planmeter/pkg/catalog"
)

// Status is the lifecycle state of a subscription. It satisfies statemachine.State.
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

func (s Status) Name() string { return string(s) }

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusCancelled
}

// Usage is metered consumption against the quota snapshot taken at
// subscribe or plan change time.
type Usage struct {
	DataUsedGB float64 `json:"dataUsedGB"`
	QuotaGB    float64 `json:"quotaGB"`
}

// Percent returns DataUsedGB as a percentage of QuotaGB.
// A non-positive quota counts as fully used.
func (u Usage) Percent() float64 {
	if u.QuotaGB <= 0 {
		return 100
	}
	return u.DataUsedGB / u.QuotaGB * 100
}

// Exceeded reports usage beyond the quota. Recording past the quota is allowed.
func (u Usage) Exceeded() bool {
	return u.DataUsedGB > u.QuotaGB
}

// Subscription binds a user to a plan for a billing period.
type Subscription struct {
	ID          uuid.UUID     `json:"id"`
	UserID      string        `json:"userId"`
	PlanID      string        `json:"planId"`
	Plan        *catalog.Plan `json:"plan,omitempty"` // attached on reads while the plan exists
	Status      Status        `json:"status"`
	AutoRenew   bool          `json:"autoRenew"`
	StartDate   time.Time     `json:"startDate"`
	EndDate     time.Time     `json:"endDate"`
	Usage       Usage         `json:"usage"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	CancelledAt *time.Time    `json:"cancelledAt,omitempty"`
}

func (s *Subscription) IsActive() bool {
	return s.Status == StatusActive
}

func (s *Subscription) IsCancelled() bool {
	return s.Status == StatusCancelled
}

// Clone returns a deep copy without the attached plan.
func (s Subscription) Clone() Subscription {
	s.Plan = nil
	if s.CancelledAt != nil {
		t := *s.CancelledAt
		s.CancelledAt = &t
	}
	return s
}

// Filter narrows administrator listings. Zero values match everything.
type Filter struct {
	Status Status
	UserID string
}

// Match reports whether sub passes the filter.
func (f Filter) Match(sub *Subscription) bool {
	if f.Status != "" && sub.Status != f.Status {
		return false
	}
	if f.UserID != "" && sub.UserID != f.UserID {
		return false
	}
	return true
}

// PlanCount is one row of the top plans report.
type PlanCount struct {
	PlanID   string `json:"planId"`
	PlanName string `json:"planName,omitempty"`
	Count    int64  `json:"count"`
}

// ManageInput is an administrator's change set. Nil fields are left alone.
// Status may only move to cancelled.
type ManageInput struct {
	PlanID    *string `json:"planId,omitempty"`
	AutoRenew *bool   `json:"autoRenew,omitempty"`
	Status    *Status `json:"status,omitempty"`
}
