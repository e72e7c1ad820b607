package mongostore

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/planmeter/pkg/catalog"
	"github.com/dmitrymomot/planmeter/pkg/subscription"
)

type subscriptionDocument struct {
	ID          string     `bson:"_id"`
	UserID      string     `bson:"user_id"`
	PlanID      string     `bson:"plan_id"`
	Status      string     `bson:"status"`
	AutoRenew   bool       `bson:"auto_renew"`
	StartDate   time.Time  `bson:"start_date"`
	EndDate     time.Time  `bson:"end_date"`
	DataUsedGB  float64    `bson:"data_used_gb"`
	QuotaGB     float64    `bson:"quota_gb"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at"`
	CancelledAt *time.Time `bson:"cancelled_at,omitempty"`
}

func newSubscriptionDocument(s *subscription.Subscription) subscriptionDocument {
	return subscriptionDocument{
		ID:          s.ID.String(),
		UserID:      s.UserID,
		PlanID:      s.PlanID,
		Status:      string(s.Status),
		AutoRenew:   s.AutoRenew,
		StartDate:   s.StartDate.UTC(),
		EndDate:     s.EndDate.UTC(),
		DataUsedGB:  s.Usage.DataUsedGB,
		QuotaGB:     s.Usage.QuotaGB,
		CreatedAt:   s.CreatedAt.UTC(),
		UpdatedAt:   s.UpdatedAt.UTC(),
		CancelledAt: s.CancelledAt,
	}
}

func (d subscriptionDocument) toSubscription() (subscription.Subscription, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return subscription.Subscription{}, err
	}
	return subscription.Subscription{
		ID:        id,
		UserID:    d.UserID,
		PlanID:    d.PlanID,
		Status:    subscription.Status(d.Status),
		AutoRenew: d.AutoRenew,
		StartDate: d.StartDate,
		EndDate:   d.EndDate,
		Usage: subscription.Usage{
			DataUsedGB: d.DataUsedGB,
			QuotaGB:    d.QuotaGB,
		},
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		CancelledAt: d.CancelledAt,
	}, nil
}

// planDocument stores a lowercased copy of the name so the unique index is
// case-insensitive without a collation.
type planDocument struct {
	ID               string    `bson:"_id"`
	Name             string    `bson:"name"`
	NameKey          string    `bson:"name_key"`
	Description      string    `bson:"description,omitempty"`
	Price            float64   `bson:"price"`
	SpeedMbps        float64   `bson:"speed_mbps"`
	DataQuotaGB      float64   `bson:"data_quota_gb"`
	Features         []string  `bson:"features"`
	AutoRenewDefault bool      `bson:"auto_renew_default"`
	CreatedAt        time.Time `bson:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

func newPlanDocument(p *catalog.Plan) planDocument {
	features := p.Features
	if features == nil {
		features = []string{}
	}
	return planDocument{
		ID:               p.ID,
		Name:             p.Name,
		NameKey:          catalog.NameKey(p.Name),
		Description:      p.Description,
		Price:            p.Price,
		SpeedMbps:        p.SpeedMbps,
		DataQuotaGB:      p.DataQuotaGB,
		Features:         features,
		AutoRenewDefault: p.AutoRenewDefault,
		CreatedAt:        p.CreatedAt.UTC(),
		UpdatedAt:        p.UpdatedAt.UTC(),
	}
}

func (d planDocument) toPlan() catalog.Plan {
	return catalog.Plan{
		ID:               d.ID,
		Name:             d.Name,
		Description:      d.Description,
		Price:            d.Price,
		SpeedMbps:        d.SpeedMbps,
		DataQuotaGB:      d.DataQuotaGB,
		Features:         d.Features,
		AutoRenewDefault: d.AutoRenewDefault,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}
