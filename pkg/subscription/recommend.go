package subscription

import (
	"context"
	"log/slog"
	"math"
	"slices"

	"github.com/dmitrymomot/planmeter/pkg/catalog"
	"github.com/dmitrymomot/planmeter/pkg/logger"
)

// Reason names the rule that produced a recommendation.
type Reason string

const (
	ReasonNoSubscription Reason = "no_subscription"
	ReasonUpgrade        Reason = "upgrade"
	ReasonDowngrade      Reason = "downgrade"
	ReasonSimilar        Reason = "similar"
)

const (
	maxRecommendations = 3
	upgradeAbovePct    = 80.0
	downgradeBelowPct  = 30.0
	similarPriceBand   = 0.2
)

// Recommendation is the outcome of the usage based plan heuristic.
type Recommendation struct {
	Plans         []catalog.Plan `json:"plans"`
	Reason        Reason         `json:"reason"`
	UsagePercent  float64        `json:"usagePercent"`
	CurrentPlanID string         `json:"currentPlanId,omitempty"`
}

// Recommend suggests up to three plans for the user. It never writes.
func (s *service) Recommend(ctx context.Context, userID string) (*Recommendation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	plans, err := s.plans.List(ctx)
	if err != nil {
		return nil, s.storageError(ctx, "list plans", err)
	}
	subs, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		return nil, s.storageError(ctx, "list user subscriptions", err)
	}

	current, currentPlan := currentSubscription(subs, plans)
	rec := RecommendPlans(current, currentPlan, plans)
	s.observer.Recommended(rec.Reason)
	s.log.DebugContext(ctx, "plans recommended",
		logger.UserID(userID),
		logger.Group("recommendation",
			slog.String("reason", string(rec.Reason)),
			slog.Int("count", len(rec.Plans)),
		),
	)
	return &rec, nil
}

// currentSubscription picks the newest active subscription whose plan still
// exists. subs must be ordered newest first.
func currentSubscription(subs []Subscription, plans []catalog.Plan) (*Subscription, *catalog.Plan) {
	for i := range subs {
		if !subs[i].IsActive() {
			continue
		}
		idx := slices.IndexFunc(plans, func(p catalog.Plan) bool { return p.ID == subs[i].PlanID })
		if idx >= 0 {
			return &subs[i], &plans[idx]
		}
	}
	return nil, nil
}

// RecommendPlans applies the rule ladder; the first matching rule wins:
//
//  1. no current subscription: cheapest, lower-middle and most expensive plan
//  2. usage above 80%: plans with a larger quota than the current plan
//  3. usage below 30%: plans cheaper than the current plan
//  4. otherwise: other plans priced within 20% of the current plan
//
// At most three plans are returned, in ascending price order.
func RecommendPlans(current *Subscription, currentPlan *catalog.Plan, plans []catalog.Plan) Recommendation {
	sorted := slices.Clone(plans)
	catalog.SortByPrice(sorted)

	if current == nil || currentPlan == nil {
		return Recommendation{Plans: spread(sorted), Reason: ReasonNoSubscription}
	}

	pct := current.Usage.Percent()
	rec := Recommendation{UsagePercent: pct, CurrentPlanID: currentPlan.ID}

	switch {
	case pct > upgradeAbovePct:
		rec.Reason = ReasonUpgrade
		rec.Plans = pick(sorted, func(p catalog.Plan) bool {
			return p.DataQuotaGB > currentPlan.DataQuotaGB
		})
	case pct < downgradeBelowPct:
		rec.Reason = ReasonDowngrade
		rec.Plans = pick(sorted, func(p catalog.Plan) bool {
			return p.Price < currentPlan.Price
		})
	default:
		rec.Reason = ReasonSimilar
		band := similarPriceBand * currentPlan.Price
		rec.Plans = pick(sorted, func(p catalog.Plan) bool {
			return p.ID != currentPlan.ID && math.Abs(p.Price-currentPlan.Price) <= band
		})
	}
	return rec
}

// spread returns [first, lower-middle, last]. Short catalogs repeat plans.
func spread(sorted []catalog.Plan) []catalog.Plan {
	n := len(sorted)
	if n == 0 {
		return []catalog.Plan{}
	}
	return []catalog.Plan{sorted[0], sorted[(n-1)/2], sorted[n-1]}
}

func pick(sorted []catalog.Plan, keep func(catalog.Plan) bool) []catalog.Plan {
	out := make([]catalog.Plan, 0, maxRecommendations)
	for _, p := range sorted {
		if len(out) == maxRecommendations {
			break
		}
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
