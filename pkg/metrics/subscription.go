package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dmitrymomot/planmeter/pkg/subscription"
)

const namespace = "planmeter"

// SubscriptionObserver records lifecycle events as Prometheus counters.
// It implements subscription.Observer.
type SubscriptionObserver struct {
	subscribes      *prometheus.CounterVec
	planChanges     *prometheus.CounterVec
	cancellations   *prometheus.CounterVec
	usageGB         *prometheus.CounterVec
	quotaExceeded   *prometheus.CounterVec
	recommendations *prometheus.CounterVec
}

var _ subscription.Observer = (*SubscriptionObserver)(nil)

// NewSubscriptionObserver registers the collectors on reg.
func NewSubscriptionObserver(reg prometheus.Registerer) *SubscriptionObserver {
	f := promauto.With(reg)
	return &SubscriptionObserver{
		subscribes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subscription",
			Name:      "subscribe_total",
			Help:      "Subscribe attempts by plan and outcome.",
		}, []string{"plan_id", "outcome"}),
		planChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subscription",
			Name:      "plan_changes_total",
			Help:      "Plan changes by source and target plan.",
		}, []string{"from_plan_id", "to_plan_id"}),
		cancellations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subscription",
			Name:      "cancellations_total",
			Help:      "Subscriptions moved from active to cancelled.",
		}, []string{"plan_id"}),
		usageGB: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "usage",
			Name:      "recorded_gb_total",
			Help:      "Data usage recorded against subscriptions, in GB.",
		}, []string{"plan_id"}),
		quotaExceeded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "usage",
			Name:      "quota_exceeded_total",
			Help:      "Usage records that left a subscription above its quota.",
		}, []string{"plan_id"}),
		recommendations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recommendation",
			Name:      "served_total",
			Help:      "Recommendations served by rule.",
		}, []string{"reason"}),
	}
}

func (o *SubscriptionObserver) Subscribed(planID string) {
	o.subscribes.WithLabelValues(planID, "created").Inc()
}

func (o *SubscriptionObserver) SubscribeConflict(planID string) {
	o.subscribes.WithLabelValues(planID, "conflict").Inc()
}

func (o *SubscriptionObserver) PlanChanged(fromPlanID, toPlanID string) {
	o.planChanges.WithLabelValues(fromPlanID, toPlanID).Inc()
}

func (o *SubscriptionObserver) Cancelled(planID string) {
	o.cancellations.WithLabelValues(planID).Inc()
}

func (o *SubscriptionObserver) UsageRecorded(planID string, dataGB float64, exceeded bool) {
	o.usageGB.WithLabelValues(planID).Add(dataGB)
	if exceeded {
		o.quotaExceeded.WithLabelValues(planID).Inc()
	}
}

func (o *SubscriptionObserver) Recommended(reason subscription.Reason) {
	o.recommendations.WithLabelValues(string(reason)).Inc()
}
