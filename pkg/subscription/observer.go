package subscription

// Observer receives lifecycle events, e.g. to update metrics.
// Calls happen after the corresponding write succeeded.
type Observer interface {
	Subscribed(planID string)
	SubscribeConflict(planID string)
	PlanChanged(fromPlanID, toPlanID string)
	Cancelled(planID string)
	UsageRecorded(planID string, dataGB float64, exceeded bool)
	Recommended(reason Reason)
}

type noopObserver struct{}

func (noopObserver) Subscribed(string) {}
func (noopObserver) SubscribeConflict(string) {}
func (noopObserver) PlanChanged(string, string) {}
func (noopObserver) Cancelled(string) {}
func (noopObserver) UsageRecorded(string, float64, bool) {}
func (noopObserver) Recommended(Reason) {}
