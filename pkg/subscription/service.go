package subscription

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/planmeter/pkg/catalog"
	"github.com/dmitrymomot/planmeter/pkg/logger"
	"github.com/dmitrymomot/planmeter/pkg/validator"
)

// Service is the subscription lifecycle and usage accounting engine.
// userID scopes every per-user call: a subscription owned by someone else
// is reported as ErrSubscriptionNotFound.
type Service interface {
	Subscribe(ctx context.Context, userID, planID string, autoRenew *bool) (*Subscription, error)
	ChangePlan(ctx context.Context, userID string, id uuid.UUID, planID string) (*Subscription, error)
	Cancel(ctx context.Context, userID string, id uuid.UUID) (*Subscription, error)
	List(ctx context.Context, userID string) ([]Subscription, error)
	Get(ctx context.Context, userID string, id uuid.UUID) (*Subscription, error)
	RecordUsage(ctx context.Context, userID string, id uuid.UUID, dataGB float64) (*Subscription, error)
	Recommend(ctx context.Context, userID string) (*Recommendation, error)

	// Administrator operations. Subscriptions are addressed by id alone.
	Manage(ctx context.Context, id uuid.UUID, in ManageInput) (*Subscription, error)
	ListAll(ctx context.Context, filter Filter) ([]Subscription, error)
	TopPlans(ctx context.Context, limit int) ([]PlanCount, error)
}

type service struct {
	store    Store
	plans    PlanCatalog
	observer Observer
	log      *slog.Logger
	now      func() time.Time
	newID    func() uuid.UUID
	period   time.Duration
	timeout  time.Duration
}

// NewService wires the engine. Panics if store or plans is nil.
func NewService(store Store, plans PlanCatalog, opts ...ServiceOption) Service {
	if store == nil {
		panic("subscription: Store is required")
	}
	if plans == nil {
		panic("subscription: PlanCatalog is required")
	}

	s := &service{
		store:    store,
		plans:    plans,
		observer: noopObserver{},
		log:      logger.Discard(),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.New,
		period:   DefaultBillingPeriod,
		timeout:  DefaultOperationTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("subscription"))
	return s
}

func (s *service) Subscribe(ctx context.Context, userID, planID string, autoRenew *bool) (*Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	plan, err := s.findPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	switch _, err := s.store.FindActive(ctx, userID, planID); {
	case err == nil:
		s.observer.SubscribeConflict(planID)
		return nil, ErrAlreadySubscribed
	case !errors.Is(err, ErrSubscriptionNotFound):
		return nil, s.storageError(ctx, "find active subscription", err)
	}

	now := s.now()
	sub := &Subscription{
		ID:        s.newID(),
		UserID:    userID,
		PlanID:    plan.ID,
		Status:    StatusActive,
		AutoRenew: autoRenew != nil && *autoRenew,
		StartDate: now,
		EndDate:   now.Add(s.period),
		Usage:     Usage{DataUsedGB: 0, QuotaGB: plan.DataQuotaGB},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Insert(ctx, sub); err != nil {
		if errors.Is(err, ErrAlreadySubscribed) {
			s.observer.SubscribeConflict(planID)
			return nil, ErrAlreadySubscribed
		}
		return nil, s.storageError(ctx, "insert subscription", err)
	}

	sub.Plan = plan
	s.observer.Subscribed(plan.ID)
	s.log.InfoContext(ctx, "subscription created",
		logger.UserID(userID),
		logger.SubscriptionID(sub.ID),
		logger.PlanID(plan.ID),
	)
	return sub, nil
}

// ChangePlan moves the subscription to another plan and refreshes the quota
// snapshot. Usage, status, dates and auto-renew are kept.
func (s *service) ChangePlan(ctx context.Context, userID string, id uuid.UUID, planID string) (*Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	plan, err := s.findPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	sub, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.changePlan(ctx, sub, plan)
}

// Cancel is idempotent: cancelling a cancelled subscription succeeds and
// keeps the first CancelledAt.
func (s *service) Cancel(ctx context.Context, userID string, id uuid.UUID) (*Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sub, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.cancel(ctx, sub)
}

// Manage applies an administrator's changes to any user's subscription.
// Input is checked before anything is written; the plan change goes first,
// then auto-renew, then cancellation.
func (s *service) Manage(ctx context.Context, id uuid.UUID, in ManageInput) (*Subscription, error) {
	if in.Status != nil && !in.Status.Valid() {
		return nil, ErrInvalidUpdate
	}
	if in.Status != nil && *in.Status == StatusCancelled && in.AutoRenew != nil && *in.AutoRenew {
		return nil, ErrInvalidUpdate
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sub, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return nil, err
		}
		return nil, s.storageError(ctx, "find subscription", err)
	}

	var plan *catalog.Plan
	if in.PlanID != nil {
		if plan, err = s.findPlan(ctx, *in.PlanID); err != nil {
			return nil, err
		}
	}
	if in.Status != nil && *in.Status != sub.Status {
		if *in.Status != StatusCancelled {
			return nil, ErrInvalidSubscriptionState
		}
		if _, err := nextStatus(ctx, sub.Status, EventCancel); err != nil {
			return nil, err
		}
	}
	if in.AutoRenew != nil && *in.AutoRenew && !sub.IsActive() {
		return nil, ErrInvalidSubscriptionState
	}

	if plan != nil && plan.ID != sub.PlanID {
		if sub, err = s.changePlan(ctx, sub, plan); err != nil {
			return nil, err
		}
	}
	if in.AutoRenew != nil && *in.AutoRenew != sub.AutoRenew {
		updated, err := s.store.SetAutoRenew(ctx, sub.ID, *in.AutoRenew, s.now())
		if err != nil {
			if errors.Is(err, ErrInvalidSubscriptionState) || errors.Is(err, ErrSubscriptionNotFound) {
				return nil, err
			}
			return nil, s.storageError(ctx, "set auto renew", err)
		}
		sub = updated
		s.log.InfoContext(ctx, "subscription auto renew changed",
			logger.UserID(sub.UserID),
			logger.SubscriptionID(sub.ID),
			slog.Bool("auto_renew", sub.AutoRenew),
		)
	}
	if in.Status != nil && *in.Status == StatusCancelled {
		return s.cancel(ctx, sub)
	}
	return s.attachPlan(ctx, sub)
}

func (s *service) changePlan(ctx context.Context, sub *Subscription, plan *catalog.Plan) (*Subscription, error) {
	updated, err := s.store.ChangePlan(ctx, sub.ID, plan.ID, plan.DataQuotaGB, s.now())
	if err != nil {
		if errors.Is(err, ErrAlreadySubscribed) || errors.Is(err, ErrSubscriptionNotFound) {
			return nil, err
		}
		return nil, s.storageError(ctx, "change subscription plan", err)
	}

	updated.Plan = plan
	s.observer.PlanChanged(sub.PlanID, plan.ID)
	s.log.InfoContext(ctx, "subscription plan changed",
		logger.UserID(updated.UserID),
		logger.SubscriptionID(updated.ID),
		slog.String("from_plan_id", sub.PlanID),
		logger.PlanID(plan.ID),
	)
	return updated, nil
}

// cancel checks the transition against sub.Status; the store keeps the
// first CancelledAt.
func (s *service) cancel(ctx context.Context, sub *Subscription) (*Subscription, error) {
	next, err := nextStatus(ctx, sub.Status, EventCancel)
	if err != nil {
		return nil, err
	}
	if sub.Status == next && !sub.AutoRenew {
		return s.attachPlan(ctx, sub)
	}

	updated, err := s.store.Cancel(ctx, sub.ID, s.now())
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return nil, err
		}
		return nil, s.storageError(ctx, "cancel subscription", err)
	}

	if sub.Status != next {
		s.observer.Cancelled(updated.PlanID)
		s.log.InfoContext(ctx, "subscription cancelled",
			logger.UserID(updated.UserID),
			logger.SubscriptionID(updated.ID),
			logger.PlanID(updated.PlanID),
		)
	}
	return s.attachPlan(ctx, updated)
}

func (s *service) List(ctx context.Context, userID string) ([]Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	subs, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		return nil, s.storageError(ctx, "list user subscriptions", err)
	}
	if err := s.attachPlans(ctx, subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *service) Get(ctx context.Context, userID string, id uuid.UUID) (*Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sub, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.attachPlan(ctx, sub)
}

// RecordUsage meters dataGB against an active subscription. Usage past the
// quota is stored; the caller inspects Usage.Exceeded.
func (s *service) RecordUsage(ctx context.Context, userID string, id uuid.UUID, dataGB float64) (*Subscription, error) {
	if err := validator.Apply(
		validator.Finite("dataGB", dataGB),
		validator.Positive("dataGB", dataGB),
	); err != nil {
		return nil, errors.Join(ErrInvalidUsage, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sub, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !sub.IsActive() {
		return nil, ErrInvalidSubscriptionState
	}

	updated, err := s.store.IncrementUsage(ctx, id, dataGB, s.now())
	if err != nil {
		if errors.Is(err, ErrInvalidSubscriptionState) || errors.Is(err, ErrSubscriptionNotFound) {
			return nil, err
		}
		return nil, s.storageError(ctx, "increment usage", err)
	}

	exceeded := updated.Usage.Exceeded()
	s.observer.UsageRecorded(updated.PlanID, dataGB, exceeded)
	if exceeded {
		s.log.WarnContext(ctx, "subscription quota exceeded",
			logger.UserID(userID),
			logger.SubscriptionID(id),
			slog.Float64("data_used_gb", updated.Usage.DataUsedGB),
			slog.Float64("quota_gb", updated.Usage.QuotaGB),
		)
	}
	return s.attachPlan(ctx, updated)
}

func (s *service) ListAll(ctx context.Context, filter Filter) ([]Subscription, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrInvalidFilter
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	subs, err := s.store.FindAll(ctx, filter)
	if err != nil {
		return nil, s.storageError(ctx, "list all subscriptions", err)
	}
	if err := s.attachPlans(ctx, subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// TopPlans counts subscriptions per plan, most popular first.
// Plans deleted from the catalog are reported without a name.
func (s *service) TopPlans(ctx context.Context, limit int) ([]PlanCount, error) {
	if limit <= 0 {
		limit = DefaultTopPlansLimit
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	counts, err := s.store.CountByPlan(ctx, limit)
	if err != nil {
		return nil, s.storageError(ctx, "count subscriptions by plan", err)
	}

	byID, err := s.planIndex(ctx)
	if err != nil {
		return nil, err
	}
	for i := range counts {
		if p, ok := byID[counts[i].PlanID]; ok {
			counts[i].PlanName = p.Name
		}
	}
	return counts, nil
}

func (s *service) findPlan(ctx context.Context, planID string) (*catalog.Plan, error) {
	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, catalog.ErrPlanNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, s.storageError(ctx, "find plan", err)
	}
	return plan, nil
}

func (s *service) findOwned(ctx context.Context, userID string, id uuid.UUID) (*Subscription, error) {
	sub, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, s.storageError(ctx, "find subscription", err)
	}
	if sub.UserID != userID {
		return nil, ErrSubscriptionNotFound
	}
	return sub, nil
}

func (s *service) attachPlan(ctx context.Context, sub *Subscription) (*Subscription, error) {
	plan, err := s.plans.FindByID(ctx, sub.PlanID)
	switch {
	case err == nil:
		sub.Plan = plan
	case errors.Is(err, catalog.ErrPlanNotFound):
		sub.Plan = nil
	default:
		return nil, s.storageError(ctx, "attach plan", err)
	}
	return sub, nil
}

func (s *service) attachPlans(ctx context.Context, subs []Subscription) error {
	if len(subs) == 0 {
		return nil
	}
	byID, err := s.planIndex(ctx)
	if err != nil {
		return err
	}
	for i := range subs {
		if p, ok := byID[subs[i].PlanID]; ok {
			plan := p.Clone()
			subs[i].Plan = &plan
		}
	}
	return nil
}

func (s *service) planIndex(ctx context.Context) (map[string]catalog.Plan, error) {
	plans, err := s.plans.List(ctx)
	if err != nil {
		return nil, s.storageError(ctx, "list plans", err)
	}
	byID := make(map[string]catalog.Plan, len(plans))
	for _, p := range plans {
		byID[p.ID] = p
	}
	return byID, nil
}

// storageError logs the cause and hides it behind ErrStorage.
func (s *service) storageError(ctx context.Context, op string, err error) error {
	s.log.ErrorContext(ctx, "subscription storage failure",
		logger.Operation(op),
		logger.Error(err),
	)
	return errors.Join(ErrStorage, err)
}
