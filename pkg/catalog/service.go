package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/planmeter/pkg/logger"
)

// Service exposes the plan catalog: price-sorted reads for the subscription
// engine and administrator CRUD.
type Service interface {
	List(ctx context.Context) ([]Plan, error)
	FindByID(ctx context.Context, id string) (*Plan, error)
	Create(ctx context.Context, in PlanInput) (*Plan, error)
	Update(ctx context.Context, id string, in PlanInput) (*Plan, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo  Repository
	usage UsageChecker
	cache Cache
	log   *slog.Logger
	now   func() time.Time
	newID func() string
}

// Option configures the catalog service.
type Option func(*service)

// WithCache puts a read-through cache in front of List.
func WithCache(c Cache) Option {
	return func(s *service) { s.cache = c }
}

// WithUsageChecker enables the in-use check performed before Delete.
func WithUsageChecker(u UsageChecker) Option {
	return func(s *service) { s.usage = u }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(s *service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService panics when repo is nil.
func NewService(repo Repository, opts ...Option) Service {
	if repo == nil {
		panic("catalog: Repository is required")
	}
	s := &service{
		repo:  repo,
		log:   logger.Discard(),
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("catalog"))
	return s
}

func (s *service) List(ctx context.Context) ([]Plan, error) {
	if s.cache != nil {
		plans, err := s.cache.Get(ctx)
		if err == nil {
			return plans, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.log.WarnContext(ctx, "plan cache read failed", logger.Error(err))
		}
	}

	plans, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoad, err)
	}
	SortByPrice(plans)

	if s.cache != nil {
		if err := s.cache.Set(ctx, plans); err != nil {
			s.log.WarnContext(ctx, "plan cache write failed", logger.Error(err))
		}
	}
	return plans, nil
}

func (s *service) FindByID(ctx context.Context, id string) (*Plan, error) {
	if id == "" {
		return nil, ErrPlanNotFound
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) Create(ctx context.Context, in PlanInput) (*Plan, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidPlan, err)
	}

	now := s.now()
	p := &Plan{ID: s.newID(), AutoRenewDefault: true, CreatedAt: now, UpdatedAt: now}
	in.apply(p)

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.log.InfoContext(ctx, "plan created", logger.PlanID(p.ID), slog.String("name", p.Name))
	return p, nil
}

// Update replaces plan attributes. Existing subscriptions keep their quota snapshot.
func (s *service) Update(ctx context.Context, id string, in PlanInput) (*Plan, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidPlan, err)
	}

	p, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(p)
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.log.InfoContext(ctx, "plan updated", logger.PlanID(p.ID))
	return p, nil
}

// Delete refuses plans referenced by an active subscription. The check runs
// again after the delete; when it fails the plan is restored.
func (s *service) Delete(ctx context.Context, id string) error {
	plan, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkUnused(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)

	if err := s.checkUnused(ctx, id); err != nil {
		if rerr := s.repo.Create(ctx, plan); rerr != nil {
			s.log.ErrorContext(ctx, "plan restore failed", logger.PlanID(id), logger.Error(rerr))
			return errors.Join(err, rerr)
		}
		s.invalidate(ctx)
		s.log.WarnContext(ctx, "plan delete rolled back", logger.PlanID(id), logger.Error(err))
		return err
	}
	s.log.InfoContext(ctx, "plan deleted", logger.PlanID(id))
	return nil
}

func (s *service) checkUnused(ctx context.Context, id string) error {
	if s.usage == nil {
		return nil
	}
	inUse, err := s.usage.HasActiveForPlan(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrPlanInUse
	}
	return nil
}

func (s *service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.WarnContext(ctx, "plan cache invalidation failed", logger.Error(err))
	}
}
