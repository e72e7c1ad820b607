package subscriptions

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/planmeter/handler"
	"github.com/dmitrymomot/planmeter/pkg/access"
	"github.com/dmitrymomot/planmeter/pkg/binder"
	"github.com/dmitrymomot/planmeter/pkg/catalog"
	"github.com/dmitrymomot/planmeter/pkg/subscription"
)

// Module serves the per-user subscription API and the public plan list.
type Module struct {
	subs      subscription.Service
	plans     catalog.Service
	guard     *access.Guard
	responder *handler.ErrorResponder
}

func New(subs subscription.Service, plans catalog.Service, guard *access.Guard, responder *handler.ErrorResponder) *Module {
	if subs == nil || plans == nil {
		panic("subscriptions: services are required")
	}
	if guard == nil {
		guard = access.NewGuard()
	}
	if responder == nil {
		responder = handler.NewErrorResponder(nil, nil)
	}
	return &Module{subs: subs, plans: plans, guard: guard, responder: responder}
}

// Handle expects an access.Identity in the request context.
func (m *Module) Handle() http.Handler {
	r := chi.NewRouter()

	r.With(m.guard.RequireAuthenticated(m.responder.Respond)).
		Get("/plans", handler.Wrap(m.listPlans, m.opts()...))

	r.Route("/users/{userId}", func(r chi.Router) {
		r.Use(m.guard.RequireOwner("userId", m.responder.Respond))

		r.Get("/subscriptions", handler.Wrap(m.list, m.opts(binder.Path(chi.URLParam))...))
		r.Post("/subscriptions", handler.Wrap(m.subscribe, m.opts(binder.Path(chi.URLParam), binder.JSON())...))
		r.Get("/subscriptions/{id}", handler.Wrap(m.get, m.opts(binder.Path(chi.URLParam))...))
		r.Put("/subscriptions/{id}", handler.Wrap(m.changePlan, m.opts(binder.Path(chi.URLParam), binder.JSON())...))
		r.Delete("/subscriptions/{id}", handler.Wrap(m.cancel, m.opts(binder.Path(chi.URLParam))...))
		r.Get("/recommendations", handler.Wrap(m.recommend, m.opts(binder.Path(chi.URLParam))...))
	})

	return r
}

func (m *Module) opts(binders ...handler.Bind) []handler.Option {
	return []handler.Option{
		handler.WithBinders(binders...),
		handler.WithErrorHandler(m.responder.Handle),
	}
}

type userRequest struct {
	UserID string `path:"userId"`
}

type subscriptionRequest struct {
	UserID string    `path:"userId"`
	ID     uuid.UUID `path:"id"`
}

type subscribeRequest struct {
	UserID    string `path:"userId" json:"-"`
	PlanID    string `json:"planId"`
	AutoRenew *bool  `json:"autoRenew,omitempty"`
}

type changePlanRequest struct {
	UserID string    `path:"userId" json:"-"`
	ID     uuid.UUID `path:"id" json:"-"`
	PlanID string    `json:"planId"`
}

func (m *Module) listPlans(ctx handler.Context, _ struct{}) handler.Response {
	plans, err := m.plans.List(ctx)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(plans, handler.WithMeta(map[string]any{"total": len(plans)}))
}

func (m *Module) list(ctx handler.Context, req userRequest) handler.Response {
	subs, err := m.subs.List(ctx, req.UserID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(subs, handler.WithMeta(map[string]any{"total": len(subs)}))
}

func (m *Module) get(ctx handler.Context, req subscriptionRequest) handler.Response {
	sub, err := m.subs.Get(ctx, req.UserID, req.ID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(sub)
}

func (m *Module) subscribe(ctx handler.Context, req subscribeRequest) handler.Response {
	if err := requirePlanID(req.PlanID); err != nil {
		return handler.Error(err)
	}
	sub, err := m.subs.Subscribe(ctx, req.UserID, req.PlanID, req.AutoRenew)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Created(sub)
}

func (m *Module) changePlan(ctx handler.Context, req changePlanRequest) handler.Response {
	if err := requirePlanID(req.PlanID); err != nil {
		return handler.Error(err)
	}
	sub, err := m.subs.ChangePlan(ctx, req.UserID, req.ID, req.PlanID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(sub)
}

func (m *Module) cancel(ctx handler.Context, req subscriptionRequest) handler.Response {
	if _, err := m.subs.Cancel(ctx, req.UserID, req.ID); err != nil {
		return handler.Error(err)
	}
	return handler.Message("Subscription cancelled successfully")
}

func (m *Module) recommend(ctx handler.Context, req userRequest) handler.Response {
	rec, err := m.subs.Recommend(ctx, req.UserID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(rec)
}
