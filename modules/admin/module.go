package admin

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/planmeter/handler"
	"github.com/dmitrymomot/planmeter/pkg/access"
	"github.com/dmitrymomot/planmeter/pkg/binder"
	"github.com/dmitrymomot/planmeter/pkg/catalog"
	"github.com/dmitrymomot/planmeter/pkg/subscription"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Module serves administrator routes: plan catalog management, subscription
// management and reports, usage metering.
type Module struct {
	subs      subscription.Service
	plans     catalog.Service
	guard     *access.Guard
	responder *handler.ErrorResponder
	now       func() time.Time
}

func New(subs subscription.Service, plans catalog.Service, guard *access.Guard, responder *handler.ErrorResponder) *Module {
	if subs == nil || plans == nil {
		panic("admin: services are required")
	}
	if guard == nil {
		guard = access.NewGuard()
	}
	if responder == nil {
		responder = handler.NewErrorResponder(nil, nil)
	}
	return &Module{subs: subs, plans: plans, guard: guard, responder: responder, now: time.Now}
}

func (m *Module) Handle() http.Handler {
	r := chi.NewRouter()
	r.Use(m.guard.RequireAdmin(m.responder.Respond))

	path := binder.Path(chi.URLParam)

	r.Route("/plans", func(r chi.Router) {
		r.Post("/", handler.Wrap(m.createPlan, m.opts(binder.JSON())...))
		r.Get("/{planId}", handler.Wrap(m.getPlan, m.opts(path)...))
		r.Put("/{planId}", handler.Wrap(m.updatePlan, m.opts(path, binder.JSON())...))
		r.Delete("/{planId}", handler.Wrap(m.deletePlan, m.opts(path)...))
	})

	r.Get("/subscriptions", handler.Wrap(m.listSubscriptions, m.opts(binder.Query())...))
	r.Get("/subscriptions/export", handler.Wrap(m.exportSubscriptions, m.opts(binder.Query())...))
	r.Put("/subscriptions/{id}", handler.Wrap(m.manageSubscription, m.opts(path, binder.JSON())...))
	r.Get("/dashboard/top-plans", handler.Wrap(m.topPlans, m.opts(binder.Query())...))
	r.Post("/users/{userId}/subscriptions/{id}/usage", handler.Wrap(m.recordUsage, m.opts(path, binder.JSON())...))

	return r
}

func (m *Module) opts(binders ...handler.Bind) []handler.Option {
	return []handler.Option{
		handler.WithBinders(binders...),
		handler.WithErrorHandler(m.responder.Handle),
	}
}

type planRequest struct {
	PlanID string `path:"planId" json:"-"`
	catalog.PlanInput
}

type planIDRequest struct {
	PlanID string `path:"planId"`
}

type filterRequest struct {
	Status string `query:"status"`
	UserID string `query:"userId"`
}

func (f filterRequest) filter() subscription.Filter {
	return subscription.Filter{Status: subscription.Status(f.Status), UserID: f.UserID}
}

type topPlansRequest struct {
	Limit int `query:"limit"`
}

type manageRequest struct {
	ID uuid.UUID `path:"id" json:"-"`
	subscription.ManageInput
}

type usageRequest struct {
	UserID string    `path:"userId" json:"-"`
	ID     uuid.UUID `path:"id" json:"-"`
	DataGB float64   `json:"dataGB"`
}

func (m *Module) createPlan(ctx handler.Context, req planRequest) handler.Response {
	plan, err := m.plans.Create(ctx, req.PlanInput)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Created(plan)
}

func (m *Module) getPlan(ctx handler.Context, req planIDRequest) handler.Response {
	plan, err := m.plans.FindByID(ctx, req.PlanID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(plan)
}

func (m *Module) updatePlan(ctx handler.Context, req planRequest) handler.Response {
	plan, err := m.plans.Update(ctx, req.PlanID, req.PlanInput)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(plan)
}

func (m *Module) deletePlan(ctx handler.Context, req planIDRequest) handler.Response {
	if err := m.plans.Delete(ctx, req.PlanID); err != nil {
		return handler.Error(err)
	}
	return handler.Message("Plan deleted successfully")
}

func (m *Module) listSubscriptions(ctx handler.Context, req filterRequest) handler.Response {
	subs, err := m.subs.ListAll(ctx, req.filter())
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(subs, handler.WithMeta(map[string]any{"total": len(subs)}))
}

func (m *Module) exportSubscriptions(ctx handler.Context, req filterRequest) handler.Response {
	subs, err := m.subs.ListAll(ctx, req.filter())
	if err != nil {
		return handler.Error(err)
	}
	name := "subscriptions-" + m.now().UTC().Format("20060102-150405") + ".xlsx"
	return handler.Attachment(name, xlsxContentType, func(w io.Writer) error {
		return WriteSubscriptionsXLSX(w, subs)
	})
}

func (m *Module) manageSubscription(ctx handler.Context, req manageRequest) handler.Response {
	sub, err := m.subs.Manage(ctx, req.ID, req.ManageInput)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(sub)
}

func (m *Module) topPlans(ctx handler.Context, req topPlansRequest) handler.Response {
	counts, err := m.subs.TopPlans(ctx, req.Limit)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(counts)
}

func (m *Module) recordUsage(ctx handler.Context, req usageRequest) handler.Response {
	sub, err := m.subs.RecordUsage(ctx, req.UserID, req.ID, req.DataGB)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(sub, handler.WithMeta(map[string]any{
		"usagePercent":  sub.Usage.Percent(),
		"quotaExceeded": sub.Usage.Exceeded(),
	}))
}
