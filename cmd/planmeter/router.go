package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/planmeter/handler"
	"github.com/dmitrymomot/planmeter/modules"
	"github.com/dmitrymomot/planmeter/modules/admin"
	"github.com/dmitrymomot/planmeter/modules/subscriptions"
	"github.com/dmitrymomot/planmeter/pkg/access"
	"github.com/dmitrymomot/planmeter/pkg/catalog"
	"github.com/dmitrymomot/planmeter/pkg/clientip"
	"github.com/dmitrymomot/planmeter/pkg/httpserver"
	"github.com/dmitrymomot/planmeter/pkg/jwt"
	"github.com/dmitrymomot/planmeter/pkg/metrics"
	"github.com/dmitrymomot/planmeter/pkg/ratelimiter"
	"github.com/dmitrymomot/planmeter/pkg/requestid"
	"github.com/dmitrymomot/planmeter/pkg/subscription"
)

type routerDeps struct {
	log      *slog.Logger
	tokens   *jwt.Service
	plans    catalog.Service
	subs     subscription.Service
	registry *prometheus.Registry
	limiter  *ratelimiter.Bucket // nil disables rate limiting
	checks   map[string]httpserver.Check
	timeout  time.Duration
}

func newRouter(d routerDeps) http.Handler {
	responder := handler.NewErrorResponder(d.log, modules.ErrorMapper())
	guard := access.NewGuard()

	r := chi.NewRouter()
	r.Use(requestid.Middleware, clientip.Middleware, middleware.Recoverer, metrics.HTTPMiddleware(d.registry))
	r.NotFound(responder.NotFound)
	r.MethodNotAllowed(responder.MethodNotAllowed)

	r.Get("/health/live", httpserver.Liveness())
	r.Get("/health/ready", httpserver.Readiness(d.log, d.timeout, d.checks))
	r.Handle("/metrics", metrics.Handler(d.registry))

	r.Group(func(r chi.Router) {
		r.Use(jwt.Middleware(d.tokens, responder.Respond), access.FromJWT())
		if d.limiter != nil {
			r.Use(ratelimiter.Middleware(d.limiter, ratelimiter.ByIdentity, responder.Respond))
		}
		r.Mount("/", modules.Router(modules.RouterOptions{
			Subscriptions: subscriptions.New(d.subs, d.plans, guard, responder),
			Admin:         admin.New(d.subs, d.plans, guard, responder),
		}))
	})

	return r
}
