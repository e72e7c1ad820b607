package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/planmeter/pkg/catalog"
	"github.com/dmitrymomot/planmeter/pkg/httpserver"
	"github.com/dmitrymomot/planmeter/pkg/jwt"
	"github.com/dmitrymomot/planmeter/pkg/logger"
	"github.com/dmitrymomot/planmeter/pkg/ratelimiter"
	"github.com/dmitrymomot/planmeter/pkg/subscription"
)

func newTestRouter(t *testing.T, checks map[string]httpserver.Check, limiter ...*ratelimiter.Bucket) (http.Handler, *jwt.Service) {
	t.Helper()
	tokens, err := jwt.New([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	store := subscription.NewMemoryStore()
	plans := catalog.NewService(catalog.NewMemoryRepository(
		catalog.Plan{ID: "basic", Name: "Basic", Price: 10, SpeedMbps: 50, DataQuotaGB: 50},
	), catalog.WithUsageChecker(store))
	subs := subscription.NewService(store, plans)

	var lim *ratelimiter.Bucket
	if len(limiter) > 0 {
		lim = limiter[0]
	}

	return newRouter(routerDeps{
		log:      logger.Discard(),
		tokens:   tokens,
		plans:    plans,
		subs:     subs,
		registry: prometheus.NewRegistry(),
		limiter:  lim,
		checks:   checks,
		timeout:  time.Second,
	}), tokens
}

func serve(h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestProbesArePublic(t *testing.T) {
	t.Parallel()
	h, _ := newTestRouter(t, map[string]httpserver.Check{})

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health/live", "").Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health/ready", "").Code)

	rec := serve(h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadinessReportsFailingDependency(t *testing.T) {
	t.Parallel()
	h, _ := newTestRouter(t, map[string]httpserver.Check{
		"mongo": func(context.Context) error { return errors.New("down") },
	})

	rec := serve(h, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"mongo":"down"`)
}

func TestAPIRequiresToken(t *testing.T) {
	t.Parallel()
	h, tokens := newTestRouter(t, map[string]httpserver.Check{})

	rec := serve(h, http.MethodGet, "/plans", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unauthorized"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	assert.Equal(t, http.StatusUnauthorized, serve(h, http.MethodGet, "/plans", "garbage").Code)

	user, err := tokens.Issue("alice", "user")
	require.NoError(t, err)
	rec = serve(h, http.MethodGet, "/plans", user)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Basic"`)

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/users/alice/subscriptions", user).Code)
	assert.Equal(t, http.StatusForbidden, serve(h, http.MethodGet, "/users/bob/subscriptions", user).Code)
	assert.Equal(t, http.StatusForbidden, serve(h, http.MethodGet, "/admin/subscriptions", user).Code)

	root, err := tokens.Issue("root", "admin")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/admin/subscriptions", root).Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/users/bob/subscriptions", root).Code)
}

func TestAPIRateLimited(t *testing.T) {
	t.Parallel()
	limiter, err := ratelimiter.NewBucket(
		ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0)),
		ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Hour},
	)
	require.NoError(t, err)
	h, tokens := newTestRouter(t, map[string]httpserver.Check{}, limiter)

	user, err := tokens.Issue("alice", "user")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/plans", user).Code)
	rec := serve(h, http.MethodGet, "/plans", user)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rate_limited"`)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health/live", "").Code, "probes are not limited")
}
