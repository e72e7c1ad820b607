package subscriptions_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/planmeter/handler"
	"github.com/dmitrymomot/planmeter/modules"
	"github.com/dmitrymomot/planmeter/modules/subscriptions"
	"github.com/dmitrymomot/planmeter/pkg/access"
	"github.com/dmitrymomot/planmeter/pkg/catalog"
	"github.com/dmitrymomot/planmeter/pkg/subscription"
)

type envelope struct {
	Data  json.RawMessage      `json:"data"`
	Meta  map[string]any       `json:"meta"`
	Error *handler.ErrorDetail `json:"error"`
}

type fixture struct {
	router http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	plans := catalog.NewService(catalog.NewMemoryRepository(
		catalog.Plan{ID: "basic", Name: "Basic", Price: 10, SpeedMbps: 50, DataQuotaGB: 50, AutoRenewDefault: true},
		catalog.Plan{ID: "standard", Name: "Standard", Price: 20, SpeedMbps: 100, DataQuotaGB: 100, AutoRenewDefault: true},
		catalog.Plan{ID: "pro", Name: "Pro", Price: 30, SpeedMbps: 500, DataQuotaGB: 200, AutoRenewDefault: true},
	))
	subs := subscription.NewService(subscription.NewMemoryStore(), plans)
	responder := handler.NewErrorResponder(nil, modules.ErrorMapper())
	return &fixture{router: subscriptions.New(subs, plans, access.NewGuard(), responder).Handle()}
}

func (f *fixture) do(t *testing.T, as access.Identity, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if as.ID != "" {
		req = req.WithContext(access.WithIdentity(req.Context(), as))
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

var (
	alice = access.Identity{ID: "alice", Role: access.RoleUser}
	bob   = access.Identity{ID: "bob", Role: access.RoleUser}
	admin = access.Identity{ID: "root", Role: access.RoleAdmin}
)

func decodeSub(t *testing.T, env envelope) subscription.Subscription {
	t.Helper()
	var sub subscription.Subscription
	require.NoError(t, json.Unmarshal(env.Data, &sub))
	return sub
}

func TestSubscriptionLifecycle(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	code, env := f.do(t, alice, http.MethodPost, "/users/alice/subscriptions", map[string]any{"planId": "basic"})
	require.Equal(t, http.StatusCreated, code)
	created := decodeSub(t, env)
	assert.Equal(t, subscription.StatusActive, created.Status)
	assert.False(t, created.AutoRenew)
	assert.InDelta(t, 50, created.Usage.QuotaGB, 1e-9)

	code, env = f.do(t, alice, http.MethodPost, "/users/alice/subscriptions", map[string]any{"planId": "basic"})
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "subscription_already_active", env.Error.Code)

	path := "/users/alice/subscriptions/" + created.ID.String()
	code, env = f.do(t, alice, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, code)
	got := decodeSub(t, env)
	assert.Equal(t, created.ID, got.ID)
	require.NotNil(t, got.Plan)
	assert.Equal(t, "Basic", got.Plan.Name)

	code, env = f.do(t, alice, http.MethodPut, path, map[string]any{"planId": "pro"})
	require.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 200, decodeSub(t, env).Usage.QuotaGB, 1e-9)

	code, env = f.do(t, alice, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"message":"Subscription cancelled successfully"}`, string(env.Data))

	code, env = f.do(t, alice, http.MethodGet, "/users/alice/subscriptions", nil)
	require.Equal(t, http.StatusOK, code)
	var list []subscription.Subscription
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, subscription.StatusCancelled, list[0].Status)
	assert.False(t, list[0].AutoRenew)
	assert.EqualValues(t, 1, env.Meta["total"])
}

func TestSubscribeErrors(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	code, env := f.do(t, alice, http.MethodPost, "/users/alice/subscriptions", map[string]any{"planId": "gold"})
	require.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", env.Error.Code)

	code, env = f.do(t, alice, http.MethodPost, "/users/alice/subscriptions", map[string]any{"planId": ""})
	require.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Error.Details, "planId")

	code, _ = f.do(t, alice, http.MethodPost, "/users/alice/subscriptions", map[string]any{"plan": "basic"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = f.do(t, alice, http.MethodGet, "/users/alice/subscriptions/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = f.do(t, alice, http.MethodGet, "/users/alice/subscriptions/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAccessControl(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	code, env := f.do(t, alice, http.MethodPost, "/users/alice/subscriptions", map[string]any{"planId": "basic"})
	require.Equal(t, http.StatusCreated, code)
	id := decodeSub(t, env).ID.String()

	routes := []struct {
		method string
		path   string
		body   any
		want   int // status for an admin caller
	}{
		{http.MethodGet, "/users/alice/subscriptions", nil, http.StatusOK},
		{http.MethodPost, "/users/alice/subscriptions", map[string]any{"planId": "pro"}, http.StatusCreated},
		{http.MethodGet, "/users/alice/subscriptions/" + id, nil, http.StatusOK},
		{http.MethodPut, "/users/alice/subscriptions/" + id, map[string]any{"planId": "standard"}, http.StatusOK},
		{http.MethodDelete, "/users/alice/subscriptions/" + id, nil, http.StatusOK},
		{http.MethodGet, "/users/alice/recommendations", nil, http.StatusOK},
	}
	for _, rt := range routes {
		code, env := f.do(t, bob, rt.method, rt.path, rt.body)
		assert.Equal(t, http.StatusForbidden, code, "%s %s", rt.method, rt.path)
		if assert.NotNil(t, env.Error) {
			assert.Equal(t, "forbidden", env.Error.Code)
		}

		code, _ = f.do(t, access.Identity{}, rt.method, rt.path, rt.body)
		assert.Equal(t, http.StatusUnauthorized, code, "%s %s", rt.method, rt.path)
	}

	for _, rt := range routes {
		code, env := f.do(t, admin, rt.method, rt.path, rt.body)
		assert.Equal(t, rt.want, code, "%s %s", rt.method, rt.path)
		assert.Nil(t, env.Error, "%s %s", rt.method, rt.path)
	}

	code, env = f.do(t, alice, http.MethodGet, "/users/alice/subscriptions/"+id, nil)
	require.Equal(t, http.StatusOK, code)
	got := decodeSub(t, env)
	assert.Equal(t, "standard", got.PlanID)
	assert.Equal(t, subscription.StatusCancelled, got.Status)
}

func TestRecommendationsAndPlans(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	code, env := f.do(t, alice, http.MethodGet, "/users/alice/recommendations", nil)
	require.Equal(t, http.StatusOK, code)
	var rec subscription.Recommendation
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.Equal(t, subscription.ReasonNoSubscription, rec.Reason)
	assert.LessOrEqual(t, len(rec.Plans), 3)
	assert.NotEmpty(t, rec.Plans)

	code, env = f.do(t, bob, http.MethodGet, "/plans", nil)
	require.Equal(t, http.StatusOK, code)
	var plans []catalog.Plan
	require.NoError(t, json.Unmarshal(env.Data, &plans))
	require.Len(t, plans, 3)
	assert.Equal(t, "basic", plans[0].ID)

	code, _ = f.do(t, access.Identity{}, http.MethodGet, "/plans", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}
