package binder_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/planmeter/pkg/binder"
)

type subscribeBody struct {
	PlanID    string `json:"planId"`
	AutoRenew *bool  `json:"autoRenew"`
}

func jsonRequest(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	return r
}

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("decodes", func(t *testing.T) {
		t.Parallel()
		var v subscribeBody
		require.NoError(t, binder.JSON()(jsonRequest(`{"planId":"basic","autoRenew":false}`), &v))
		assert.Equal(t, "basic", v.PlanID)
		require.NotNil(t, v.AutoRenew)
		assert.False(t, *v.AutoRenew)
	})

	t.Run("optional field absent", func(t *testing.T) {
		t.Parallel()
		var v subscribeBody
		require.NoError(t, binder.JSON()(jsonRequest(`{"planId":"basic"}`), &v))
		assert.Nil(t, v.AutoRenew)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		t.Parallel()
		var v subscribeBody
		err := binder.JSON()(jsonRequest(`{"planId":"basic","price":1}`), &v)
		assert.ErrorIs(t, err, binder.ErrFailedToParseJSON)
	})

	t.Run("rejects trailing data", func(t *testing.T) {
		t.Parallel()
		var v subscribeBody
		err := binder.JSON()(jsonRequest(`{"planId":"a"}{"planId":"b"}`), &v)
		assert.ErrorIs(t, err, binder.ErrFailedToParseJSON)
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()
		var v subscribeBody
		assert.ErrorIs(t, binder.JSON()(jsonRequest(""), &v), binder.ErrFailedToParseJSON)
	})

	t.Run("content type", func(t *testing.T) {
		t.Parallel()
		var v subscribeBody
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		assert.ErrorIs(t, binder.JSON()(r, &v), binder.ErrMissingContentType)

		r.Header.Set("Content-Type", "text/plain")
		assert.ErrorIs(t, binder.JSON()(r, &v), binder.ErrUnsupportedMediaType)
	})

	t.Run("size limit", func(t *testing.T) {
		t.Parallel()
		var v subscribeBody
		err := binder.JSONWithLimit(8)(jsonRequest(`{"planId":"longer-than-eight"}`), &v)
		assert.ErrorIs(t, err, binder.ErrBodyTooLarge)
	})
}

type listQuery struct {
	Status string   `query:"status"`
	Limit  int      `query:"limit"`
	Tags   []string `query:"tags"`
	Active *bool    `query:"active"`
	Ignore string
}

func TestQuery(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/?status=active&limit=3&tags=a,b&tags=c&active=true&Ignore=x", nil)
	var q listQuery
	require.NoError(t, binder.Query()(r, &q))
	assert.Equal(t, "active", q.Status)
	assert.Equal(t, 3, q.Limit)
	assert.Equal(t, []string{"a", "b", "c"}, q.Tags)
	require.NotNil(t, q.Active)
	assert.True(t, *q.Active)
	assert.Empty(t, q.Ignore)

	bad := httptest.NewRequest(http.MethodGet, "/?limit=many", nil)
	assert.ErrorIs(t, binder.Query()(bad, &listQuery{}), binder.ErrFailedToParseQuery)

	assert.ErrorIs(t, binder.Query()(r, listQuery{}), binder.ErrFailedToParseQuery)
}

type pathParams struct {
	UserID string    `path:"userId"`
	ID     uuid.UUID `path:"id"`
}

func withChiParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestPath(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	r := withChiParams(httptest.NewRequest(http.MethodGet, "/", nil), "userId", "u1", "id", id.String())
	var p pathParams
	require.NoError(t, binder.Path(chi.URLParam)(r, &p))
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, id, p.ID)

	bad := withChiParams(httptest.NewRequest(http.MethodGet, "/", nil), "userId", "u1", "id", "not-a-uuid")
	assert.ErrorIs(t, binder.Path(chi.URLParam)(bad, &pathParams{}), binder.ErrFailedToParsePath)
}
