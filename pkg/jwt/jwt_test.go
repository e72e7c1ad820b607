package jwt_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/planmeter/pkg/jwt"
)

var issuedAt = time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

func newService(t *testing.T, now time.Time, opts ...jwt.Option) *jwt.Service {
	t.Helper()
	base := []jwt.Option{jwt.WithIssuer("planmeter"), jwt.WithClock(func() time.Time { return now })}
	svc, err := jwt.New([]byte("0123456789abcdef0123456789abcdef"), append(base, opts...)...)
	require.NoError(t, err)
	return svc
}

func TestNew_RequiresKey(t *testing.T) {
	t.Parallel()
	_, err := jwt.New(nil)
	assert.ErrorIs(t, err, jwt.ErrMissingSigningKey)

	_, err = jwt.NewFromConfig(jwt.Config{})
	assert.ErrorIs(t, err, jwt.ErrMissingSigningKey)
}

func TestIssueAndParse(t *testing.T) {
	t.Parallel()
	svc := newService(t, issuedAt)

	token, err := svc.Issue("user-42", "admin")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(token, "."))

	var claims jwt.Claims
	require.NoError(t, svc.Parse(token, &claims))
	assert.Equal(t, "user-42", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "planmeter", claims.Issuer)
	assert.Equal(t, issuedAt.Add(time.Hour).Unix(), claims.ExpiresAt)

	_, err = svc.Issue("", "user")
	assert.ErrorIs(t, err, jwt.ErrMissingClaims)
}

func TestParse_Rejections(t *testing.T) {
	t.Parallel()
	svc := newService(t, issuedAt, jwt.WithTTL(time.Minute))
	token, err := svc.Issue("user-42", "user")
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		t.Parallel()
		later := newService(t, issuedAt.Add(2*time.Minute))
		var claims jwt.Claims
		assert.ErrorIs(t, later.Parse(token, &claims), jwt.ErrExpiredToken)
	})

	t.Run("tampered payload", func(t *testing.T) {
		t.Parallel()
		parts := strings.Split(token, ".")
		forged, err := svc.Generate(jwt.Claims{StandardClaims: jwt.StandardClaims{Subject: "someone-else"}, Role: "admin"})
		require.NoError(t, err)
		tampered := parts[0] + "." + strings.Split(forged, ".")[1] + "." + parts[2]

		var claims jwt.Claims
		assert.ErrorIs(t, svc.Parse(tampered, &claims), jwt.ErrInvalidSignature)
	})

	t.Run("other key", func(t *testing.T) {
		t.Parallel()
		other, err := jwt.New([]byte("another-secret-another-secret-xx"))
		require.NoError(t, err)
		var claims jwt.Claims
		assert.ErrorIs(t, other.Parse(token, &claims), jwt.ErrInvalidSignature)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		t.Parallel()
		strict := newService(t, issuedAt, jwt.WithIssuer("someone-else"))
		var claims jwt.Claims
		assert.ErrorIs(t, strict.Parse(token, &claims), jwt.ErrInvalidClaims)
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		var claims jwt.Claims
		assert.ErrorIs(t, svc.Parse("not-a-token", &claims), jwt.ErrInvalidToken)
	})
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		token  string
		err    error
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", nil},
		{"bearer abc", "abc", nil},
		{"", "", jwt.ErrMissingToken},
		{"Bearer   ", "", jwt.ErrInvalidToken},
		{"Basic dXNlcjpwYXNz", "", jwt.ErrInvalidToken},
		{"Bearer", "", jwt.ErrInvalidToken},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		token, err := jwt.BearerToken(r)
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err, tt.header)
			continue
		}
		require.NoError(t, err, tt.header)
		assert.Equal(t, tt.token, token)
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()
	svc := newService(t, issuedAt)
	token, err := svc.Issue("user-42", "user")
	require.NoError(t, err)

	var seen jwt.Claims
	h := jwt.Middleware(svc, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := jwt.ClaimsFromContext(r.Context())
		require.True(t, ok)
		seen = claims
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "user-42", seen.Subject)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var handled error
	custom := jwt.Middleware(svc, func(w http.ResponseWriter, _ *http.Request, err error) {
		handled = err
		w.WriteHeader(http.StatusTeapot)
	})(http.NotFoundHandler())
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	custom.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.ErrorIs(t, handled, jwt.ErrInvalidToken)
}
