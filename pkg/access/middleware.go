package access

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/planmeter/pkg/jwt"
)

// ErrorHandler renders an authorization failure.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// FromJWT turns claims verified by jwt.Middleware into an Identity.
// Requests without claims pass through unauthenticated.
func FromJWT() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := jwt.ClaimsFromContext(r.Context()); ok {
				id := Identity{ID: claims.Subject, Role: ParseRole(claims.Role)}
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwner authorizes the caller against the chi URL parameter param.
func (g *Guard) RequireOwner(param string, onError ErrorHandler) func(http.Handler) http.Handler {
	return g.require(onError, func(r *http.Request, id Identity) error {
		return g.Authorize(id, chi.URLParam(r, param))
	})
}

// RequireAdmin lets administrators through.
func (g *Guard) RequireAdmin(onError ErrorHandler) func(http.Handler) http.Handler {
	return g.require(onError, func(_ *http.Request, id Identity) error {
		return g.AuthorizeAdmin(id)
	})
}

func (g *Guard) RequireAuthenticated(onError ErrorHandler) func(http.Handler) http.Handler {
	return g.require(onError, func(_ *http.Request, id Identity) error {
		return g.AuthorizeAuthenticated(id)
	})
}

func (g *Guard) require(onError ErrorHandler, check func(*http.Request, Identity) error) func(http.Handler) http.Handler {
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, err error) {
			status := http.StatusForbidden
			if errors.Is(err, ErrUnauthenticated) {
				status = http.StatusUnauthorized
			}
			http.Error(w, err.Error(), status)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, _ := IdentityFromContext(r.Context())
			if err := check(r, id); err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
