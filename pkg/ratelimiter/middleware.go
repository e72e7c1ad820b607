package ratelimiter

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/planmeter/pkg/access"
	"github.com/dmitrymomot/planmeter/pkg/clientip"
)

// KeyFunc picks the bucket for a request. An empty key skips limiting.
type KeyFunc func(r *http.Request) string

// ErrorHandler renders limiter failures, including ErrLimitExceeded.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// ByIdentity keys authenticated callers by user id and everyone else by
// client IP.
func ByIdentity(r *http.Request) string {
	if id, ok := access.IdentityFromContext(r.Context()); ok && id.ID != "" {
		return "user:" + id.ID
	}
	if ip := clientip.FromRequest(r); ip != "" {
		return "ip:" + ip
	}
	return ""
}

// Middleware takes one token per request and sets the X-RateLimit-* headers.
func Middleware(b *Bucket, key KeyFunc, onError ErrorHandler) func(http.Handler) http.Handler {
	if b == nil {
		panic("ratelimiter: Bucket is required")
	}
	if key == nil {
		key = ByIdentity
	}
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, err error) {
			code := http.StatusInternalServerError
			if errors.Is(err, ErrLimitExceeded) {
				code = http.StatusTooManyRequests
			}
			http.Error(w, http.StatusText(code), code)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			res, err := b.Allow(r.Context(), k)
			if err != nil {
				onError(w, r, err)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(max(res.Remaining, 0)))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed() {
				secs := int((res.RetryAfter(time.Now()) + time.Second - 1) / time.Second)
				h.Set("Retry-After", strconv.Itoa(max(secs, 1)))
				onError(w, r, ErrLimitExceeded)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
