// Package ratelimiter throttles API callers with a token bucket.
//
// Each key (usually the authenticated user, falling back to the client IP)
// owns a bucket of Capacity tokens that is topped up by RefillRate tokens every
// RefillInterval. A request costs one token; once the bucket is empty the
// middleware reports ErrLimitExceeded to the supplied error handler and sets
// Retry-After.
//
//	limiter, _ := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), cfg)
//	r.Use(ratelimiter.Middleware(limiter, ratelimiter.ByIdentity, responder.Respond))
package ratelimiter
