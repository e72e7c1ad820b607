// Package access resolves the caller identity and guards per-user routes.
//
// A caller may act on /users/{userId}/... only when its id equals userId or
// it holds the admin role; /admin/... requires the admin role.
//
//	guard := access.NewGuard()
//	r.Use(jwt.Middleware(tokens, handler.Unauthorized), access.FromJWT())
//	r.With(guard.RequireOwner("userId", handler.AccessDenied)).Get(...)
package access
