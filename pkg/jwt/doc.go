// Package jwt issues and verifies HS256 JSON Web Tokens without external
// dependencies.
//
// planmeter does not run a login flow; an upstream identity provider (or the
// admin CLI) issues tokens whose subject is the user id and whose "role"
// claim is "user" or "admin":
//
//	svc, _ := jwt.NewFromConfig(cfg)
//	token, _ := svc.Issue("user-42", "user")
//
//	r.Use(jwt.Middleware(svc, renderUnauthorized))
//	claims, ok := jwt.ClaimsFromContext(r.Context())
//
// Parse rejects tokens with a bad signature, an unexpected algorithm, an
// expired exp, a future nbf, or a foreign issuer.
package jwt
