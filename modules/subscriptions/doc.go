// Package subscriptions mounts the user facing HTTP API:
//
//	GET    /plans
//	GET    /users/{userId}/subscriptions
//	POST   /users/{userId}/subscriptions          {planId, autoRenew?}
//	GET    /users/{userId}/subscriptions/{id}
//	PUT    /users/{userId}/subscriptions/{id}     {planId}
//	DELETE /users/{userId}/subscriptions/{id}
//	GET    /users/{userId}/recommendations
//
// Per-user routes are limited to the owner and administrators.
package subscriptions
