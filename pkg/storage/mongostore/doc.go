// Package mongostore persists subscriptions and the plan catalog in MongoDB.
//
// At most one active subscription per (user, plan) is enforced by a partial
// unique index on {user_id, plan_id} filtered to status "active", so two
// racing subscribe calls cannot both insert. Plan names are unique
// case-insensitively through an indexed lowercase copy. Usage is added with
// a single $inc so concurrent recordings never lose updates.
//
//	db, err := mongo.ConnectDatabase(ctx, cfg.Mongo)
//	subs := mongostore.NewSubscriptionStore(db)
//	if err := subs.EnsureIndexes(ctx); err != nil { ... }
package mongostore
