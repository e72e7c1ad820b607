// Package pgstore persists subscriptions and the plan catalog in PostgreSQL
// through pgx. The schema ships as embedded goose migrations; Migrate applies
// them. Active uniqueness per (user, plan) is a partial unique index, and
// usage recording is a single UPDATE ... RETURNING.
package pgstore
