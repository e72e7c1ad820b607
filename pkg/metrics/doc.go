// Package metrics defines the Prometheus collectors of planmeter: a
// subscription.Observer for lifecycle and usage events, an HTTP middleware
// for request metrics, and the /metrics handler.
//
// Collectors are registered on an explicit prometheus.Registerer so tests can
// use a fresh registry.
package metrics
