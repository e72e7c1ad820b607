// Package requestid tags every HTTP request with an id taken from the
// X-Request-ID header or generated, and exposes it to handlers and loggers.
package requestid
