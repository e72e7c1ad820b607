// Package modules assembles the HTTP API modules and the domain error
// mapping they share.
package modules
