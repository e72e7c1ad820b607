// Package clientip resolves the caller's address behind reverse proxies.
//
// Forwarding headers are trusted in the order CF-Connecting-IP,
// X-Forwarded-For (first valid entry), X-Real-IP, then RemoteAddr. Only deploy
// behind a proxy that overwrites these headers.
package clientip
