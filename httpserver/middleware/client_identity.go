/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package middleware

import (
	"net/http"
	"strings"
)

const (
	headerForwardedFor = "X-Forwarded-For"
	headerRealIP       = "X-Real-IP"
)

// UnknownClientIdentity is used when the request carries no proxy address headers.
// All such clients share one rate-limit bucket.
const UnknownClientIdentity = "unknown"

// ClientIdentity returns the address of the client as reported by the fronting proxy:
// the first entry of X-Forwarded-For, then X-Real-IP, then UnknownClientIdentity.
// The headers are not validated. Behind an untrusted proxy the identity is spoofable.
func ClientIdentity(r *http.Request) string {
	if xff := r.Header.Get(headerForwardedFor); xff != "" {
		first := xff
		if i := strings.IndexByte(xff, ','); i != -1 {
			first = xff[:i]
		}
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
		return UnknownClientIdentity
	}
	if realIP := strings.TrimSpace(r.Header.Get(headerRealIP)); realIP != "" {
		return realIP
	}
	return UnknownClientIdentity
}
