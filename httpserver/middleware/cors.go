/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package middleware

import "net/http"

// DefaultCORSAllowOrigin is the site origin allowed to call the public API.
const DefaultCORSAllowOrigin = "https://vahair.studio"

// CORSOpts represents an options for CORS middleware.
type CORSOpts struct {
	AllowOrigin  string
	AllowMethods string
	AllowHeaders string
}

type corsHandler struct {
	next http.Handler
	opts CORSOpts
}

// CORS is a middleware that sets the cross-origin and nosniff headers on every response
// and answers OPTIONS preflight requests with 204 without calling the next handler.
func CORS(allowOrigin string) func(next http.Handler) http.Handler {
	return CORSWithOpts(CORSOpts{AllowOrigin: allowOrigin})
}

// CORSWithOpts is a more configurable version of CORS middleware.
func CORSWithOpts(opts CORSOpts) func(next http.Handler) http.Handler {
	if opts.AllowOrigin == "" {
		opts.AllowOrigin = DefaultCORSAllowOrigin
	}
	if opts.AllowMethods == "" {
		opts.AllowMethods = "GET, OPTIONS"
	}
	if opts.AllowHeaders == "" {
		opts.AllowHeaders = "Content-Type"
	}
	return func(next http.Handler) http.Handler {
		return &corsHandler{next: next, opts: opts}
	}
}

func (h *corsHandler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	header := rw.Header()
	header.Set("Access-Control-Allow-Origin", h.opts.AllowOrigin)
	header.Set("Access-Control-Allow-Methods", h.opts.AllowMethods)
	header.Set("Access-Control-Allow-Headers", h.opts.AllowHeaders)
	header.Set("X-Content-Type-Options", "nosniff")
	if r.Method == http.MethodOptions {
		rw.WriteHeader(http.StatusNoContent)
		return
	}
	h.next.ServeHTTP(rw, r)
}
