/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package middleware

import (
	"net/http"

	"github.com/rs/xid"
)

// Request id headers. X-Request-ID is also propagated to the Acuity API by the outbound client.
const (
	HeaderRequestID         = "X-Request-ID"
	HeaderInternalRequestID = "X-Int-Request-ID"
)

// MaxRequestIDLength bounds X-Request-ID values accepted from clients.
// Longer or non-printable values are replaced with a generated id, since they end up in logs
// and in requests to the Acuity API.
const MaxRequestIDLength = 128

// RequestIDOpts represents an options for RequestID middleware.
type RequestIDOpts struct {
	GenerateID         func() string
	GenerateInternalID func() string
}

func newID() string {
	return xid.New().String()
}

// RequestID is a middleware that takes X-Request-ID from the request or generates a new one,
// and always generates an internal request id. Both ids are put into the request context
// and returned in X-Request-ID and X-Int-Request-ID response headers. Ids are generated with xid.
func RequestID() func(next http.Handler) http.Handler {
	return RequestIDWithOpts(RequestIDOpts{})
}

// RequestIDWithOpts is a more configurable version of RequestID middleware.
func RequestIDWithOpts(opts RequestIDOpts) func(next http.Handler) http.Handler {
	if opts.GenerateID == nil {
		opts.GenerateID = newID
	}
	if opts.GenerateInternalID == nil {
		opts.GenerateInternalID = newID
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(HeaderRequestID)
			if !isValidRequestID(requestID) {
				requestID = opts.GenerateID()
			}
			internalRequestID := opts.GenerateInternalID()

			rw.Header().Set(HeaderRequestID, requestID)
			rw.Header().Set(HeaderInternalRequestID, internalRequestID)
			ctx := NewContextWithInternalRequestID(NewContextWithRequestID(r.Context(), requestID), internalRequestID)
			next.ServeHTTP(rw, r.WithContext(ctx))
		})
	}
}

func isValidRequestID(id string) bool {
	if id == "" || len(id) > MaxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
