/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package middleware

import (
	"net/http"

	"github.com/vahairstudio/site-api/restapi"
)

// RequestBodyLimit rejects requests whose body is larger than maxSizeBytes.
// The public API is read-only, so a body announced by Content-Length is refused with 413 before
// the handler runs. Chunked bodies are wrapped and fail with restapi.RequestBodyTooLargeError on read.
func RequestBodyLimit(maxSizeBytes uint64, errDomain string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			if r.ContentLength > 0 && uint64(r.ContentLength) > maxSizeBytes {
				restapi.RespondMalformedRequestError(rw, errDomain, restapi.NewTooLargeMalformedRequestError(maxSizeBytes),
					GetLoggerFromContextOrDisabled(r.Context()))
				return
			}
			restapi.SetRequestMaxBodySize(rw, r, maxSizeBytes)
			next.ServeHTTP(rw, r)
		})
	}
}
