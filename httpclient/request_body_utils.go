/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/vahairstudio/site-api/log"
)

// makeRequestBodyRewindable returns a function that restores the request body before a retry.
// Acuity requests are GETs without a body, so the common case is a no-op. Requests built with
// http.NewRequest get their body back via GetBody, any other body is buffered in memory once.
func makeRequestBodyRewindable(req *http.Request) (func(*http.Request) error, error) {
	switch {
	case req.Body == nil || req.Body == http.NoBody:
		return func(*http.Request) error { return nil }, nil
	case req.GetBody != nil:
		return func(r *http.Request) error {
			body, err := r.GetBody()
			if err != nil {
				return fmt.Errorf("get request body for retry: %w", err)
			}
			r.Body = body
			return nil
		}, nil
	}

	buffered, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("buffer request body: %w", err)
	}
	req.Body = io.NopCloser(bytes.NewReader(buffered))
	return func(r *http.Request) error {
		r.Body = io.NopCloser(bytes.NewReader(buffered))
		return nil
	}, nil
}

// maxDrainedBodySize bounds how much of an error response is read to keep the connection reusable.
const maxDrainedBodySize = 64 << 10

// drainResponseBody discards the response body so the connection can be reused.
func drainResponseBody(resp *http.Response, logger log.FieldLogger) {
	_, copyErr := io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainedBodySize))
	if err := errors.Join(copyErr, resp.Body.Close()); err != nil {
		logger.Warn("failed to drain response body before retry", log.Error(err))
	}
}
