/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package restapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"code.cloudfoundry.org/bytefmt"
)

// RequestBodyTooLargeError is returned by the request body reader once more than MaxSizeBytes are read.
type RequestBodyTooLargeError struct {
	MaxSizeBytes uint64
	Err          error
}

func (e *RequestBodyTooLargeError) Error() string {
	return e.Err.Error()
}

func (e *RequestBodyTooLargeError) Unwrap() error {
	return e.Err
}

type limitedBody struct {
	io.ReadCloser
	maxSizeBytes uint64
}

func (b *limitedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return n, &RequestBodyTooLargeError{MaxSizeBytes: b.maxSizeBytes, Err: err}
	}
	return n, err
}

// SetRequestMaxBodySize limits the request body to maxSizeBytes.
// Reading beyond the limit fails with *RequestBodyTooLargeError.
func SetRequestMaxBodySize(rw http.ResponseWriter, r *http.Request, maxSizeBytes uint64) {
	r.Body = &limitedBody{
		ReadCloser:   http.MaxBytesReader(rw, r.Body, int64(maxSizeBytes)), //nolint:gosec // configured sizes fit int64
		maxSizeBytes: maxSizeBytes,
	}
}

// MalformedRequestError describes a request the server refuses to process.
type MalformedRequestError struct {
	HTTPStatusCode int
	Message        string
}

func (e *MalformedRequestError) Error() string {
	return e.Message
}

// NewTooLargeMalformedRequestError creates a MalformedRequestError with 413 status code.
func NewTooLargeMalformedRequestError(maxSizeBytes uint64) *MalformedRequestError {
	return &MalformedRequestError{
		HTTPStatusCode: http.StatusRequestEntityTooLarge,
		Message:        fmt.Sprintf("Request body must not be larger than %s.", bytefmt.ByteSize(maxSizeBytes)),
	}
}
