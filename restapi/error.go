/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package restapi

import (
	"net/http"
	"strconv"
)

// Error is the body of error responses of the site API.
type Error struct {
	Domain  string                 `json:"domain"`
	Code    string                 `json:"code"`
	Message string                 `json:"message,omitempty"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error codes.
const (
	ErrCodeInternal         = "internalError"
	ErrCodeNotFound         = "notFound"
	ErrCodeMethodNotAllowed = "methodNotAllowed"
	ErrCodeInvalidParameter = "invalidParameter"
)

// Error messages.
const (
	ErrMessageInternal         = "Internal error."
	ErrMessageNotFound         = "Not found."
	ErrMessageMethodNotAllowed = "Method not allowed."
)

var statusErrorCodes = map[int]string{
	http.StatusBadRequest:            "badRequest",
	http.StatusNotFound:              ErrCodeNotFound,
	http.StatusMethodNotAllowed:      ErrCodeMethodNotAllowed,
	http.StatusRequestEntityTooLarge: "requestEntityTooLarge",
	http.StatusTooManyRequests:       "tooManyRequests",
	http.StatusInternalServerError:   ErrCodeInternal,
	http.StatusServiceUnavailable:    "serviceUnavailable",
}

// NewError creates a new Error with specified params.
func NewError(domain, code, message string) *Error {
	return &Error{Domain: domain, Code: code, Message: message}
}

// NewInternalError creates a new internal error with specified domain.
func NewInternalError(domain string) *Error {
	return NewError(domain, ErrCodeInternal, ErrMessageInternal)
}

// NewInvalidParameterError creates an error for a missing or malformed query parameter.
// The parameter name is put into the error context.
func NewInvalidParameterError(domain, param, message string) *Error {
	return NewError(domain, ErrCodeInvalidParameter, message).AddContext("parameter", param)
}

// AddContext adds value to error context.
func (e *Error) AddContext(field string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[field] = value
	return e
}

func errorCodeForStatus(httpStatusCode int) string {
	if code, ok := statusErrorCodes[httpStatusCode]; ok {
		return code
	}
	return "httpError" + strconv.Itoa(httpStatusCode)
}
