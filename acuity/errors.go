/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package acuity

import (
	"errors"
	"fmt"
	"strings"
)

// maxErrorBodyLen limits the part of a failed response body kept in APIError.
const maxErrorBodyLen = 500

// ErrNotConfigured is matched by ConfigurationError via errors.Is.
var ErrNotConfigured = errors.New("acuity API is not configured")

// ConfigurationError is returned when the client cannot be created because credentials are absent.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: missing %s", ErrNotConfigured.Error(), strings.Join(e.Missing, ", "))
}

// Is makes errors.Is(err, ErrNotConfigured) work.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrNotConfigured
}

// APIError is returned when Acuity responds with a non-2xx status code.
// It is a diagnostic for operators and must never be sent to site visitors.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("acuity API error %d", e.StatusCode)
	}
	return fmt.Sprintf("acuity API error %d: %s", e.StatusCode, e.Body)
}

func newAPIError(statusCode int, status string, body []byte) *APIError {
	text := string(body)
	if len(text) > maxErrorBodyLen {
		text = text[:maxErrorBodyLen]
	}
	return &APIError{StatusCode: statusCode, Status: status, Body: strings.TrimSpace(text)}
}
