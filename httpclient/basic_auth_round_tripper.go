/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"context"
	"fmt"
	"net/http"
)

// BasicAuthRoundTripperError is returned in RoundTrip method of BasicAuthRoundTripper
// when credentials cannot be obtained.
type BasicAuthRoundTripperError struct {
	Inner error
}

func (e *BasicAuthRoundTripperError) Error() string {
	return fmt.Sprintf("basic auth round trip: %s", e.Inner.Error())
}

// Unwrap returns the next error in the error chain.
func (e *BasicAuthRoundTripperError) Unwrap() error {
	return e.Inner
}

// CredentialsProvider provides the user name and password for HTTP basic authentication.
type CredentialsProvider interface {
	Credentials(ctx context.Context) (username, password string, err error)
}

// StaticCredentials is a CredentialsProvider that always returns the same pair.
type StaticCredentials struct {
	Username string
	Password string
}

// Credentials implements CredentialsProvider.
func (c StaticCredentials) Credentials(_ context.Context) (username, password string, err error) {
	return c.Username, c.Password, nil
}

// BasicAuthRoundTripper implements http.RoundTripper interface
// and sets "Authorization: Basic ..." HTTP header in all outgoing requests that do not carry one.
type BasicAuthRoundTripper struct {
	Delegate    http.RoundTripper
	Credentials CredentialsProvider
}

// NewBasicAuthRoundTripper creates a new BasicAuthRoundTripper.
func NewBasicAuthRoundTripper(delegate http.RoundTripper, credentials CredentialsProvider) *BasicAuthRoundTripper {
	return &BasicAuthRoundTripper{Delegate: delegate, Credentials: credentials}
}

// RoundTrip executes a single HTTP transaction, returning a Response for the provided Request.
func (rt *BasicAuthRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Authorization") != "" {
		return rt.Delegate.RoundTrip(req)
	}
	username, password, err := rt.Credentials.Credentials(req.Context())
	if err != nil {
		if req.Body != nil {
			_ = req.Body.Close() // Per RoundTripper contract.
		}
		return nil, &BasicAuthRoundTripperError{Inner: err}
	}
	req = req.Clone(req.Context()) // Per RoundTripper contract.
	req.SetBasicAuth(username, password)
	return rt.Delegate.RoundTrip(req)
}
