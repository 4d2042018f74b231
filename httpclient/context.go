/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import "context"

type ctxKey int

const (
	ctxKeyRequestType ctxKey = iota
	ctxKeyIdempotentHint
)

// NewContextWithRequestType creates a new context with request type.
// The request type set in the context overrides the one the client was built with
// and is used as a metrics label and in logs (e.g. "calendars", "availability_times").
func NewContextWithRequestType(ctx context.Context, requestType string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestType, requestType)
}

// GetRequestTypeFromContext extracts request type from the context.
func GetRequestTypeFromContext(ctx context.Context) string {
	value, _ := ctx.Value(ctxKeyRequestType).(string)
	return value
}

// NewContextWithIdempotentHint returns a derived context that marks the request as idempotent,
// so DefaultCheckRetry may retry it even if its method is not GET/HEAD/OPTIONS.
func NewContextWithIdempotentHint(ctx context.Context, isIdempotent bool) context.Context {
	return context.WithValue(ctx, ctxKeyIdempotentHint, isIdempotent)
}

// GetIdempotentHintFromContext extracts the "idempotent request" hint from context.
func GetIdempotentHintFromContext(ctx context.Context) bool {
	value, _ := ctx.Value(ctxKeyIdempotentHint).(bool)
	return value
}

func requestTypeOrDefault(ctx context.Context, fallback string) string {
	if reqType := GetRequestTypeFromContext(ctx); reqType != "" {
		return reqType
	}
	return fallback
}
