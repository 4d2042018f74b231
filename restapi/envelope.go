/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package restapi

import "time"

// CachedAtLayout is the layout of Envelope.CachedAt (RFC 3339 with milliseconds, always UTC).
const CachedAtLayout = "2006-01-02T15:04:05.000Z"

// Envelope is the response body of the public catalog routes.
// Data is always present (null when nothing can be served).
type Envelope[T any] struct {
	Data     T      `json:"data"`
	Cached   bool   `json:"cached"`
	CachedAt string `json:"cachedAt,omitempty"`
	Stale    bool   `json:"stale,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
	Error    string `json:"error,omitempty"`
}

// FormatCachedAt formats the moment an entry was stored for Envelope.CachedAt.
// A nil time gives an empty string, so the field is omitted.
func FormatCachedAt(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(CachedAtLayout)
}

// MessageResponseData is a bare {"error": "..."} body used by responses that carry no data.
type MessageResponseData struct {
	Error string `json:"error"`
}
