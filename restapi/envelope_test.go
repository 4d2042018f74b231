/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package restapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vahairstudio/site-api/testutil"
)

func TestFormatCachedAt(t *testing.T) {
	require.Equal(t, "", FormatCachedAt(nil))

	est := time.FixedZone("EST", -5*3600)
	at := time.Date(2026, 2, 8, 10, 0, 0, 123456789, est)
	require.Equal(t, "2026-02-08T15:00:00.123Z", FormatCachedAt(&at))
}

func TestEnvelopeJSON(t *testing.T) {
	t.Run("fresh fetch omits cachedAt and stale", func(t *testing.T) {
		resp := httptest.NewRecorder()
		RespondJSON(resp, Envelope[[]int]{Data: []int{1, 2}}, nil)
		testutil.RequireStringJSONInRecorder(t, resp, `{"data":[1,2],"cached":false}`)
	})

	t.Run("stale cache entry", func(t *testing.T) {
		resp := httptest.NewRecorder()
		RespondJSON(resp, Envelope[[]int]{
			Data: []int{1}, Cached: true, CachedAt: "2026-02-08T15:00:00.000Z", Stale: true,
		}, nil)
		testutil.RequireStringJSONInRecorder(t, resp,
			`{"data":[1],"cached":true,"cachedAt":"2026-02-08T15:00:00.000Z","stale":true}`)
	})

	t.Run("no data", func(t *testing.T) {
		resp := httptest.NewRecorder()
		RespondCodeAndJSON(resp, http.StatusServiceUnavailable, Envelope[*int]{
			Error: "Service temporarily unavailable",
		}, nil)
		testutil.RequireStringJSONInRecorder(t, resp,
			`{"data":null,"cached":false,"error":"Service temporarily unavailable"}`)
	})

	t.Run("message only", func(t *testing.T) {
		resp := httptest.NewRecorder()
		RespondCodeAndJSON(resp, http.StatusTooManyRequests, MessageResponseData{Error: "Too many requests"}, nil)
		testutil.RequireStringJSONInRecorder(t, resp, `{"error":"Too many requests"}`)
	})
}
