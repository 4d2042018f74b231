/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientIdentity(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "no headers", want: "unknown"},
		{name: "single forwarded", headers: map[string]string{"X-Forwarded-For": "1.2.3.4"}, want: "1.2.3.4"},
		{
			name:    "first forwarded entry wins",
			headers: map[string]string{"X-Forwarded-For": " 1.2.3.4 , 10.0.0.1", "X-Real-IP": "5.6.7.8"},
			want:    "1.2.3.4",
		},
		{name: "empty first forwarded entry", headers: map[string]string{"X-Forwarded-For": " ,10.0.0.1"}, want: "unknown"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": " 5.6.7.8 "}, want: "5.6.7.8"},
		{name: "blank real ip", headers: map[string]string{"X-Real-IP": "  "}, want: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/services", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			require.Equal(t, tt.want, ClientIdentity(r))
		})
	}
}
