/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vahairstudio/site-api/acuity"
)

func testEnv(values map[string]string) func(string) string {
	return func(name string) string { return values[name] }
}

var credentials = map[string]string{acuity.EnvUserID: "user-1", acuity.EnvAPIKey: "secret"}

func newFakeAcuity(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/appointments" {
			rw.WriteHeader(http.StatusNotFound)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		rw.WriteHeader(status)
		_, _ = rw.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runAudit(t *testing.T, env map[string]string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	code = run(context.Background(), args, &outBuf, &errBuf, testEnv(env))
	return code, outBuf.String(), errBuf.String()
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name       string
		env        map[string]string
		args       []string
		wantStderr string
	}{
		{"missing user id", map[string]string{acuity.EnvAPIKey: "secret"}, nil, "Missing env var: ACUITY_USER_ID"},
		{"missing api key", map[string]string{acuity.EnvUserID: "user-1"}, nil, "Missing env var: ACUITY_API_KEY"},
		{"unknown flag", credentials, []string{"--bogus"}, "unknown flag: --bogus"},
		{"bad calendar", credentials, []string{"--calendar", "abc"}, "--calendar"},
		{"bad max", credentials, []string{"--max", "0"}, "invalid --max"},
		{"bad direction", credentials, []string{"--direction", "up"}, "invalid --direction"},
		{"bad date", credentials, []string{"--from", "03/01/2025"}, "invalid --from"},
		{"positional argument", credentials, []string{"extra"}, "unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runAudit(t, tt.env, tt.args...)
			require.Equal(t, exitUsage, code, stderr)
			require.Empty(t, stdout)
			require.Contains(t, stderr, tt.wantStderr)
		})
	}
}

func TestRun_APIError(t *testing.T) {
	srv := newFakeAcuity(t, http.StatusUnauthorized, `{"message":"bad credentials"}`)
	code, stdout, stderr := runAudit(t, credentials,
		"--base-url", srv.URL, "--from", "2025-03-01", "--to", "2025-03-31", "--timeout", "10s")
	require.Equal(t, exitFailure, code)
	require.Empty(t, stdout)
	require.Contains(t, stderr, "401")
}

const appointmentsBody = `[
	{"id": 2, "calendarID": 7, "calendar": "Sam", "datetime": "2025-03-02T10:00:00-0500", "type": "Cut",
	 "firstName": "Ann", "lastName": "Lee", "email": "", "phone": ""},
	{"id": 1, "calendarID": 7, "calendar": "Sam", "datetime": "2025-03-01T10:00:00-0500", "type": "Color",
	 "firstName": "Bo", "lastName": "Kim", "email": "bo@example.com", "phone": "555"}
]`

func TestRun_TSV(t *testing.T) {
	srv := newFakeAcuity(t, http.StatusOK, appointmentsBody)
	code, stdout, stderr := runAudit(t, credentials,
		"--base-url", srv.URL, "--from", "2025-03-01", "--to", "2025-03-31")
	require.Equal(t, exitOK, code, stderr)
	require.True(t, strings.HasPrefix(stdout, "Appointments: 2\nMissing email+phone: 1\nBy calendarID: 7:2\n"), stdout)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 6) // summary, header and two rows
	require.True(t, strings.HasPrefix(lines[3], "datetime\t"))
	require.True(t, strings.HasPrefix(lines[4], "2025-03-01T10:00:00-0500\t"), "rows are sorted by datetime")
	require.True(t, strings.HasSuffix(lines[5], "\t2"))
}

func TestRun_CSV(t *testing.T) {
	srv := newFakeAcuity(t, http.StatusOK, appointmentsBody)
	csvPath := filepath.Join(t.TempDir(), "audit.csv")
	code, stdout, stderr := runAudit(t, credentials,
		"--base-url", srv.URL, "--from", "2025-03-01", "--to", "2025-03-31", "--csv", csvPath)
	require.Equal(t, exitOK, code, stderr)
	require.Contains(t, stdout, "Wrote CSV: "+csvPath+"\n")

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 3)
}
