/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package acuity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vahairstudio/site-api/httpserver/middleware"
	"github.com/vahairstudio/site-api/log/logtest"
)

type recordedRequest struct {
	path   string
	query  url.Values
	header http.Header
}

type acuityTestServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []recordedRequest
}

func newAcuityTestServer(t *testing.T, handler http.HandlerFunc) *acuityTestServer {
	t.Helper()
	s := &acuityTestServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, recordedRequest{path: r.URL.Path, query: r.URL.Query(), header: r.Header.Clone()})
		s.mu.Unlock()
		handler(rw, r)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *acuityTestServer) lastRequest() recordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

func (s *acuityTestServer) requestsCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func respondJSON(body string) http.HandlerFunc {
	return func(rw http.ResponseWriter, _ *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		_, _ = rw.Write([]byte(body))
	}
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := NewDefaultConfig("user-1", "secret")
	cfg.BaseURL = baseURL
	cfg.HTTP.Retries.Enabled = false
	cfg.HTTP.RateLimits.Enabled = false
	client, err := NewClient(cfg)
	require.NoError(t, err)
	return client
}

func TestNewClient_NotConfigured(t *testing.T) {
	client, err := NewClient(NewDefaultConfig("", ""))
	require.Nil(t, client)
	require.ErrorIs(t, err, ErrNotConfigured)
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	require.Equal(t, []string{EnvUserID, EnvAPIKey}, cfgErr.Missing)

	_, err = NewClient(NewDefaultConfig("user", ""))
	require.EqualError(t, err, "acuity API is not configured: missing ACUITY_API_KEY")
}

func TestClient_Calendars(t *testing.T) {
	server := newAcuityTestServer(t, respondJSON(`[
		{"id": 1, "name": "Alyssa", "description": "Owner", "image": "//cdn.example.com/a.jpg"},
		{"id": 2, "name": "Kim", "image": false}
	]`))
	client := newTestClient(t, server.URL)

	calendars, err := client.Calendars(context.Background())
	require.NoError(t, err)
	require.Equal(t, []Calendar{
		{ID: 1, Name: "Alyssa", Description: "Owner", Image: "//cdn.example.com/a.jpg"},
		{ID: 2, Name: "Kim"},
	}, calendars)

	req := server.lastRequest()
	require.Equal(t, "/calendars", req.path)
	require.Equal(t, "application/json", req.header.Get("Accept"))
	require.Equal(t, DefaultUserAgent, req.header.Get("User-Agent"))
	user, pass, ok := (&http.Request{Header: req.header}).BasicAuth()
	require.True(t, ok)
	require.Equal(t, "user-1", user)
	require.Equal(t, "secret", pass)
}

func TestClient_AppointmentTypes(t *testing.T) {
	server := newAcuityTestServer(t, respondJSON(`[
		{"id": 10, "name": "Women's  Haircut", "active": true, "private": false, "duration": 45,
		 "price": "50.00", "category": "Haircuts", "calendarIDs": [1, 2]},
		{"id": 11, "name": "Consult", "active": false, "price": "", "category": ""}
	]`))
	client := newTestClient(t, server.URL)

	types, err := client.AppointmentTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 2)
	require.Equal(t, "/appointment-types", server.lastRequest().path)
	require.Equal(t, LooseString("50.00"), types[0].Price)
	require.Equal(t, []int{1, 2}, types[0].CalendarIDs)
	require.False(t, types[1].Active)
	require.Nil(t, types[1].CalendarIDs)
}

func TestClient_Availability(t *testing.T) {
	server := newAcuityTestServer(t, func(rw http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/availability/dates":
			respondJSON(`[{"date": "2025-03-14"}, {"date": "2025-03-15"}]`)(rw, r)
		case "/availability/times":
			respondJSON(`[{"time": "2025-03-14T14:00:00-0400", "slotsAvailable": 1}]`)(rw, r)
		default:
			rw.WriteHeader(http.StatusNotFound)
		}
	})
	client := newTestClient(t, server.URL)

	dates, err := client.AvailableDates(context.Background(), 7, 42, "2025-03")
	require.NoError(t, err)
	require.Equal(t, []AvailabilityDate{{Date: "2025-03-14"}, {Date: "2025-03-15"}}, dates)
	require.Equal(t, url.Values{"calendarID": {"7"}, "appointmentTypeID": {"42"}, "month": {"2025-03"}},
		server.lastRequest().query)

	slots, err := client.AvailableTimes(context.Background(), 7, 42, "2025-03-14")
	require.NoError(t, err)
	require.Equal(t, []TimeSlot{{Time: "2025-03-14T14:00:00-0400", SlotsAvailable: 1}}, slots)
	require.Equal(t, url.Values{"calendarID": {"7"}, "appointmentTypeID": {"42"}, "date": {"2025-03-14"}},
		server.lastRequest().query)
}

func TestClient_Appointments(t *testing.T) {
	server := newAcuityTestServer(t, respondJSON(`[
		{"id": 101, "firstName": "Jane", "lastName": "Doe", "email": "jane@example.com", "phone": "",
		 "datetime": "2025-03-14T14:00:00-0400", "calendarID": "7", "appointmentTypeID": 42, "canceled": false}
	]`))
	client := newTestClient(t, server.URL)
	logger := logtest.NewRecorder()
	ctx := middleware.NewContextWithLogger(context.Background(), logger)

	appointments, err := client.Appointments(ctx, AppointmentsQuery{
		Max:          50,
		MinDate:      "2025-03-01",
		MaxDate:      "2025-03-31",
		CalendarID:   7,
		ExcludeForms: true,
		Direction:    "ASC",
		Email:        "jane@example.com",
	})
	require.NoError(t, err)
	require.Len(t, appointments, 1)
	require.Equal(t, LooseInt(101), appointments[0].ID)
	require.Equal(t, LooseInt(7), appointments[0].CalendarID)
	require.Equal(t, LooseInt(42), appointments[0].AppointmentTypeID)

	require.Equal(t, url.Values{
		"max":          {"50"},
		"minDate":      {"2025-03-01"},
		"maxDate":      {"2025-03-31"},
		"calendarID":   {"7"},
		"canceled":     {"false"},
		"excludeForms": {"true"},
		"direction":    {"ASC"},
		"email":        {"jane@example.com"},
	}, server.lastRequest().query)

	entry, found := logger.FindEntry("client http request GET /appointments responded 200")
	require.True(t, found)
	loggedURL, ok := entry.FieldString("url")
	require.True(t, ok)
	require.Contains(t, loggedURL, "email=***")
	require.NotContains(t, loggedURL, "jane")
}

func TestClient_Appointment(t *testing.T) {
	server := newAcuityTestServer(t, respondJSON(`{"id": 101, "scheduledBy": "admin@example.com"}`))
	client := newTestClient(t, server.URL)

	appointment, err := client.Appointment(context.Background(), 101)
	require.NoError(t, err)
	require.Equal(t, LooseString("admin@example.com"), appointment.ScheduledBy)
	req := server.lastRequest()
	require.Equal(t, "/appointments/101", req.path)
	require.Equal(t, url.Values{"pastFormAnswers": {"false"}}, req.query)
}

func TestClient_APIError(t *testing.T) {
	longBody := strings.Repeat("x", 800)
	server := newAcuityTestServer(t, func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusUnauthorized)
		_, _ = rw.Write([]byte(longBody))
	})
	client := newTestClient(t, server.URL)
	logger := logtest.NewRecorder()
	ctx := middleware.NewContextWithLogger(context.Background(), logger)

	_, err := client.Calendars(ctx)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "401 Unauthorized", apiErr.Status)
	require.Len(t, apiErr.Body, maxErrorBodyLen)
	require.Equal(t, 1, server.requestsCount())

	entry, found := logger.FindEntry("acuity API error 401")
	require.True(t, found)
	path, _ := entry.FieldString("path")
	require.Equal(t, "/calendars", path)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	server := newAcuityTestServer(t, func(rw http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			rw.WriteHeader(http.StatusBadGateway)
			return
		}
		respondJSON(`[]`)(rw, r)
	})
	cfg := NewDefaultConfig("user-1", "secret")
	cfg.BaseURL = server.URL
	cfg.HTTP.Retries.Policy.ExponentialBackoffInitialInterval = 1
	client, err := NewClient(cfg)
	require.NoError(t, err)

	calendars, err := client.Calendars(context.Background())
	require.NoError(t, err)
	require.Empty(t, calendars)
	require.Equal(t, 2, server.requestsCount())
}

func TestClient_InvalidJSON(t *testing.T) {
	server := newAcuityTestServer(t, respondJSON(`{"not": "a list"}`))
	client := newTestClient(t, server.URL)

	_, err := client.Calendars(context.Background())
	require.ErrorContains(t, err, "decode response of GET /calendars")
}
