/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package acuity provides a client for the Acuity Scheduling REST API and the helpers
// that turn its calendars and appointment types into the site's stylist and service view-models.
package acuity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vahairstudio/site-api/httpclient"
	"github.com/vahairstudio/site-api/httpserver/middleware"
	"github.com/vahairstudio/site-api/log"
)

// RequestType is the value of the "type" label in outbound request metrics and logs.
const RequestType = "acuity"

// Customer data that must not reach the logs (it appears in /appointments queries).
var maskedQueryParams = []string{"email", "phone", "firstName", "lastName"}

// ClientOpts provides options for NewClientWithOpts.
type ClientOpts struct {
	// LoggerProvider is a function that provides a context-specific logger.
	// middleware.GetLoggerFromContextOrDisabled is used by default.
	LoggerProvider func(ctx context.Context) log.FieldLogger

	// Collector receives outbound request durations. Metrics are not collected when it is nil.
	Collector httpclient.MetricsCollector

	// Transport is the innermost round tripper (useful in tests).
	Transport http.RoundTripper
}

// Client calls the Acuity Scheduling API on behalf of the account configured in Config.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	loggerProvider func(ctx context.Context) log.FieldLogger
}

// NewClient creates a new Client.
// ConfigurationError (matched by ErrNotConfigured) is returned when credentials are absent.
func NewClient(cfg *Config) (*Client, error) {
	return NewClientWithOpts(cfg, ClientOpts{})
}

// NewClientWithOpts creates a new Client with the given options.
func NewClientWithOpts(cfg *Config, opts ClientOpts) (*Client, error) {
	if missing := cfg.MissingCredentials(); len(missing) != 0 {
		return nil, &ConfigurationError{Missing: missing}
	}

	loggerProvider := opts.LoggerProvider
	if loggerProvider == nil {
		loggerProvider = middleware.GetLoggerFromContextOrDisabled
	}
	masker := log.NewQueryMasker(maskedQueryParams...)
	maskedLoggerProvider := func(ctx context.Context) log.FieldLogger {
		return log.NewMaskingLogger(loggerProvider(ctx), masker)
	}

	httpCfg := cfg.HTTP
	if httpCfg == nil {
		httpCfg = httpclient.NewDefaultConfig()
		httpCfg.Timeout = DefaultTimeout
	}
	httpClient, err := httpclient.NewWithOpts(httpCfg, httpclient.Opts{
		UserAgent:      cfg.UserAgent,
		RequestType:    RequestType,
		Delegate:       opts.Transport,
		LoggerProvider: maskedLoggerProvider,
		Credentials:    httpclient.StaticCredentials{Username: cfg.UserID, Password: cfg.APIKey},
		Collector:      opts.Collector,
	})
	if err != nil {
		return nil, fmt.Errorf("create acuity http client: %w", err)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{baseURL: baseURL, httpClient: httpClient, loggerProvider: maskedLoggerProvider}, nil
}

// Calendars returns all calendars (stylists) of the account.
func (c *Client) Calendars(ctx context.Context) ([]Calendar, error) {
	var calendars []Calendar
	if err := c.get(ctx, "/calendars", nil, &calendars); err != nil {
		return nil, err
	}
	return calendars, nil
}

// AppointmentTypes returns all appointment types (services) of the account, including inactive and private ones.
func (c *Client) AppointmentTypes(ctx context.Context) ([]AppointmentType, error) {
	var types []AppointmentType
	if err := c.get(ctx, "/appointment-types", nil, &types); err != nil {
		return nil, err
	}
	return types, nil
}

// AvailableDates returns the dates of the month (YYYY-MM) that have at least one free slot.
func (c *Client) AvailableDates(ctx context.Context, calendarID, appointmentTypeID int, month string) ([]AvailabilityDate, error) {
	params := url.Values{}
	params.Set("calendarID", strconv.Itoa(calendarID))
	params.Set("appointmentTypeID", strconv.Itoa(appointmentTypeID))
	if month != "" {
		params.Set("month", month)
	}
	var dates []AvailabilityDate
	if err := c.get(ctx, "/availability/dates", params, &dates); err != nil {
		return nil, err
	}
	return dates, nil
}

// AvailableTimes returns the free slots of the date (YYYY-MM-DD).
func (c *Client) AvailableTimes(ctx context.Context, calendarID, appointmentTypeID int, date string) ([]TimeSlot, error) {
	params := url.Values{}
	params.Set("calendarID", strconv.Itoa(calendarID))
	params.Set("appointmentTypeID", strconv.Itoa(appointmentTypeID))
	if date != "" {
		params.Set("date", date)
	}
	var slots []TimeSlot
	if err := c.get(ctx, "/availability/times", params, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// AppointmentsQuery describes the filters of GET /appointments. Zero values are not sent,
// except Canceled and ExcludeForms which are always sent.
type AppointmentsQuery struct {
	Max          int
	MinDate      string
	MaxDate      string
	CalendarID   int
	Canceled     bool
	ExcludeForms bool
	Direction    string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
}

// Values encodes the query as URL parameters.
func (q AppointmentsQuery) Values() url.Values {
	params := url.Values{}
	setIfNotEmpty := func(key, value string) {
		if value != "" {
			params.Set(key, value)
		}
	}
	if q.Max > 0 {
		params.Set("max", strconv.Itoa(q.Max))
	}
	setIfNotEmpty("minDate", q.MinDate)
	setIfNotEmpty("maxDate", q.MaxDate)
	if q.CalendarID > 0 {
		params.Set("calendarID", strconv.Itoa(q.CalendarID))
	}
	params.Set("canceled", strconv.FormatBool(q.Canceled))
	params.Set("excludeForms", strconv.FormatBool(q.ExcludeForms))
	setIfNotEmpty("direction", q.Direction)
	setIfNotEmpty("firstName", q.FirstName)
	setIfNotEmpty("lastName", q.LastName)
	setIfNotEmpty("email", q.Email)
	setIfNotEmpty("phone", q.Phone)
	return params
}

// Appointments returns the appointments matching the query.
func (c *Client) Appointments(ctx context.Context, query AppointmentsQuery) ([]Appointment, error) {
	var appointments []Appointment
	if err := c.get(ctx, "/appointments", query.Values(), &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

// Appointment returns a single appointment without past form answers.
func (c *Client) Appointment(ctx context.Context, id int) (Appointment, error) {
	params := url.Values{}
	params.Set("pastFormAnswers", "false")
	var appointment Appointment
	if err := c.get(ctx, "/appointments/"+strconv.Itoa(id), params, &appointment); err != nil {
		return Appointment{}, err
	}
	return appointment, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	reqURL := c.baseURL + path
	if len(params) != 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request GET %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request GET %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen+1))
		apiErr := newAPIError(resp.StatusCode, resp.Status, body)
		c.loggerProvider(ctx).Error(fmt.Sprintf("acuity API error %d", resp.StatusCode),
			log.String("path", path), log.String("body", apiErr.Body))
		return apiErr
	}

	if err = json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response of GET %s: %w", path, err)
	}
	return nil
}
