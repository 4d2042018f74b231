/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vahairstudio/site-api/acuity"
	"github.com/vahairstudio/site-api/catalog"
	"github.com/vahairstudio/site-api/httpserver/middleware"
	"github.com/vahairstudio/site-api/internal/ratelimit"
	"github.com/vahairstudio/site-api/log"
	"github.com/vahairstudio/site-api/restapi"
	"github.com/vahairstudio/site-api/ttlcache"
)

// Rate-limit buckets of the public API routes.
const (
	BucketServices     = "api:services"
	BucketStylists     = "api:stylists"
	BucketAvailability = "api:availability"
)

// Messages of the envelope error field.
const (
	ErrMessageNotConfigured = "API not configured"
	ErrMessageUnavailable   = "Service temporarily unavailable"
)

// Retry-After values (in seconds) of 503 responses.
const (
	retryAfterNotConfigured = 300
	retryAfterUnavailable   = 60
)

// Query parameters of /api/availability.
const (
	paramCalendarID        = "calendarId"
	paramAppointmentTypeID = "appointmentTypeId"
	paramDate              = "date"
)

// APIOpts represents options for NewAPIRoute.
type APIOpts struct {
	ErrorDomain string

	// AllowOrigin is sent in Access-Control-Allow-Origin. middleware.DefaultCORSAllowOrigin is used by default.
	AllowOrigin string

	// Limiter is shared by all routes, each route counts in its own bucket.
	// Requests are not limited when it is nil.
	Limiter ratelimit.Limiter
	Rate    ratelimit.Rate

	RateLimit middleware.RateLimitOpts
}

type apiHandler struct {
	catalog   *catalog.Catalog
	errDomain string
}

// NewAPIRoute returns the routes of the public catalog API: /services, /stylists and /availability.
// Every route answers OPTIONS preflights and is rate-limited per client.
func NewAPIRoute(c *catalog.Catalog, opts APIOpts) APIRoute {
	h := &apiHandler{catalog: c, errDomain: opts.ErrorDomain}
	cors := middleware.CORS(opts.AllowOrigin)
	preflight := func(http.ResponseWriter, *http.Request) {}

	return func(router chi.Router) {
		handle := func(pattern, bucketKey string, handlerFn http.HandlerFunc) {
			mws := chi.Middlewares{cors}
			if opts.Limiter != nil {
				mws = append(mws, middleware.RateLimitWithOpts(opts.Limiter, bucketKey, opts.Rate, opts.RateLimit))
			}
			router.With(mws...).Get(pattern, handlerFn)
			router.With(cors).Options(pattern, preflight)
		}
		handle("/services", BucketServices, h.getServices)
		handle("/stylists", BucketStylists, h.getStylists)
		handle("/availability", BucketAvailability, h.getAvailability)
	}
}

func (h *apiHandler) getServices(rw http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContextOrDisabled(r.Context())
	res, err := h.catalog.Services(r.Context())
	if err != nil {
		respondUnavailable(rw, r, err, h.catalog.FallbackServices(), true, logger)
		return
	}
	respondCached(rw, r, res, logger)
}

func (h *apiHandler) getStylists(rw http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContextOrDisabled(r.Context())
	res, err := h.catalog.Stylists(r.Context())
	if err != nil {
		respondUnavailable(rw, r, err, h.catalog.FallbackStylists(), true, logger)
		return
	}
	respondCached(rw, r, res, logger)
}

func (h *apiHandler) getAvailability(rw http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContextOrDisabled(r.Context())
	query := r.URL.Query()

	calendarID, ok := h.positiveIntParam(rw, query.Get(paramCalendarID), paramCalendarID, logger)
	if !ok {
		return
	}
	appointmentTypeID, ok := h.positiveIntParam(rw, query.Get(paramAppointmentTypeID), paramAppointmentTypeID, logger)
	if !ok {
		return
	}
	date := query.Get(paramDate)
	if date != "" {
		if _, err := time.Parse(acuity.DateLayout, date); err != nil {
			restapi.RespondError(rw, http.StatusBadRequest,
				restapi.NewInvalidParameterError(h.errDomain, paramDate, "date must be in YYYY-MM-DD format"), logger)
			return
		}
	}

	res, err := h.catalog.Availability(r.Context(), calendarID, appointmentTypeID, date)
	if err != nil {
		respondUnavailable[*acuity.Availability](rw, r, err, nil, false, logger)
		return
	}
	value := res.Value
	respondCached(rw, r, ttlcache.Result[*acuity.Availability]{
		Value:           &value,
		ServedFromCache: res.ServedFromCache,
		CachedAt:        res.CachedAt,
		Stale:           res.Stale,
	}, logger)
}

func (h *apiHandler) positiveIntParam(
	rw http.ResponseWriter, raw, name string, logger log.FieldLogger,
) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		restapi.RespondError(rw, http.StatusBadRequest,
			restapi.NewInvalidParameterError(h.errDomain, name, name+" must be a positive integer"), logger)
		return 0, false
	}
	return n, true
}

func respondCached[T any](rw http.ResponseWriter, r *http.Request, res ttlcache.Result[T], logger log.FieldLogger) {
	logCacheStatus(r, cacheStatus(res.ServedFromCache, res.Stale))
	restapi.RespondJSON(rw, restapi.Envelope[T]{
		Data:     res.Value,
		Cached:   res.ServedFromCache,
		CachedAt: restapi.FormatCachedAt(res.CachedAt),
		Stale:    res.Stale,
	}, logger)
}

// respondUnavailable answers 503 with the given data. The cause is logged, never sent to the client.
func respondUnavailable[T any](
	rw http.ResponseWriter, r *http.Request, err error, data T, fallback bool, logger log.FieldLogger,
) {
	if fallback {
		logCacheStatus(r, cacheStatusFallback)
	}
	envelope := restapi.Envelope[T]{Data: data, Fallback: fallback}
	retryAfter := retryAfterUnavailable
	if errors.Is(err, acuity.ErrNotConfigured) {
		logger.Warn("acuity API is not configured, serving fallback", log.Error(err))
		envelope.Error = ErrMessageNotConfigured
		retryAfter = retryAfterNotConfigured
	} else {
		logger.Error("acuity API request failed", log.Error(err))
		envelope.Error = ErrMessageUnavailable
	}
	restapi.RespondRetryLater(rw, http.StatusServiceUnavailable, retryAfter, envelope, logger)
}

// Values of the "cache" field of the request log.
const (
	cacheStatusMiss     = "miss"
	cacheStatusHit      = "hit"
	cacheStatusStale    = "stale"
	cacheStatusFallback = "fallback"
)

func cacheStatus(servedFromCache, stale bool) string {
	switch {
	case stale:
		return cacheStatusStale
	case servedFromCache:
		return cacheStatusHit
	default:
		return cacheStatusMiss
	}
}

func logCacheStatus(r *http.Request, status string) {
	if lp := middleware.GetLoggingParamsFromContext(r.Context()); lp != nil {
		lp.ExtendFields(log.String("cache", status))
	}
}
