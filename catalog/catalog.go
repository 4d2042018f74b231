/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package catalog serves the salon's services, stylists and availability from Acuity
// through per-resource TTL caches, and provides the static data used when Acuity cannot be reached.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/vahairstudio/site-api/acuity"
	"github.com/vahairstudio/site-api/log"
	"github.com/vahairstudio/site-api/ttlcache"
)

// Source is the part of the Acuity client the catalog reads from.
type Source interface {
	acuity.AvailabilityFetcher
	Calendars(ctx context.Context) ([]acuity.Calendar, error)
	AppointmentTypes(ctx context.Context) ([]acuity.AppointmentType, error)
}

var _ Source = (*acuity.Client)(nil)

// Opts represents options for New.
type Opts struct {
	// Clock returns the current time. time.Now is used by default.
	Clock func() time.Time

	// CacheOpts is applied to the services, stylists and availability caches.
	// Its Clock is replaced by Opts.Clock. A *ttlcache.PrometheusMetrics collector
	// must be created by NewCacheMetrics: it is curried with the "cache" label per resource.
	CacheOpts ttlcache.Options

	// FallbackStylists are served when the stylists cannot be fetched.
	FallbackStylists []acuity.Stylist

	// NotConfiguredErr is returned instead of fetching when source is nil.
	// It should match acuity.ErrNotConfigured. A bare acuity.ErrNotConfigured is used by default.
	NotConfiguredErr error

	// Logger receives stale fallback warnings of the caches.
	Logger log.FieldLogger
}

// Catalog reads catalog resources through caches. Each Catalog owns its caches,
// so tests and servers never share state through package-level variables.
type Catalog struct {
	source           Source
	notConfiguredErr error
	clock            func() time.Time

	services     *ttlcache.Cache[[]acuity.ServiceCategory]
	stylists     *ttlcache.Cache[[]acuity.Stylist]
	availability *ttlcache.Cache[acuity.Availability]

	fallbackStylists []acuity.Stylist
}

// New creates a new Catalog. A nil source means Acuity is not configured:
// every read returns Opts.NotConfiguredErr and the handlers serve fallback data.
func New(source Source, opts Opts) *Catalog {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	cacheOpts := opts.CacheOpts
	cacheOpts.Clock = opts.Clock
	if cacheOpts.Logger == nil {
		cacheOpts.Logger = opts.Logger
	}
	if opts.NotConfiguredErr == nil {
		opts.NotConfiguredErr = acuity.ErrNotConfigured
	}
	return &Catalog{
		source:           source,
		notConfiguredErr: opts.NotConfiguredErr,
		clock:            opts.Clock,
		services:         ttlcache.NewWithOpts[[]acuity.ServiceCategory](withCacheName(cacheOpts, "services")),
		stylists:         ttlcache.NewWithOpts[[]acuity.Stylist](withCacheName(cacheOpts, "stylists")),
		availability:     ttlcache.NewWithOpts[acuity.Availability](withCacheName(cacheOpts, "availability")),
		fallbackStylists: opts.FallbackStylists,
	}
}

// Configured reports whether the catalog has a source to fetch from.
func (c *Catalog) Configured() bool {
	return c.source != nil
}

// Services returns the active, public services grouped by category.
func (c *Catalog) Services(ctx context.Context) (ttlcache.Result[[]acuity.ServiceCategory], error) {
	if !c.Configured() {
		return ttlcache.Result[[]acuity.ServiceCategory]{}, c.notConfiguredErr
	}
	return c.services.GetOrFetch(ctx, acuity.ServicesKey(), func(ctx context.Context) ([]acuity.ServiceCategory, error) {
		types, err := c.source.AppointmentTypes(ctx)
		if err != nil {
			return nil, fmt.Errorf("get appointment types: %w", err)
		}
		return acuity.BuildServiceCatalog(types), nil
	}, acuity.ServicesTTL)
}

// Stylists returns all stylists.
func (c *Catalog) Stylists(ctx context.Context) (ttlcache.Result[[]acuity.Stylist], error) {
	if !c.Configured() {
		return ttlcache.Result[[]acuity.Stylist]{}, c.notConfiguredErr
	}
	return c.stylists.GetOrFetch(ctx, acuity.StylistsKey(), func(ctx context.Context) ([]acuity.Stylist, error) {
		calendars, err := c.source.Calendars(ctx)
		if err != nil {
			return nil, fmt.Errorf("get calendars: %w", err)
		}
		return acuity.TransformCalendars(calendars), nil
	}, acuity.StylistsTTL)
}

// Availability returns the free slots of the date, or the next bookable slot when date is empty.
func (c *Catalog) Availability(
	ctx context.Context, calendarID, appointmentTypeID int, date string,
) (ttlcache.Result[acuity.Availability], error) {
	if !c.Configured() {
		return ttlcache.Result[acuity.Availability]{}, c.notConfiguredErr
	}
	key := AvailabilityCacheKey(calendarID, appointmentTypeID, date)
	if date == "" {
		return c.availability.GetOrFetch(ctx, key, func(ctx context.Context) (acuity.Availability, error) {
			return acuity.FindNextSlot(ctx, c.source, calendarID, appointmentTypeID, c.clock())
		}, acuity.NextSlotTTL)
	}
	return c.availability.GetOrFetch(ctx, key, func(ctx context.Context) (acuity.Availability, error) {
		return acuity.DayAvailability(ctx, c.source, calendarID, appointmentTypeID, date)
	}, acuity.AvailabilityTTL)
}

// AvailabilityCacheKey extends acuity.AvailabilityKey with the appointment type,
// since free slots of one stylist differ between services of different duration.
func AvailabilityCacheKey(calendarID, appointmentTypeID int, date string) string {
	return acuity.AvailabilityKey(calendarID, date) + ":" + strconv.Itoa(appointmentTypeID)
}

// FallbackServices returns the static service menu.
func (c *Catalog) FallbackServices() []acuity.ServiceCategory {
	return acuity.FallbackServices()
}

// FallbackStylists returns the configured stylists. The result is never nil.
func (c *Catalog) FallbackStylists() []acuity.Stylist {
	res := make([]acuity.Stylist, len(c.fallbackStylists))
	copy(res, c.fallbackStylists)
	return res
}

// ErrStaleRefresh is reported by WarmUp when a refresh failed and the stale entry is still served.
var ErrStaleRefresh = errors.New("refresh failed, stale entry kept")

// WarmUp fetches services and stylists whose cache entries are missing or expired.
// Both resources are attempted even if the first one fails. A refresh that ended with the stale
// entry counts as a failure, so the warm-up worker keeps retrying it.
func (c *Catalog) WarmUp(ctx context.Context) error {
	if !c.Configured() {
		return nil
	}
	servicesRes, servicesErr := c.Services(ctx)
	stylistsRes, stylistsErr := c.Stylists(ctx)
	return errors.Join(
		warmUpErr("services", servicesRes.Stale, servicesErr),
		warmUpErr("stylists", stylistsRes.Stale, stylistsErr),
	)
}

func warmUpErr(resource string, stale bool, err error) error {
	if err == nil && stale {
		return fmt.Errorf("%s: %w", resource, ErrStaleRefresh)
	}
	return err
}

// Reset drops all cached entries.
func (c *Catalog) Reset() {
	c.services.Clear()
	c.stylists.Clear()
	c.availability.Clear()
}

// NewCacheMetrics creates cache metrics partitioned by the "cache" label (services, stylists, availability).
func NewCacheMetrics(namespace string) *ttlcache.PrometheusMetrics {
	return ttlcache.NewPrometheusMetricsWithOpts(ttlcache.PrometheusMetricsOpts{
		Namespace:         namespace,
		CurriedLabelNames: []string{"cache"},
	})
}

func withCacheName(opts ttlcache.Options, name string) ttlcache.Options {
	if opts.Logger != nil {
		opts.Logger = opts.Logger.With(log.String("cache", name))
	}
	if pm, ok := opts.MetricsCollector.(*ttlcache.PrometheusMetrics); ok {
		opts.MetricsCollector = pm.MustCurryWith(map[string]string{"cache": name})
	}
	return opts
}
