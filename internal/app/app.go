/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package app assembles the site API server from its configuration.
package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/vahairstudio/site-api/acuity"
	"github.com/vahairstudio/site-api/catalog"
	"github.com/vahairstudio/site-api/httpclient"
	"github.com/vahairstudio/site-api/httpserver"
	"github.com/vahairstudio/site-api/httpserver/middleware"
	"github.com/vahairstudio/site-api/internal/ratelimit"
	"github.com/vahairstudio/site-api/internal/version"
	"github.com/vahairstudio/site-api/log"
	"github.com/vahairstudio/site-api/profserver"
	"github.com/vahairstudio/site-api/restapi"
	"github.com/vahairstudio/site-api/service"
)

// MetricsNamespace prefixes all Prometheus metrics of the server.
const MetricsNamespace = "site_api"

// ErrorDomain is the domain of restapi errors returned by the server.
const ErrorDomain = "SiteAPI"

// App is the assembled site API server.
type App struct {
	HTTPServer *httpserver.HTTPServer
	Catalog    *catalog.Catalog
	Limiter    *ratelimit.FixedWindowLimiter
	Unit       service.Unit
	Service    *service.Service
}

// New builds the server. A missing Acuity credential is not an error:
// the server starts and serves fallback data, and the missing variables are logged.
func New(cfg *Config, logger log.FieldLogger) (*App, error) {
	collectors := &metricsCollectors{}

	acuityMetrics := httpclient.NewPrometheusMetricsCollector(MetricsNamespace)
	collectors.add(acuityMetrics)

	var source catalog.Source
	var notConfiguredErr error
	client, err := acuity.NewClientWithOpts(cfg.Acuity, acuity.ClientOpts{Collector: acuityMetrics})
	switch {
	case errors.Is(err, acuity.ErrNotConfigured):
		notConfiguredErr = err
		logger.Warn("acuity API is not configured, fallback data will be served",
			log.Strings("missing_env_vars", cfg.Acuity.MissingCredentials()))
	case err != nil:
		return nil, fmt.Errorf("create acuity client: %w", err)
	default:
		source = client
	}

	cacheMetrics := catalog.NewCacheMetrics(MetricsNamespace)
	collectors.add(cacheMetrics)
	cacheOpts := cfg.Cache.Options()
	cacheOpts.MetricsCollector = cacheMetrics
	cat := catalog.New(source, catalog.Opts{
		CacheOpts:        cacheOpts,
		FallbackStylists: cfg.Catalog.Stylists(),
		NotConfiguredErr: notConfiguredErr,
		Logger:           logger,
	})

	rateLimitMetrics := middleware.NewRateLimitPrometheusMetrics(MetricsNamespace)
	collectors.add(rateLimitMetrics)
	limiter := ratelimit.NewFixedWindowLimiter()
	apiRoute := httpserver.NewAPIRoute(cat, httpserver.APIOpts{
		ErrorDomain: ErrorDomain,
		AllowOrigin: cfg.Server.CORS.AllowOrigin,
		Limiter:     limiter,
		Rate:        cfg.RateLimit.Rate(),
		RateLimit: middleware.RateLimitOpts{
			ExcludedClients:  cfg.RateLimit.ExcludedClients,
			DryRun:           cfg.RateLimit.DryRun,
			MetricsCollector: rateLimitMetrics,
		},
	})

	httpServer := httpserver.New(cfg.Server, logger, httpserver.Opts{
		ErrorDomain: ErrorDomain,
		APIRoute:    apiRoute,
		HTTPRequestMetrics: httpserver.HTTPRequestMetricsOpts{
			Namespace:   MetricsNamespace,
			ConstLabels: version.AddPrometheusLabel(nil),
		},
	})

	units := []service.Unit{httpServer}
	if interval := cfg.Catalog.WarmUpInterval; interval > 0 && cat.Configured() {
		units = append(units, service.NewWorkerUnitWithOpts(
			catalog.NewWarmUpWorker(cat, interval, logger),
			service.WorkerUnitOpts{GracefulStopTimeout: time.Duration(cfg.Server.Timeouts.Shutdown)},
		))
	}
	if cfg.ProfServer.Enabled {
		units = append(units, profserver.New(cfg.ProfServer, logger))
	}
	unit := &appUnit{CompositeUnit: service.NewCompositeUnit(units...), collectors: collectors}

	svc := service.NewWithOpts(logger, unit, service.Opts{
		BeforeStop:    httpServer.MarkShuttingDown,
		ShutdownDelay: time.Duration(cfg.Server.Timeouts.ShutdownDelay),
	})

	return &App{HTTPServer: httpServer, Catalog: cat, Limiter: limiter, Unit: unit, Service: svc}, nil
}

// appUnit registers the collectors shared by the units together with the units' own metrics.
type appUnit struct {
	*service.CompositeUnit
	collectors *metricsCollectors
}

func (u *appUnit) MustRegisterMetrics() {
	u.CompositeUnit.MustRegisterMetrics()
	u.collectors.MustRegisterMetrics()
}

func (u *appUnit) UnregisterMetrics() {
	u.CompositeUnit.UnregisterMetrics()
	u.collectors.UnregisterMetrics()
}

type prometheusCollector interface {
	MustRegister()
	Unregister()
}

// metricsCollectors presents the Prometheus collectors of the packages (and the restapi global metrics)
// as service.MetricsRegisterer.
type metricsCollectors struct {
	list []prometheusCollector
}

var _ service.MetricsRegisterer = (*metricsCollectors)(nil)

func (mc *metricsCollectors) add(c prometheusCollector) {
	mc.list = append(mc.list, c)
}

func (mc *metricsCollectors) MustRegisterMetrics() {
	for _, c := range mc.list {
		c.MustRegister()
	}
	restapi.MustInitAndRegisterMetrics(MetricsNamespace)
}

func (mc *metricsCollectors) UnregisterMetrics() {
	for _, c := range mc.list {
		c.Unregister()
	}
	restapi.UnregisterMetrics()
}
