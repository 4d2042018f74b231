/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package catalog

import (
	"context"
	"time"

	"github.com/vahairstudio/site-api/log"
	"github.com/vahairstudio/site-api/retry"
	"github.com/vahairstudio/site-api/service"
)

// warmUpRetryInitialInterval is the first delay after a failed warm-up.
const warmUpRetryInitialInterval = 15 * time.Second

// NewWarmUpWorker returns a worker that refreshes expired services and stylists every interval,
// so a stale fallback is already in place when Acuity starts failing.
// The first warm-up runs immediately. Failed warm-ups are retried with exponential backoff capped by the interval.
func NewWarmUpWorker(c *Catalog, interval time.Duration, logger log.FieldLogger) *service.PeriodicWorker {
	return service.NewPeriodicWorkerWithOpts(service.WorkerFunc(func(ctx context.Context) error {
		return c.WarmUp(ctx)
	}), interval, logger.With(log.String("worker", "catalog_warm_up")), service.PeriodicWorkerOpts{
		FailureBackOff: retry.ExponentialBackoffPolicy{
			InitialInterval: warmUpRetryInitialInterval,
			MaxInterval:     interval,
		},
	})
}
