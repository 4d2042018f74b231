/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/vahairstudio/site-api/log"
	"github.com/vahairstudio/site-api/retry"
)

// ErrPeriodicWorkerStop may be returned by a worker to interrupt PeriodicWorker's loop.
var ErrPeriodicWorkerStop = errors.New("stop periodic worker")

// Worker performs some (usually long-running) work.
type Worker interface {
	Run(ctx context.Context) error
}

// WorkerFunc is an adapter to allow the use of ordinary functions as Worker.
type WorkerFunc func(ctx context.Context) error

// Run is a part of Worker interface.
func (f WorkerFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// PeriodicWorker runs the underlying worker periodically until the context is canceled.
type PeriodicWorker struct {
	worker        Worker
	logger        log.FieldLogger
	initialDelay  time.Duration
	intervalDelay time.Duration
	failurePolicy retry.Policy
}

// PeriodicWorkerOpts contains optional parameters for constructing PeriodicWorker.
type PeriodicWorkerOpts struct {
	// InitialDelay postpones the first run.
	InitialDelay time.Duration

	// FailureBackOff shortens the delay after failed runs.
	// Delays are taken from the policy while runs keep failing and never exceed the interval.
	// The interval is used again after a successful run or once the policy gives up.
	FailureBackOff retry.Policy
}

// NewPeriodicWorker creates a new PeriodicWorker with a constant interval.
func NewPeriodicWorker(worker Worker, intervalDelay time.Duration, logger log.FieldLogger) *PeriodicWorker {
	return NewPeriodicWorkerWithOpts(worker, intervalDelay, logger, PeriodicWorkerOpts{})
}

// NewPeriodicWorkerWithOpts is a more configurable version of NewPeriodicWorker.
func NewPeriodicWorkerWithOpts(
	worker Worker, intervalDelay time.Duration, logger log.FieldLogger, opts PeriodicWorkerOpts,
) *PeriodicWorker {
	return &PeriodicWorker{
		worker:        worker,
		logger:        logger,
		initialDelay:  opts.InitialDelay,
		intervalDelay: intervalDelay,
		failurePolicy: opts.FailureBackOff,
	}
}

// Run runs the PeriodicWorker loop. It returns nil when ctx is done or the worker returns ErrPeriodicWorkerStop.
func (pw *PeriodicWorker) Run(ctx context.Context) (resErr error) {
	defer func() {
		if p := recover(); p != nil {
			const logStackSize = 8192
			stack := make([]byte, logStackSize)
			stack = stack[:runtime.Stack(stack, false)]
			pw.logger.Error(fmt.Sprintf("panic: %+v", p), log.Bytes("stack", stack))
			panic(p)
		}
		if resErr != nil {
			pw.logger.Error("periodic worker stopped with error", log.Error(resErr))
			return
		}
		pw.logger.Info("periodic worker stopped")
	}()

	pw.logger.Info("running periodic worker...",
		log.Duration("initial_delay", pw.initialDelay), log.Duration("interval", pw.intervalDelay))

	timer := time.NewTimer(pw.initialDelay)
	defer timer.Stop()

	var failureBackOff backoff.BackOff
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		err := pw.worker.Run(ctx)
		if errors.Is(err, ErrPeriodicWorkerStop) {
			return nil
		}

		nextDelay := pw.intervalDelay
		if err != nil {
			if pw.failurePolicy != nil {
				if failureBackOff == nil {
					failureBackOff = pw.failurePolicy.NewBackOff()
				}
				if d := failureBackOff.NextBackOff(); d != backoff.Stop && d < nextDelay {
					nextDelay = d
				}
			}
			pw.logger.Error("periodically running worker finished with error",
				log.Error(err), log.Duration("next_run_in", nextDelay))
		} else {
			failureBackOff = nil
		}

		timer.Reset(nextDelay)
	}
}
