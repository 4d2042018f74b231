/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package service

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vahairstudio/site-api/log"
)

// Opts represents options for Service.
type Opts struct {
	// ShutdownSignals stop the service gracefully. SIGINT and SIGTERM are used by default.
	ShutdownSignals []os.Signal

	// BeforeStop is called once the service starts shutting down, before the unit is stopped.
	// The HTTP server uses it to fail the health-check early.
	BeforeStop func()

	// ShutdownDelay is the pause between BeforeStop and stopping the unit,
	// so a load balancer has time to notice the failing health-check.
	ShutdownDelay time.Duration
}

// Service starts a unit, registers its metrics and stops it gracefully by OS signal or context cancellation.
type Service struct {
	Unit    Unit
	Signals chan os.Signal
	Logger  log.FieldLogger
	Opts    Opts
}

// New creates a new Service which starts and stops the passed unit.
func New(logger log.FieldLogger, unit Unit) *Service {
	return NewWithOpts(logger, unit, Opts{})
}

// NewWithOpts is a more configurable version of New.
func NewWithOpts(logger log.FieldLogger, unit Unit, opts Opts) *Service {
	if len(opts.ShutdownSignals) == 0 {
		opts.ShutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}
	return &Service{
		Signals: make(chan os.Signal, 1),
		Unit:    unit,
		Logger:  logger,
		Opts:    opts,
	}
}

// Start wraps StartContext using the background context.
func (s *Service) Start() error {
	return s.StartContext(context.Background())
}

// StartContext starts the unit in a separate goroutine and
// blocks until a fatal error occurs, ctx is canceled or a shutdown signal is received.
func (s *Service) StartContext(ctx context.Context) error {
	if mr, ok := s.Unit.(MetricsRegisterer); ok {
		mr.MustRegisterMetrics()
		defer mr.UnregisterMetrics()
	}

	fatalError := make(chan error, 1)
	go s.Unit.Start(fatalError)

	signal.Notify(s.Signals, s.Opts.ShutdownSignals...)
	defer signal.Stop(s.Signals)

	s.Logger.Info("service started")

	select {
	case <-ctx.Done():
		s.Logger.Info("context is canceled, service will be stopped")
	case err := <-fatalError:
		s.Logger.Error("service fatal error", log.Error(err))
		if stopErr := s.Unit.Stop(false); stopErr != nil {
			s.Logger.Error("service stopping error", log.Error(stopErr))
		}
		return fmt.Errorf("fatal error: %w", err)
	case sig := <-s.Signals:
		s.Logger.Info("service got signal", log.String("signal", sig.String()))
	}

	return s.stopGracefully()
}

func (s *Service) stopGracefully() error {
	if s.Opts.BeforeStop != nil {
		s.Opts.BeforeStop()
	}
	if s.Opts.ShutdownDelay > 0 {
		s.Logger.Info("waiting before stopping service", log.Duration("delay", s.Opts.ShutdownDelay))
		time.Sleep(s.Opts.ShutdownDelay)
	}
	if err := s.Unit.Stop(true); err != nil {
		return fmt.Errorf("stop service gracefully: %w", err)
	}
	s.Logger.Info("service stopped")
	return nil
}
