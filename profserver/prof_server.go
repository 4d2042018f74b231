/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

// Package profserver provides an opt-in pprof HTTP server that runs next to the site API.
package profserver

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/atomic"

	"github.com/vahairstudio/site-api/httpserver/middleware"
	"github.com/vahairstudio/site-api/log"
	"github.com/vahairstudio/site-api/service"
)

const readHeaderTimeout = 5 * time.Second

// ProfServer serves /debug/pprof on its own address. It implements service.Unit.
type ProfServer struct {
	HTTPServer *http.Server
	Logger     log.FieldLogger

	addr    atomic.String
	started atomic.Bool
	done    chan struct{}
}

var _ service.Unit = (*ProfServer)(nil)

// New creates a new profiling server.
func New(cfg *Config, logger log.FieldLogger) *ProfServer {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID(),
		middleware.LoggingWithOpts(logger, middleware.LoggingOpts{RequestStart: true}),
	)
	router.Mount("/debug", chimiddleware.Profiler())

	return &ProfServer{
		HTTPServer: &http.Server{
			Addr:              cfg.Address,
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		Logger: logger,
		done:   make(chan struct{}),
	}
}

// Start starts the profiling server in a blocking way.
// If a fatal error occurs, it's sent into the fatalError channel.
func (s *ProfServer) Start(fatalError chan<- error) {
	s.started.Store(true)
	defer close(s.done)

	logger := s.Logger.With(log.String("address", s.HTTPServer.Addr))
	logger.Info("starting profiling HTTP server...")

	listener, err := net.Listen("tcp", s.HTTPServer.Addr)
	if err != nil {
		logger.Error("profiling HTTP server error", log.Error(err))
		fatalError <- err
		return
	}
	s.addr.Store(listener.Addr().String())

	if err = s.HTTPServer.Serve(listener); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			logger.Info("profiling HTTP server closed")
			return
		}
		logger.Error("profiling HTTP server error", log.Error(err))
		fatalError <- err
	}
}

// Stop closes the profiling server. Profiles in progress are not waited for.
func (s *ProfServer) Stop(bool) error {
	s.Logger.Info("closing profiling HTTP server...")
	if err := s.HTTPServer.Close(); err != nil {
		s.Logger.Error("profiling HTTP server closing error", log.Error(err))
		return err
	}
	if s.started.Load() {
		<-s.done
	}
	return nil
}

// Addr returns the address the server listens on, or an empty string before it has started.
func (s *ProfServer) Addr() string {
	return s.addr.Load()
}
