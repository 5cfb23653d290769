package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"file-gateway/internal/config"
	"file-gateway/internal/storage"
)

// Options carries the process-wide dependencies shared by every request.
type Options struct {
	Store   storage.Store
	Logger  zerolog.Logger
	Metrics *Metrics // nil creates a fresh registry
	Version string
}

// Server owns the gateway listener and the optional admin listener.
type Server struct {
	httpServer  *http.Server
	adminServer *http.Server
	gateway     http.Handler
	logger      zerolog.Logger
}

// New builds both listeners from an already validated configuration.
// cfg is copied, so later changes by the caller are not observed.
func New(cfg config.Config, opts Options) *Server {
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(opts.Version)
	}

	gw := &gateway{
		apiKey:         cfg.APIKey,
		maxUploadBytes: cfg.MaxUploadBytes,
		store:          opts.Store,
		metrics:        opts.Metrics,
	}

	s := &Server{
		gateway: newGatewayHandler(gw, opts.Logger, opts.Metrics),
		logger:  opts.Logger,
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.gateway,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if cfg.AdminAddr != "" {
		s.adminServer = &http.Server{
			Addr:              cfg.AdminAddr,
			Handler:           newAdminHandler(opts.Store, opts.Metrics, opts.Version),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return s
}

// Handler returns the authenticated gateway handler.
func (s *Server) Handler() http.Handler { return s.gateway }

// Start serves until a listener fails or Shutdown is called. It returns
// http.ErrServerClosed after a clean shutdown.
func (s *Server) Start() error {
	errCh := make(chan error, 2)

	serve := func(name string, hs *http.Server) {
		ln, err := net.Listen("tcp", hs.Addr)
		if err != nil {
			errCh <- err
			return
		}
		s.logger.Info().Str("listener", name).Str("addr", ln.Addr().String()).Msg("listening")
		errCh <- hs.Serve(ln)
	}

	if s.adminServer != nil {
		go serve("admin", s.adminServer)
	}
	go serve("gateway", s.httpServer)

	return <-errCh
}

// Shutdown drains both listeners.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if s.adminServer != nil {
		if err := s.adminServer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
