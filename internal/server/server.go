// Package server exposes the plot pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz                  liveness and build info
//	GET  /metrics                  Prometheus metrics (when enabled)
//	POST /plot                     plot the network in the request body
//	GET  /example/plot             plot the built-in example network
//	GET  /networks                 list stored networks
//	GET  /networks/{name}/plot     plot a stored network
//
// Plot routes accept the query parameters format, respect_switches,
// line_width, bus_size, ext_grid_size, trafo_size, engine, iterations,
// width, title, refresh and store. With store=1 the canvas is written to the
// artifact store and its location returned as JSON instead of the canvas.
//
// Every response carries an X-Request-ID header.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/netplot/pkg/artifact"
	"github.com/matzehuels/netplot/pkg/cache"
	"github.com/matzehuels/netplot/pkg/config"
	"github.com/matzehuels/netplot/pkg/netstore"
	"github.com/matzehuels/netplot/pkg/network"
	"github.com/matzehuels/netplot/pkg/plot"
)

// Server serves plots. Its dependencies are fixed at construction; it is
// safe for concurrent use.
type Server struct {
	cache     cache.Cache
	keyer     cache.Keyer
	store     netstore.Store
	artifacts artifact.Store
	defaults  plot.Options
	logger    *log.Logger
	metrics   http.Handler
	maxBody   int64
	example   func() *network.Network
}

// Option configures a Server.
type Option func(*Server)

// WithCache sets the layout and artifact cache.
func WithCache(c cache.Cache) Option { return func(s *Server) { s.cache = c } }

// WithKeyer sets the cache keyer.
func WithKeyer(k cache.Keyer) Option { return func(s *Server) { s.keyer = k } }

// WithNetworkStore enables the /networks routes.
func WithNetworkStore(st netstore.Store) Option { return func(s *Server) { s.store = st } }

// WithArtifactStore enables store=1 on plot routes.
func WithArtifactStore(st artifact.Store) Option { return func(s *Server) { s.artifacts = st } }

// WithDefaults sets the plot options that query parameters override.
func WithDefaults(o plot.Options) Option { return func(s *Server) { s.defaults = o } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option { return func(s *Server) { s.metrics = h } }

// WithMaxBodyBytes limits request bodies.
func WithMaxBodyBytes(n int64) Option { return func(s *Server) { s.maxBody = n } }

// New creates a Server. Without options it plots with a NullCache, no
// stores and default plot options.
func New(opts ...Option) *Server {
	s := &Server{
		defaults: plot.DefaultOptions(),
		maxBody:  config.Default().Server.MaxBodyBytes,
		example:  network.Example,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.NewNullCache()
	}
	if s.keyer == nil {
		s.keyer = cache.NewDefaultKeyer()
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Post("/plot", s.handlePlotBody)
	r.Get("/example/plot", s.handlePlotExample)

	r.Route("/networks", func(r chi.Router) {
		r.Get("/", s.handleListNetworks)
		r.Get("/{name}/plot", s.handlePlotStored)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, notFoundErr(r.URL.Path))
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down
// gracefully within cfg.ShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.Server) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
