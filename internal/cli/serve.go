package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netplot/internal/server"
	"github.com/matzehuels/netplot/pkg/artifact"
	"github.com/matzehuels/netplot/pkg/cache"
	"github.com/matzehuels/netplot/pkg/netstore"
	"github.com/matzehuels/netplot/pkg/observability"
)

// serveCommand creates the serve command, which runs the HTTP plot API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the plot HTTP API",
		Long: `Serve the plot HTTP API.

Routes:
  POST /plot                  plot a JSON or TOML network from the request body
  GET  /example/plot          plot the bundled example network
  GET  /networks/             list networks in the network store
  GET  /networks/{name}/plot  plot a stored network
  GET  /healthz               health and build information
  GET  /metrics               Prometheus metrics (when enabled)

Cache, network store and artifact store backends come from the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			srv, cleanup, err := c.newServer(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			printKeyValue("Listening", cfg.Addr)
			return srv.ListenAndServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", c.Config.Server.Addr, "listen address")

	return cmd
}

// newServer builds the server from the loaded config. cleanup closes every
// backend that was opened.
func (c *CLI) newServer(ctx context.Context) (*server.Server, func(), error) {
	var closers []func() error
	cleanup := func() {
		for _, fn := range closers {
			if err := fn(); err != nil {
				c.Logger.Warn("close backend", "err", err)
			}
		}
	}

	opts := []server.Option{
		server.WithLogger(c.Logger),
		server.WithKeyer(c.keyer()),
		server.WithDefaults(c.Config.Plot.Options()),
		server.WithMaxBodyBytes(c.Config.Server.MaxBodyBytes),
	}

	cc, err := cache.Open(ctx, c.Config.Cache)
	if err != nil {
		return nil, cleanup, fmt.Errorf("open cache: %w", err)
	}
	closers = append(closers, cc.Close)
	opts = append(opts, server.WithCache(cc))
	printKeyValue("Cache", backendName(c.Config.Cache.Backend, cache.BackendFile))

	store, err := netstore.Open(ctx, c.Config.Store)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("open network store: %w", err)
	}
	if store != nil {
		closers = append(closers, store.Close)
		opts = append(opts, server.WithNetworkStore(store))
	}
	printKeyValue("Networks", backendName(c.Config.Store.Backend, "disabled"))

	arts, err := artifact.Open(ctx, c.Config.Artifacts)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("open artifact store: %w", err)
	}
	if arts != nil {
		closers = append(closers, arts.Close)
		opts = append(opts, server.WithArtifactStore(arts))
	}
	printKeyValue("Artifacts", backendName(c.Config.Artifacts.Backend, "disabled"))

	if c.Config.Server.Metrics {
		opts = append(opts, server.WithMetrics(c.metricsHandler()))
	}
	return server.New(opts...), cleanup, nil
}

// metricsHandler registers the pipeline hooks on a fresh registry and
// returns its scrape handler.
func (c *CLI) metricsHandler() http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	h := observability.NewPrometheusHooks(reg)
	observability.SetPlotHooks(h)
	observability.SetCacheHooks(h)
	observability.SetServerHooks(h)

	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

func backendName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
