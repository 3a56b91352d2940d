// Package cli implements the netplot command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netplot/pkg/artifact"
	"github.com/matzehuels/netplot/pkg/buildinfo"
	"github.com/matzehuels/netplot/pkg/cache"
	"github.com/matzehuels/netplot/pkg/config"
	"github.com/matzehuels/netplot/pkg/errors"
	"github.com/matzehuels/netplot/pkg/netstore"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display and default file names.
const appName = "netplot"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config config.Config

	configPath string
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "netplot draws power networks",
		Long:         `netplot draws power networks from their bus, line, transformer and external grid tables. Networks without geodata are laid out automatically.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			if cfg.Path != "" {
				c.Logger.Debug("loaded config", "path", cfg.Path)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $"+config.EnvPath+" or the user config dir)")

	root.AddCommand(c.plotCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.exampleCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.networksCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Backends
// =============================================================================

// newCache opens the configured layout cache, or a NullCache when caching
// is disabled. An unavailable backend degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	cc, err := cache.Open(ctx, c.Config.Cache)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "err", err)
		return cache.NewNullCache()
	}
	return cc
}

// keyer scopes cache keys by release so layouts and plots cached by one
// version are never served by another.
func (c *CLI) keyer() cache.Keyer {
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":")
}

// cacheDir returns the file cache directory.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

func (c *CLI) openNetworkStore(ctx context.Context) (netstore.Store, error) {
	s, err := netstore.Open(ctx, c.Config.Store)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "no network store configured; set [store] in the config file")
	}
	return s, nil
}

func (c *CLI) openArtifactStore(ctx context.Context) (artifact.Store, error) {
	s, err := artifact.Open(ctx, c.Config.Artifacts)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "no artifact store configured; set [artifacts] in the config file")
	}
	return s, nil
}
