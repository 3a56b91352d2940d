// Package config loads netplot settings from a TOML file.
//
// The file is located, in order, by the explicit path given to [Load], the
// NETPLOT_CONFIG environment variable, and <user config dir>/netplot/config.toml.
// A missing default file is not an error; [Default] is used instead. Keys
// absent from the file keep their default values, and unknown keys are
// rejected.
//
// Example:
//
//	[plot]
//	respect_switches = true
//	bus_size = "1.5"        # relative to the network extent
//	trafo_size = "abs:0.3"  # plot units
//	ext_grid_size = "off"
//
//	[plot.palette]
//	bus = "r"
//
//	[cache]
//	backend = "redis"
//	redis.url = "redis://localhost:6379/0"
//
//	[store]
//	backend = "dir"
//	dir = "networks"
//
//	[artifacts]
//	backend = "s3"
//	s3.bucket = "plots"
//	s3.endpoint = "http://localhost:9000"
//	s3.path_style = true
//
//	[server]
//	addr = ":8080"
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/netplot/pkg/artifact"
	"github.com/matzehuels/netplot/pkg/cache"
	"github.com/matzehuels/netplot/pkg/errors"
	"github.com/matzehuels/netplot/pkg/geodata"
	"github.com/matzehuels/netplot/pkg/netstore"
	"github.com/matzehuels/netplot/pkg/plot"
	"github.com/matzehuels/netplot/pkg/render"
	"github.com/matzehuels/netplot/pkg/scale"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "NETPLOT_CONFIG"

// Config is the complete netplot configuration.
type Config struct {
	Plot      Plot            `toml:"plot"`
	Cache     cache.Config    `toml:"cache"`
	Store     netstore.Config `toml:"store"`
	Artifacts artifact.Config `toml:"artifacts"`
	Server    Server          `toml:"server"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-"`
}

// Plot holds the default plot options.
type Plot struct {
	RespectSwitches bool           `toml:"respect_switches"`
	LineWidth       float64        `toml:"line_width"`
	BusSize         scale.Size     `toml:"bus_size"`
	ExtGridSize     scale.Size     `toml:"ext_grid_size"`
	TrafoSize       scale.Size     `toml:"trafo_size"`
	Engine          geodata.Engine `toml:"engine"`
	Iterations      int            `toml:"iterations"`
	Palette         render.Palette `toml:"palette"`
	MarkerOpacity   float64        `toml:"marker_opacity"`
	Canvas          render.Canvas  `toml:"canvas"`
}

// Options converts p to plot options.
func (p Plot) Options() plot.Options {
	return plot.Options{
		RespectSwitches: p.RespectSwitches,
		LineWidth:       p.LineWidth,
		BusSize:         p.BusSize,
		ExtGridSize:     p.ExtGridSize,
		TrafoSize:       p.TrafoSize,
		Palette:         p.Palette,
		MarkerOpacity:   p.MarkerOpacity,
		Engine:          p.Engine,
		Iterations:      p.Iterations,
		Canvas:          p.Canvas,
	}
}

// Server holds HTTP server settings.
type Server struct {
	Addr            string        `toml:"addr"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	MaxBodyBytes    int64         `toml:"max_body_bytes"`
	Metrics         bool          `toml:"metrics"`
}

// Default returns the built-in configuration.
func Default() Config {
	o := plot.DefaultOptions()
	return Config{
		Plot: Plot{
			RespectSwitches: o.RespectSwitches,
			LineWidth:       o.LineWidth,
			BusSize:         o.BusSize,
			ExtGridSize:     o.ExtGridSize,
			TrafoSize:       o.TrafoSize,
			Engine:          o.Engine,
			Iterations:      o.Iterations,
			Palette:         o.Palette,
			MarkerOpacity:   o.MarkerOpacity,
			Canvas:          o.Canvas,
		},
		Cache: cache.Config{Backend: cache.BackendFile},
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    2 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    32 << 20,
			Metrics:         true,
		},
	}
}

// DefaultPath returns <user config dir>/netplot/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "netplot", "config.toml"), nil
}

// Load reads the configuration. An empty path falls back to NETPLOT_CONFIG
// and then to [DefaultPath]; only the default path may be missing.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := true
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	if path == "" {
		explicit = false
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "config file %s", path)
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Default(), errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Default(), errors.New(errors.ErrCodeInvalidInput, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path

	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Validate checks the plot defaults and backend names.
func (c *Config) Validate() error {
	o := c.Plot.Options()
	if err := o.Validate(); err != nil {
		code := errors.GetCode(err)
		if code == "" {
			code = errors.ErrCodeInvalidInput
		}
		return errors.Wrap(code, err, "[plot]")
	}
	c.Plot.Engine = o.Engine
	c.Plot.Palette = o.Palette

	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendRedis, cache.BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "[cache] unknown backend %q", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case netstore.BackendNone, netstore.BackendDir, netstore.BackendMongo:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "[store] unknown backend %q", c.Store.Backend)
	}
	switch c.Artifacts.Backend {
	case artifact.BackendNone, artifact.BackendFS, artifact.BackendS3:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "[artifacts] unknown backend %q", c.Artifacts.Backend)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "[server] max_body_bytes must be positive")
	}
	return nil
}
