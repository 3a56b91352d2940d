// Package plot turns a power network into a rendered drawing.
//
// # Pipeline
//
// [Plotter.Plot] runs these steps:
//
//  1. A nil network is replaced by the example network (with a warning).
//  2. A network with neither bus nor line geodata gets synthesized bus
//     coordinates (with a warning), looked up in the layout cache first.
//     Any existing geodata disables synthesis entirely.
//  3. If any marker size is relative, the unit is derived from the extent
//     of the bus coordinates.
//  4. Lines are drawn from stored paths when the network has any line
//     geodata, otherwise as straight bus-to-bus segments.
//  5. Collections are built for buses, lines, ext grids and transformers.
//     Buses and lines are always drawn, possibly empty, unless the bus
//     size is off. Ext grids and transformers are omitted when empty.
//  6. The collections are handed to the renderer.
//
// Step 2 writes coordinates into the network passed in. Callers that plot
// a shared network concurrently must clone it first.
//
// # Usage
//
//	p := plot.New(render.NewSVG(), plot.WithCache(c), plot.WithLogger(logger))
//	res, err := p.Plot(ctx, net, plot.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("net.svg", res.Canvas, 0o644)
package plot

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netplot/pkg/cache"
	"github.com/matzehuels/netplot/pkg/collections"
	"github.com/matzehuels/netplot/pkg/errors"
	"github.com/matzehuels/netplot/pkg/network"
	"github.com/matzehuels/netplot/pkg/observability"
	"github.com/matzehuels/netplot/pkg/render"
	"github.com/matzehuels/netplot/pkg/scale"
)

// Plotter runs the plot pipeline. It holds no per-call state, so one
// Plotter may serve concurrent calls on distinct networks.
type Plotter struct {
	Renderer render.Renderer
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger

	// Example supplies the network plotted when none is given.
	Example func() *network.Network
}

// Option configures a Plotter.
type Option func(*Plotter)

func WithCache(c cache.Cache) Option       { return func(p *Plotter) { p.Cache = c } }
func WithKeyer(k cache.Keyer) Option       { return func(p *Plotter) { p.Keyer = k } }
func WithLogger(l *log.Logger) Option      { return func(p *Plotter) { p.Logger = l } }
func WithExample(f func() *network.Network) Option {
	return func(p *Plotter) { p.Example = f }
}

// New creates a Plotter. Missing dependencies fall back to an SVG renderer,
// a NullCache, the default keyer, log.Default() and [network.Example].
func New(r render.Renderer, opts ...Option) *Plotter {
	p := &Plotter{Renderer: r}
	for _, opt := range opts {
		opt(p)
	}
	if p.Renderer == nil {
		p.Renderer = render.NewSVG()
	}
	if p.Cache == nil {
		p.Cache = cache.NewNullCache()
	}
	if p.Keyer == nil {
		p.Keyer = cache.NewDefaultKeyer()
	}
	if p.Logger == nil {
		p.Logger = log.Default()
	}
	if p.Example == nil {
		p.Example = network.Example
	}
	return p
}

// Result contains the outputs of a plot run.
type Result struct {
	// Network is the plotted network, including any synthesized coordinates.
	Network *network.Network

	// Collections are the drawn element groups in build order.
	Collections []*collections.Collection

	// Unit is the extent-derived size unit (0 when no size is relative).
	Unit float64

	// Synthesized reports whether bus coordinates were generated.
	Synthesized bool

	// UseLineGeodata reports whether lines were drawn from stored paths.
	UseLineGeodata bool

	// Canvas is the rendered output; nil for [Plotter.Build].
	Canvas []byte

	// Format of Canvas.
	Format render.Format

	Stats Stats

	// CacheHit reports whether synthesized coordinates came from the cache.
	CacheHit bool
}

// Stats contains plot execution statistics.
type Stats struct {
	Buses         int
	Lines         int
	Components    int
	SynthesisTime time.Duration
	RenderTime    time.Duration
}

// Plot runs the full pipeline and renders the result.
func (p *Plotter) Plot(ctx context.Context, net *network.Network, opts Options) (*Result, error) {
	res, err := p.Build(ctx, net, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := p.Renderer.Render(ctx, res.Collections, p.canvas(res.Network, opts))
	res.Stats.RenderTime = time.Since(start)
	observability.Plot().OnRenderComplete(ctx, string(p.Renderer.Format()), len(out), res.Stats.RenderTime, err)
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeRender, err, "render %s", p.Renderer.Format())
		}
		return nil, err
	}
	res.Canvas = out
	res.Format = p.Renderer.Format()

	p.Logger.Debug("rendered canvas",
		"format", res.Format,
		"bytes", len(out),
		"duration", res.Stats.RenderTime)
	return res, nil
}

// Build runs every step except rendering.
func (p *Plotter) Build(ctx context.Context, net *network.Network, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	if net == nil {
		p.Logger.Warn("no network provided, plotting example network")
		net = p.Example()
	}
	res := &Result{
		Network: net,
		Stats:   Stats{Buses: len(net.Buses), Lines: len(net.Lines)},
	}

	if !net.HasBusGeodata() && !net.HasLineGeodata() {
		p.Logger.Warn("no or insufficient geodata available, generating artificial coordinates; this may take some time",
			"buses", len(net.Buses),
			"engine", opts.Engine)
		if err := p.synthesize(ctx, net, opts, res); err != nil {
			return nil, err
		}
	}

	if scale.NeedsUnit(opts.BusSize, opts.ExtGridSize, opts.TrafoSize) {
		res.Unit = scale.DeriveUnit(net.BusCoordinates())
	}
	res.UseLineGeodata = net.HasLineGeodata()

	cs, err := buildCollections(net, opts, res.Unit, res.UseLineGeodata)
	if err != nil {
		return nil, err
	}
	res.Collections = cs

	p.Logger.Debug("built collections",
		"collections", len(cs),
		"unit", res.Unit,
		"line_geodata", res.UseLineGeodata)
	return res, nil
}

func buildCollections(net *network.Network, opts Options, unit float64, useLineGeodata bool) ([]*collections.Collection, error) {
	var cs []*collections.Collection
	add := func(c *collections.Collection, err error) error {
		if err != nil {
			return err
		}
		if c != nil {
			cs = append(cs, c)
		}
		return nil
	}

	if !opts.BusSize.IsOff() {
		err := add(collections.Buses(net, net.BusIDs(), collections.BusOptions{
			Size:      opts.BusSize.Resolve(unit, 1),
			Color:     render.ResolveColor(opts.Palette.Bus),
			ZOrder:    collections.ZOrderBuses,
			KeepEmpty: true,
		}))
		if err != nil {
			return nil, err
		}
	}

	err := add(collections.Lines(net, net.LineIDs(), collections.LineOptions{
		Color:      render.ResolveColor(opts.Palette.Line),
		Width:      opts.LineWidth,
		ZOrder:     collections.ZOrderLines,
		UseGeodata: useLineGeodata,
		KeepEmpty:  true,
	}))
	if err != nil {
		return nil, err
	}

	if ids := collections.ExtGridBuses(net); len(ids) > 0 && !opts.ExtGridSize.IsOff() {
		err := add(collections.Buses(net, ids, collections.BusOptions{
			Category: collections.CategoryExtGrid,
			Shape:    collections.ShapeRect,
			Size:     opts.ExtGridSize.Resolve(unit, scale.ExtGridFactor),
			Color:    render.ResolveColor(opts.Palette.ExtGrid),
			ZOrder:   collections.ZOrderExtGrid,
		}))
		if err != nil {
			return nil, err
		}
	}

	if ids := collections.TrafosWithCoordinates(net); len(ids) > 0 && !opts.TrafoSize.IsOff() {
		err := add(collections.Trafos(net, ids, collections.TrafoOptions{
			Color:  render.ResolveColor(opts.Palette.Trafo),
			Size:   opts.TrafoSize.Resolve(unit, 1),
			Width:  opts.LineWidth,
			ZOrder: collections.ZOrderTrafos,
		}))
		if err != nil {
			return nil, err
		}
	}
	return cs, nil
}

func (p *Plotter) canvas(net *network.Network, opts Options) render.Canvas {
	c := opts.Canvas
	if c.Title == "" {
		c.Title = net.Name
	}
	return c
}
