package cli

import (
	"github.com/spf13/pflag"

	"github.com/matzehuels/netplot/pkg/geodata"
	"github.com/matzehuels/netplot/pkg/plot"
	"github.com/matzehuels/netplot/pkg/render"
	"github.com/matzehuels/netplot/pkg/scale"
)

// sizeValue adapts scale.Size to pflag.Value so marker sizes accept
// "1.5", "abs:0.3" and "off" on the command line.
type sizeValue scale.Size

func (v *sizeValue) String() string { return scale.Size(*v).String() }
func (v *sizeValue) Type() string   { return "size" }

func (v *sizeValue) Set(s string) error {
	sz, err := scale.ParseSize(s)
	if err != nil {
		return err
	}
	*v = sizeValue(sz)
	return nil
}

// plotFlags holds the flags shared by commands that plot or lay out a
// network. Only flags set explicitly override the configured options.
type plotFlags struct {
	respectSwitches bool
	lineWidth       float64
	busSize         sizeValue
	extGridSize     sizeValue
	trafoSize       sizeValue
	engine          string
	iterations      int
	width           int
	title           string
	palette         render.Palette
}

// registerLayout adds the coordinate synthesis flags.
func (f *plotFlags) registerLayout(fs *pflag.FlagSet) {
	o := plot.DefaultOptions()
	fs.BoolVar(&f.respectSwitches, "respect-switches", o.RespectSwitches, "open switches disconnect their elements during layout")
	fs.StringVar(&f.engine, "engine", string(o.Engine), "layout engine for networks without geodata: spring, neato")
	fs.IntVar(&f.iterations, "iterations", o.Iterations, "spring layout iterations")
}

// register adds every plot flag.
func (f *plotFlags) register(fs *pflag.FlagSet) {
	o := plot.DefaultOptions()
	f.registerLayout(fs)

	f.busSize = sizeValue(o.BusSize)
	f.extGridSize = sizeValue(o.ExtGridSize)
	f.trafoSize = sizeValue(o.TrafoSize)

	fs.Float64Var(&f.lineWidth, "line-width", o.LineWidth, "line stroke width")
	fs.Var(&f.busSize, "bus-size", `bus marker size: relative factor, "abs:<value>" or "off"`)
	fs.Var(&f.extGridSize, "ext-grid-size", "external grid marker size")
	fs.Var(&f.trafoSize, "trafo-size", "transformer symbol size")
	fs.IntVar(&f.width, "width", o.Canvas.Width, "canvas width in pixels")
	fs.StringVar(&f.title, "title", "", "canvas title (default: network name)")

	fs.StringVar(&f.palette.Bus, "bus-color", o.Palette.Bus, "bus color")
	fs.StringVar(&f.palette.Line, "line-color", o.Palette.Line, "line color")
	fs.StringVar(&f.palette.Trafo, "trafo-color", o.Palette.Trafo, "transformer color")
	fs.StringVar(&f.palette.ExtGrid, "ext-grid-color", o.Palette.ExtGrid, "external grid color")
}

// apply overlays the flags the user set on base and validates the result.
func (f *plotFlags) apply(fs *pflag.FlagSet, base plot.Options) (plot.Options, error) {
	opts := base
	changed := fs.Changed

	if changed("respect-switches") {
		opts.RespectSwitches = f.respectSwitches
	}
	if changed("engine") {
		e, err := geodata.ParseEngine(f.engine)
		if err != nil {
			return plot.Options{}, err
		}
		opts.Engine = e
	}
	if changed("iterations") {
		opts.Iterations = f.iterations
	}
	if changed("line-width") {
		opts.LineWidth = f.lineWidth
	}
	if changed("bus-size") {
		opts.BusSize = scale.Size(f.busSize)
	}
	if changed("ext-grid-size") {
		opts.ExtGridSize = scale.Size(f.extGridSize)
	}
	if changed("trafo-size") {
		opts.TrafoSize = scale.Size(f.trafoSize)
	}
	if changed("width") {
		opts.Canvas.Width = f.width
	}
	if changed("title") {
		opts.Canvas.Title = f.title
	}
	if changed("bus-color") {
		opts.Palette.Bus = f.palette.Bus
	}
	if changed("line-color") {
		opts.Palette.Line = f.palette.Line
	}
	if changed("trafo-color") {
		opts.Palette.Trafo = f.palette.Trafo
	}
	if changed("ext-grid-color") {
		opts.Palette.ExtGrid = f.palette.ExtGrid
	}

	if err := opts.Validate(); err != nil {
		return plot.Options{}, err
	}
	return opts, nil
}
