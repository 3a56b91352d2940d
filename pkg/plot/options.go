package plot

import (
	"encoding/json"
	"math"

	"github.com/matzehuels/netplot/pkg/errors"
	"github.com/matzehuels/netplot/pkg/geodata"
	"github.com/matzehuels/netplot/pkg/render"
	"github.com/matzehuels/netplot/pkg/scale"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, Server and Library
// =============================================================================

const (
	// DefaultLineWidth is the stroke width of lines and transformer glyphs.
	DefaultLineWidth = 1.0

	// MaxIterations bounds spring layout iterations. Each iteration is
	// quadratic in the component size.
	MaxIterations = 10000

	// DefaultMarkerOpacity draws bus and ext grid markers opaque.
	DefaultMarkerOpacity = 1.0
)

// =============================================================================
// Options - Plot Configuration
// =============================================================================

// Options controls one plot. The zero value is not useful; start from
// [DefaultOptions].
type Options struct {
	// RespectSwitches makes open switches disconnect their elements during
	// coordinate synthesis.
	RespectSwitches bool `json:"respect_switches"`

	// LineWidth is the stroke width of lines in canvas pixels.
	LineWidth float64 `json:"line_width"`

	// Marker sizes. Relative sizes are multiplied by the extent-derived
	// unit; Off omits the category.
	BusSize     scale.Size `json:"bus_size"`
	ExtGridSize scale.Size `json:"ext_grid_size"`
	TrafoSize   scale.Size `json:"trafo_size"`

	Palette render.Palette `json:"palette"`

	// MarkerOpacity is the fill opacity of bus and ext grid markers in
	// [0, 1]. JSON output ignores it.
	MarkerOpacity float64 `json:"marker_opacity"`

	// Synthesis settings, used only for networks without geodata.
	Engine     geodata.Engine `json:"engine"`
	Iterations int            `json:"iterations,omitempty"`

	Canvas render.Canvas `json:"canvas"`

	// Refresh bypasses the layout cache on read; fresh results are still
	// written back.
	Refresh bool `json:"-"`
}

// DefaultOptions returns the standard plot settings.
func DefaultOptions() Options {
	return Options{
		RespectSwitches: false,
		LineWidth:       DefaultLineWidth,
		BusSize:         scale.Relative(1),
		ExtGridSize:     scale.Relative(1),
		TrafoSize:       scale.Relative(1),
		Palette:         render.DefaultPalette(),
		MarkerOpacity:   DefaultMarkerOpacity,
		Engine:          geodata.EngineSpring,
		Iterations:      geodata.DefaultIterations,
		Canvas:          render.DefaultCanvas(),
	}
}

// Validate checks o and fills empty palette entries and engine.
func (o *Options) Validate() error {
	if o.LineWidth < 0 || math.IsNaN(o.LineWidth) || math.IsInf(o.LineWidth, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "line width must be a finite non-negative number, got %v", o.LineWidth)
	}
	sizes := []struct {
		name string
		size scale.Size
	}{{"bus", o.BusSize}, {"ext grid", o.ExtGridSize}, {"trafo", o.TrafoSize}}
	for _, s := range sizes {
		v := s.size.Value
		if !s.size.IsOff() && (v < 0 || math.IsNaN(v) || math.IsInf(v, 0)) {
			return errors.New(errors.ErrCodeInvalidSize, "%s size must be a finite non-negative number, got %v", s.name, v)
		}
	}
	if o.MarkerOpacity < 0 || o.MarkerOpacity > 1 || math.IsNaN(o.MarkerOpacity) {
		return errors.New(errors.ErrCodeInvalidInput, "marker opacity must be between 0 and 1, got %v", o.MarkerOpacity)
	}
	engine, err := geodata.ParseEngine(string(o.Engine))
	if err != nil {
		return err
	}
	o.Engine = engine
	if o.Iterations < 0 || o.Iterations > MaxIterations {
		return errors.New(errors.ErrCodeInvalidInput, "iterations must be between 0 and %d, got %d", MaxIterations, o.Iterations)
	}
	if o.Canvas.Width < 0 || o.Canvas.Width > render.MaxWidth {
		return errors.New(errors.ErrCodeInvalidInput, "canvas width must be between 0 and %d, got %d", render.MaxWidth, o.Canvas.Width)
	}
	o.Palette = o.Palette.Merge(render.DefaultPalette())
	return nil
}

// RendererOptions returns the renderer settings carried by o.
func (o Options) RendererOptions() []render.SVGOption {
	return []render.SVGOption{render.WithMarkerOpacity(o.MarkerOpacity)}
}

// synthesisOptions maps o onto the coordinate synthesizer.
func (o Options) synthesisOptions() geodata.Options {
	return geodata.Options{
		RespectSwitches: o.RespectSwitches,
		Engine:          o.Engine,
		Iterations:      o.Iterations,
	}.WithDefaults()
}

// Params returns a canonical encoding of o for artifact cache keys.
func (o Options) Params() string {
	data, _ := json.Marshal(o)
	return string(data)
}
