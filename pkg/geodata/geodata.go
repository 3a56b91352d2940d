package geodata

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/netplot/pkg/errors"
	"github.com/matzehuels/netplot/pkg/network"
	"github.com/matzehuels/netplot/pkg/topology"
)

// Engine selects the per-component layout algorithm.
type Engine string

const (
	// EngineSpring is the built-in deterministic Fruchterman-Reingold layout.
	EngineSpring Engine = "spring"
	// EngineNeato delegates component layout to Graphviz neato.
	EngineNeato Engine = "neato"
)

const (
	// DefaultIterations is the number of spring layout iterations.
	DefaultIterations = 150

	// DefaultSpacing is the gap between packed component boxes.
	DefaultSpacing = 1.0
)

// ValidEngines lists the supported engines.
var ValidEngines = map[Engine]bool{
	EngineSpring: true,
	EngineNeato:  true,
}

// ParseEngine converts a user-supplied engine name. The empty string maps to
// [EngineSpring].
func ParseEngine(s string) (Engine, error) {
	e := Engine(strings.ToLower(strings.TrimSpace(s)))
	if e == "" {
		return EngineSpring, nil
	}
	if !ValidEngines[e] {
		return "", errors.New(errors.ErrCodeInvalidEngine, "invalid layout engine %q (must be 'spring' or 'neato')", s)
	}
	return e, nil
}

// Options configures coordinate synthesis.
type Options struct {
	// RespectSwitches drops open switches from the connectivity graph so
	// electrically isolated islands get their own layout region.
	RespectSwitches bool

	// Engine is the per-component layout algorithm (default spring).
	Engine Engine

	// Iterations bounds the spring layout (default DefaultIterations).
	Iterations int

	// Spacing is the gap between component boxes (default DefaultSpacing).
	Spacing float64
}

// WithDefaults returns a copy of o with zero fields replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.Engine == "" {
		o.Engine = EngineSpring
	}
	if o.Iterations <= 0 {
		o.Iterations = DefaultIterations
	}
	if o.Spacing <= 0 {
		o.Spacing = DefaultSpacing
	}
	return o
}

// Result holds synthesized coordinates keyed by bus ID.
type Result struct {
	Buses      map[int]network.Coordinate `json:"buses"`
	Components int                        `json:"components"`
}

// Synthesize computes a coordinate for every bus of n without touching n.
//
// The connectivity graph is split into connected components; each component
// is laid out independently and the components are packed into disjoint
// boxes, largest first. A network without buses yields an empty result.
//
// Synthesis is quadratic per component for the spring engine and may be slow
// for large networks.
func Synthesize(ctx context.Context, n *network.Network, opts Options) (Result, error) {
	opts = opts.WithDefaults()
	if !ValidEngines[opts.Engine] {
		return Result{}, errors.New(errors.ErrCodeInvalidEngine, "invalid layout engine %q", opts.Engine)
	}

	g, err := topology.Build(n, topology.Options{RespectSwitches: opts.RespectSwitches})
	if err != nil {
		return Result{}, fmt.Errorf("build topology: %w", err)
	}

	comps := g.Components()
	layouts := make([]map[int]network.Coordinate, 0, len(comps))
	for _, comp := range comps {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		sub := g.Subgraph(comp)
		var pos map[int]network.Coordinate
		switch opts.Engine {
		case EngineNeato:
			pos, err = neatoLayout(ctx, sub)
		default:
			pos = springLayout(sub, opts.Iterations)
		}
		if err != nil {
			return Result{}, fmt.Errorf("layout component of bus %d: %w", comp[0], err)
		}
		layouts = append(layouts, pos)
	}

	return Result{
		Buses:      pack(layouts, opts.Spacing),
		Components: len(comps),
	}, nil
}

// Apply writes synthesized coordinates into buses that do not own one and
// returns how many buses were updated. Lines are left untouched; a line
// without a path is drawn between its buses.
func Apply(n *network.Network, r Result) int {
	applied := 0
	for i := range n.Buses {
		b := &n.Buses[i]
		if b.Geo != nil {
			continue
		}
		if c, ok := r.Buses[b.ID]; ok {
			b.Geo = &c
			applied++
		}
	}
	return applied
}

// Generate synthesizes coordinates and merges them into n in place.
func Generate(ctx context.Context, n *network.Network, opts Options) (Result, error) {
	r, err := Synthesize(ctx, n, opts)
	if err != nil {
		return Result{}, err
	}
	Apply(n, r)
	return r, nil
}
