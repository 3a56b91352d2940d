package plot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/netplot/pkg/cache"
	"github.com/matzehuels/netplot/pkg/geodata"
	"github.com/matzehuels/netplot/pkg/network"
	"github.com/matzehuels/netplot/pkg/observability"
	"github.com/matzehuels/netplot/pkg/topology"
)

const layoutKeyType = "layout"

// synthesize generates bus coordinates for net, consulting the layout
// cache by topology hash, and merges them into net.
func (p *Plotter) synthesize(ctx context.Context, net *network.Network, opts Options, res *Result) error {
	gopts := opts.synthesisOptions()
	start := time.Now()

	g, err := topology.Build(net, topology.Options{RespectSwitches: gopts.RespectSwitches})
	if err != nil {
		return fmt.Errorf("synthesize coordinates: %w", err)
	}
	key := p.Keyer.LayoutKey(g.Hash(), cache.LayoutKeyOpts{
		RespectSwitches: gopts.RespectSwitches,
		Engine:          string(gopts.Engine),
		Iterations:      gopts.Iterations,
		Spacing:         gopts.Spacing,
	})

	if !opts.Refresh {
		if r, ok := p.cachedLayout(ctx, key, net); ok {
			geodata.Apply(net, r)
			res.Synthesized = true
			res.CacheHit = true
			res.Stats.Components = r.Components
			res.Stats.SynthesisTime = time.Since(start)
			p.Logger.Debug("layout cache hit", "buses", len(r.Buses))
			return nil
		}
	}

	observability.Plot().OnSynthesisStart(ctx, string(gopts.Engine), len(net.Buses))
	r, err := geodata.Synthesize(ctx, net, gopts)
	res.Stats.SynthesisTime = time.Since(start)
	observability.Plot().OnSynthesisComplete(ctx, string(gopts.Engine), len(net.Buses), res.Stats.SynthesisTime, err)
	if err != nil {
		return fmt.Errorf("synthesize coordinates: %w", err)
	}

	geodata.Apply(net, r)
	res.Synthesized = true
	res.Stats.Components = r.Components
	p.Logger.Info("synthesized coordinates",
		"buses", len(r.Buses),
		"components", r.Components,
		"duration", res.Stats.SynthesisTime)

	if data, err := json.Marshal(r); err == nil {
		if err := p.Cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
			p.Logger.Warn("layout cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, layoutKeyType, len(data))
		}
	}
	return nil
}

// cachedLayout returns a cached layout that covers every bus of net.
// Backend errors and stale entries count as misses.
func (p *Plotter) cachedLayout(ctx context.Context, key string, net *network.Network) (geodata.Result, bool) {
	data, hit, err := p.Cache.Get(ctx, key)
	if err != nil {
		p.Logger.Warn("layout cache read failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, layoutKeyType)
		return geodata.Result{}, false
	}

	var r geodata.Result
	if err := json.Unmarshal(data, &r); err != nil {
		observability.Cache().OnCacheMiss(ctx, layoutKeyType)
		return geodata.Result{}, false
	}
	for _, b := range net.Buses {
		if _, ok := r.Buses[b.ID]; !ok {
			observability.Cache().OnCacheMiss(ctx, layoutKeyType)
			return geodata.Result{}, false
		}
	}
	observability.Cache().OnCacheHit(ctx, layoutKeyType)
	return r, true
}
