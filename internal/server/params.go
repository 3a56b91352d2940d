package server

import (
	"net/url"
	"strconv"

	"github.com/matzehuels/netplot/pkg/errors"
	"github.com/matzehuels/netplot/pkg/geodata"
	"github.com/matzehuels/netplot/pkg/plot"
	"github.com/matzehuels/netplot/pkg/render"
	"github.com/matzehuels/netplot/pkg/scale"
)

// params are the parsed query parameters of a plot request.
type params struct {
	opts   plot.Options
	format render.Format
	store  bool
}

func parseParams(q url.Values, defaults plot.Options) (params, error) {
	p := params{opts: defaults}

	f, err := render.ParseFormat(q.Get("format"))
	if err != nil {
		return p, err
	}
	p.format = f

	if p.opts.RespectSwitches, err = boolParam(q, "respect_switches", p.opts.RespectSwitches); err != nil {
		return p, err
	}
	if p.opts.Refresh, err = boolParam(q, "refresh", false); err != nil {
		return p, err
	}
	if p.store, err = boolParam(q, "store", false); err != nil {
		return p, err
	}

	if v := q.Get("line_width"); v != "" {
		w, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return p, errors.New(errors.ErrCodeInvalidInput, "line_width: %q is not a number", v)
		}
		p.opts.LineWidth = w
	}

	sizes := []struct {
		name string
		dst  *scale.Size
	}{
		{"bus_size", &p.opts.BusSize},
		{"ext_grid_size", &p.opts.ExtGridSize},
		{"trafo_size", &p.opts.TrafoSize},
	}
	for _, s := range sizes {
		v := q.Get(s.name)
		if v == "" {
			continue
		}
		size, err := scale.ParseSize(v)
		if err != nil {
			return p, errors.Wrap(errors.ErrCodeInvalidSize, err, "%s", s.name)
		}
		*s.dst = size
	}

	if v := q.Get("engine"); v != "" {
		e, err := geodata.ParseEngine(v)
		if err != nil {
			return p, err
		}
		p.opts.Engine = e
	}
	if p.opts.Iterations, err = intParam(q, "iterations", p.opts.Iterations); err != nil {
		return p, err
	}
	if p.opts.Canvas.Width, err = intParam(q, "width", p.opts.Canvas.Width); err != nil {
		return p, err
	}
	if v := q.Get("title"); v != "" {
		p.opts.Canvas.Title = v
	}

	if err := p.opts.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

func boolParam(q url.Values, name string, def bool) (bool, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, errors.New(errors.ErrCodeInvalidInput, "%s: %q is not a boolean", name, v)
	}
	return b, nil
}

func intParam(q url.Values, name string, def int) (int, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def, errors.New(errors.ErrCodeInvalidInput, "%s: %q is not a non-negative integer", name, v)
	}
	return n, nil
}
