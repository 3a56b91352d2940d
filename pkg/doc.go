// Package pkg provides the core libraries for netplot power network drawings.
//
// # Overview
//
// netplot draws a power network from its tables: buses, lines,
// transformers, external grid connections and switches. Networks without
// geodata get synthesized bus coordinates first.
//
// # Architecture
//
// The data flow through netplot:
//
//	Network file / store / HTTP body
//	         ↓
//	    [network] package (tables, validation, JSON and TOML codecs)
//	         ↓
//	    [topology] + [geodata] packages (connectivity, coordinate synthesis)
//	         ↓
//	    [scale] + [collections] packages (marker sizes, drawable groups)
//	         ↓
//	    [render] package (SVG, PNG, PDF or JSON)
//
// [plot] runs the whole chain and is what the CLI and the HTTP server call.
//
// # Quick Start
//
//	net, _ := network.ReadFile("grid.json")
//	p := plot.New(render.NewSVG())
//	res, _ := p.Plot(context.Background(), net, plot.DefaultOptions())
//	os.WriteFile("grid.svg", res.Canvas, 0o644)
//
// # Main Packages
//
// ## Domain
//
// [network] - The network model. Every table is keyed by element ID; buses
// and lines may carry coordinates.
//
// [topology] - Undirected connectivity graph over buses, built fresh per
// call. Open switches can disconnect elements.
//
// [geodata] - Coordinate synthesis: each connected component is laid out
// (spring or Graphviz neato) and the components are packed side by side.
//
// [scale] - Tri-state marker sizes (relative, absolute, off) and the unit
// derived from the network extent.
//
// [collections] - Groups of markers, paths and transformer glyphs with a
// color and z-order.
//
// [render] - Canvas encoders.
//
// [plot] - The orchestrator: example fallback, synthesis with layout
// caching, sizing, collection building and rendering.
//
// ## Infrastructure
//
// [cache] - Layout and artifact cache with file, Redis and null backends.
//
// [netstore] - Named network storage in a directory or MongoDB.
//
// [artifact] - Rendered plot storage on the filesystem or S3.
//
// [observability] - Hook registry with a Prometheus implementation.
//
// [config] - TOML configuration shared by the CLI and the server.
//
// [errors] - Coded errors mapped to exit messages and HTTP statuses.
//
// # Testing
//
//	go test ./...                                     # All tests
//	NETPLOT_TEST_REDIS=redis://localhost:6379 go test ./pkg/cache
//	NETPLOT_TEST_MONGO=mongodb://localhost go test ./pkg/netstore
package pkg
