// Package render draws element collections onto a canvas.
//
// # Overview
//
// A [Renderer] receives the collections built for a network together with
// a [Canvas] and returns the encoded output:
//
//   - [NewSVG]: SVG drawn with github.com/ajstarks/svgo
//   - [NewPNG] and [NewPDF]: the SVG converted by rsvg-convert
//   - [NewJSON]: the collections themselves, for downstream renderers
//
// Collections are painted in ascending z-order; collections sharing a layer
// keep the order in which they were built. Plot coordinates are fitted into
// the canvas preserving aspect ratio, with the y axis pointing up.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG using the external
// rsvg-convert tool (from librsvg).
//
//	svg, err := render.NewSVG().Render(ctx, cs, render.DefaultCanvas())
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// # Colors
//
// Colors are CSS colors. The single-letter codes b, g, r, c, m, y, k and w
// are accepted as well and resolved by [ResolveColor].
package render
