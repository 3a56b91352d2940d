package render

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"slices"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/netplot/pkg/collections"
	"github.com/matzehuels/netplot/pkg/network"
)

// SVGOption configures the SVG renderer.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	elementIDs  bool
	markerAlpha float64
}

// WithElementIDs tags every primitive with an id attribute such as
// "bus-3" so the output can be scripted.
func WithElementIDs() SVGOption { return func(r *svgRenderer) { r.elementIDs = true } }

// WithMarkerOpacity sets the fill opacity of bus and ext grid markers.
func WithMarkerOpacity(a float64) SVGOption {
	return func(r *svgRenderer) { r.markerAlpha = math.Max(0, math.Min(1, a)) }
}

// NewSVG returns an SVG renderer.
func NewSVG(opts ...SVGOption) Renderer {
	r := svgRenderer{markerAlpha: 1}
	for _, opt := range opts {
		opt(&r)
	}
	return &r
}

func (r *svgRenderer) Format() Format { return FormatSVG }

func (r *svgRenderer) Render(ctx context.Context, cs []*collections.Collection, c Canvas) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c = c.WithDefaults()

	ordered := slices.DeleteFunc(slices.Clone(cs), func(c *collections.Collection) bool { return c == nil })
	collections.SortByZOrder(ordered)

	p := fit(bounds(ordered), c)

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(p.width, p.height)
	if c.Title != "" {
		canvas.Title(c.Title)
	}
	if c.Background != "" && c.Background != "none" {
		canvas.Rect(0, 0, p.width, p.height, "fill:"+ResolveColor(c.Background))
	}

	for _, col := range ordered {
		canvas.Gid(string(col.Category))
		switch {
		case len(col.Markers) > 0:
			r.drawMarkers(canvas, p, col)
		case len(col.Paths) > 0:
			r.drawPaths(canvas, p, col)
		case len(col.Glyphs) > 0:
			r.drawGlyphs(canvas, p, col)
		}
		canvas.Gend()
	}

	canvas.End()
	return buf.Bytes(), nil
}

func (r *svgRenderer) attrs(cat collections.Category, id int, style string) []string {
	if !r.elementIDs {
		return []string{style}
	}
	return []string{style, fmt.Sprintf(`id="%s-%d"`, cat, id)}
}

func (r *svgRenderer) drawMarkers(canvas *svg.SVG, p projection, col *collections.Collection) {
	style := fmt.Sprintf("fill:%s;fill-opacity:%.2f;stroke:none", ResolveColor(col.Color), r.markerAlpha)
	rad := p.length(col.Size)
	for _, m := range col.Markers {
		x, y := p.point(m.Center)
		switch col.Shape {
		case collections.ShapeRect:
			canvas.Rect(x-rad, y-rad, 2*rad, 2*rad, r.attrs(col.Category, m.ID, style)...)
		default:
			canvas.Circle(x, y, rad, r.attrs(col.Category, m.ID, style)...)
		}
	}
}

func (r *svgRenderer) drawPaths(canvas *svg.SVG, p projection, col *collections.Collection) {
	style := strokeStyle(col)
	for _, path := range col.Paths {
		xs, ys := p.points(path.Points)
		canvas.Polyline(xs, ys, r.attrs(col.Category, path.ID, style)...)
	}
}

func (r *svgRenderer) drawGlyphs(canvas *svg.SVG, p projection, col *collections.Collection) {
	style := strokeStyle(col)
	for _, g := range col.Glyphs {
		canvas.Gid(fmt.Sprintf("%s-%d", col.Category, g.ID))
		for _, conn := range g.Connectors {
			xs, ys := p.points(conn.Points)
			canvas.Polyline(xs, ys, style)
		}
		rad := p.length(g.Radius)
		for _, ctr := range g.Centers {
			x, y := p.point(ctr)
			canvas.Circle(x, y, rad, style)
		}
		canvas.Gend()
	}
}

func strokeStyle(col *collections.Collection) string {
	w := col.LineWidth
	if w <= 0 {
		w = 1
	}
	return fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.2f;stroke-linecap:round;stroke-linejoin:round", ResolveColor(col.Color), w)
}

// =============================================================================
// Projection
// =============================================================================

type bbox struct {
	minX, minY, maxX, maxY float64
	empty                  bool
}

func (b *bbox) add(c network.Coordinate, pad float64) {
	if b.empty {
		*b = bbox{minX: c.X - pad, minY: c.Y - pad, maxX: c.X + pad, maxY: c.Y + pad}
		return
	}
	b.minX = math.Min(b.minX, c.X-pad)
	b.minY = math.Min(b.minY, c.Y-pad)
	b.maxX = math.Max(b.maxX, c.X+pad)
	b.maxY = math.Max(b.maxY, c.Y+pad)
}

// bounds returns the extent of everything drawn, markers and glyph circles
// included.
func bounds(cs []*collections.Collection) bbox {
	b := bbox{empty: true}
	for _, c := range cs {
		for _, m := range c.Markers {
			b.add(m.Center, c.Size)
		}
		for _, p := range c.Paths {
			for _, pt := range p.Points {
				b.add(pt, 0)
			}
		}
		for _, g := range c.Glyphs {
			for _, ctr := range g.Centers {
				b.add(ctr, g.Radius)
			}
			for _, conn := range g.Connectors {
				for _, pt := range conn.Points {
					b.add(pt, 0)
				}
			}
		}
	}
	return b
}

// projection maps plot coordinates to integer canvas pixels, flipping y.
type projection struct {
	b             bbox
	scale         float64
	margin        int
	width, height int
}

func fit(b bbox, c Canvas) projection {
	inner := float64(c.Width - 2*c.Margin)
	if b.empty {
		return projection{b: bbox{}, scale: 1, margin: c.Margin, width: c.Width, height: c.Width}
	}

	span := math.Max(b.maxX-b.minX, b.maxY-b.minY)
	if span <= 0 {
		// Everything sits on one point: centre it.
		half := inner / 2
		b = bbox{minX: b.minX - half, maxX: b.maxX + half, minY: b.minY - half, maxY: b.maxY + half}
		span = inner
	}
	s := inner / span
	return projection{
		b:      b,
		scale:  s,
		margin: c.Margin,
		width:  int(math.Round((b.maxX-b.minX)*s)) + 2*c.Margin,
		height: int(math.Round((b.maxY-b.minY)*s)) + 2*c.Margin,
	}
}

func (p projection) point(c network.Coordinate) (int, int) {
	x := float64(p.margin) + (c.X-p.b.minX)*p.scale
	y := float64(p.margin) + (p.b.maxY-c.Y)*p.scale
	return int(math.Round(x)), int(math.Round(y))
}

func (p projection) points(cs []network.Coordinate) ([]int, []int) {
	xs := make([]int, len(cs))
	ys := make([]int, len(cs))
	for i, c := range cs {
		xs[i], ys[i] = p.point(c)
	}
	return xs, ys
}

// length converts a plot distance to pixels. Positive distances never
// collapse below one pixel.
func (p projection) length(d float64) int {
	if d <= 0 {
		return 0
	}
	return max(1, int(math.Round(d*p.scale)))
}
