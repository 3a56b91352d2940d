package collections

import (
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/netplot/pkg/network"
)

// Category names the element class a collection draws.
type Category string

const (
	CategoryBus     Category = "bus"
	CategoryLine    Category = "line"
	CategoryTrafo   Category = "trafo"
	CategoryExtGrid Category = "ext_grid"
)

// Shape is the drawing primitive of a collection.
type Shape string

const (
	ShapeCircle Shape = "circle"
	ShapeRect   Shape = "rect"
	ShapePath   Shape = "path"
	ShapeTrafo  Shape = "trafo"
)

// Default drawing order. Higher values are drawn on top.
const (
	ZOrderLines   = 1
	ZOrderTrafos  = 2
	ZOrderBuses   = 10
	ZOrderExtGrid = 11
)

// Marker is a point symbol at a bus position.
type Marker struct {
	ID     int                `json:"id"`
	Center network.Coordinate `json:"center"`
}

// Path is a polyline with at least two points.
type Path struct {
	ID     int                  `json:"id"`
	Points []network.Coordinate `json:"points"`
}

// Glyph is a transformer symbol: two overlapping circles around the
// midpoint of its buses and connectors from each bus to its circle.
type Glyph struct {
	ID         int                   `json:"id"`
	Centers    [2]network.Coordinate `json:"centers"`
	Radius     float64               `json:"radius"`
	Connectors [2]Path               `json:"connectors"`
}

// Collection is a homogeneous group of drawable primitives for one element
// category. Size is a marker radius in plot units; LineWidth is a stroke
// width in canvas pixels.
type Collection struct {
	Category  Category `json:"category"`
	IDs       []int    `json:"ids"`
	Shape     Shape    `json:"shape"`
	Size      float64  `json:"size,omitempty"`
	Color     string   `json:"color"`
	ZOrder    int      `json:"zorder"`
	LineWidth float64  `json:"line_width,omitempty"`
	Markers   []Marker `json:"markers,omitempty"`
	Paths     []Path   `json:"paths,omitempty"`
	Glyphs    []Glyph  `json:"glyphs,omitempty"`
}

// Len returns the number of primitives in c.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Markers) + len(c.Paths) + len(c.Glyphs)
}

// BusOptions configures [Buses].
type BusOptions struct {
	Category Category // default CategoryBus
	Shape    Shape    // default ShapeCircle
	Size     float64
	Color    string
	ZOrder   int

	// KeepEmpty returns an empty collection instead of nil when no bus
	// has a coordinate.
	KeepEmpty bool
}

// Buses builds one marker per listed bus that has a coordinate. Buses
// without a coordinate are skipped. It returns nil when no marker remains,
// unless KeepEmpty is set, and wraps [network.ErrUnknownBus] for IDs missing
// from the bus table.
func Buses(net *network.Network, ids []int, opts BusOptions) (*Collection, error) {
	if opts.Category == "" {
		opts.Category = CategoryBus
	}
	if opts.Shape == "" {
		opts.Shape = ShapeCircle
	}

	c := &Collection{
		Category: opts.Category,
		Shape:    opts.Shape,
		Size:     opts.Size,
		Color:    opts.Color,
		ZOrder:   opts.ZOrder,
	}
	for _, id := range ids {
		pos, ok, err := net.BusCoordinate(id)
		if err != nil {
			return nil, fmt.Errorf("%s collection: %w", opts.Category, err)
		}
		if !ok {
			continue
		}
		c.IDs = append(c.IDs, id)
		c.Markers = append(c.Markers, Marker{ID: id, Center: pos})
	}
	if len(c.Markers) == 0 {
		if !opts.KeepEmpty {
			return nil, nil
		}
		c.IDs = []int{}
	}
	return c, nil
}

// LineOptions configures [Lines].
type LineOptions struct {
	Color  string
	Width  float64
	ZOrder int

	// UseGeodata selects stored line paths for the whole collection. When
	// false, lines are drawn as straight segments between their buses.
	UseGeodata bool

	// KeepEmpty returns an empty collection instead of nil when no path
	// remains.
	KeepEmpty bool
}

// Lines builds one path per listed line. With UseGeodata, lines without a
// stored path of at least two points are skipped; otherwise lines whose
// buses lack coordinates are skipped. It returns nil when no path remains
// unless KeepEmpty is set.
func Lines(net *network.Network, ids []int, opts LineOptions) (*Collection, error) {
	c := &Collection{
		Category:  CategoryLine,
		Shape:     ShapePath,
		Color:     opts.Color,
		ZOrder:    opts.ZOrder,
		LineWidth: opts.Width,
	}
	for _, id := range ids {
		l, err := net.LineByID(id)
		if err != nil {
			return nil, fmt.Errorf("line collection: %w", err)
		}

		var pts []network.Coordinate
		if opts.UseGeodata {
			if len(l.Geo) < 2 {
				continue
			}
			pts = slices.Clone(l.Geo)
		} else {
			from, okFrom, err := net.BusCoordinate(l.FromBus)
			if err != nil {
				return nil, fmt.Errorf("line collection: line %d: %w", id, err)
			}
			to, okTo, err := net.BusCoordinate(l.ToBus)
			if err != nil {
				return nil, fmt.Errorf("line collection: line %d: %w", id, err)
			}
			if !okFrom || !okTo {
				continue
			}
			pts = []network.Coordinate{from, to}
		}
		c.IDs = append(c.IDs, id)
		c.Paths = append(c.Paths, Path{ID: id, Points: pts})
	}
	if len(c.Paths) == 0 {
		if !opts.KeepEmpty {
			return nil, nil
		}
		c.IDs = []int{}
	}
	return c, nil
}

// TrafoOptions configures [Trafos].
type TrafoOptions struct {
	Color  string
	Size   float64 // circle radius
	Width  float64
	ZOrder int
}

// Trafos builds one glyph per listed trafo whose HV and LV buses both have
// coordinates. It returns nil when no glyph remains.
func Trafos(net *network.Network, ids []int, opts TrafoOptions) (*Collection, error) {
	c := &Collection{
		Category:  CategoryTrafo,
		Shape:     ShapeTrafo,
		Size:      opts.Size,
		Color:     opts.Color,
		ZOrder:    opts.ZOrder,
		LineWidth: opts.Width,
	}
	for _, id := range ids {
		t, err := net.TrafoByID(id)
		if err != nil {
			return nil, fmt.Errorf("trafo collection: %w", err)
		}
		hv, okHV, err := net.BusCoordinate(t.HVBus)
		if err != nil {
			return nil, fmt.Errorf("trafo collection: trafo %d: %w", id, err)
		}
		lv, okLV, err := net.BusCoordinate(t.LVBus)
		if err != nil {
			return nil, fmt.Errorf("trafo collection: trafo %d: %w", id, err)
		}
		if !okHV || !okLV {
			continue
		}
		c.IDs = append(c.IDs, id)
		c.Glyphs = append(c.Glyphs, trafoGlyph(id, hv, lv, opts.Size))
	}
	if len(c.Glyphs) == 0 {
		return nil, nil
	}
	return c, nil
}

// trafoGlyph places two circles of radius r along the HV-LV axis so they
// overlap by half a radius around the midpoint.
func trafoGlyph(id int, hv, lv network.Coordinate, r float64) Glyph {
	dx, dy := lv.X-hv.X, lv.Y-hv.Y
	d := math.Hypot(dx, dy)
	if d == 0 {
		dx, dy, d = 1, 0, 1
	}
	ux, uy := dx/d, dy/d
	mid := network.Coordinate{X: (hv.X + lv.X) / 2, Y: (hv.Y + lv.Y) / 2}

	off := 0.75 * r
	c0 := network.Coordinate{X: mid.X - ux*off, Y: mid.Y - uy*off}
	c1 := network.Coordinate{X: mid.X + ux*off, Y: mid.Y + uy*off}
	edge0 := network.Coordinate{X: c0.X - ux*r, Y: c0.Y - uy*r}
	edge1 := network.Coordinate{X: c1.X + ux*r, Y: c1.Y + uy*r}

	return Glyph{
		ID:      id,
		Centers: [2]network.Coordinate{c0, c1},
		Radius:  r,
		Connectors: [2]Path{
			{ID: id, Points: []network.Coordinate{hv, edge0}},
			{ID: id, Points: []network.Coordinate{edge1, lv}},
		},
	}
}

// ExtGridBuses returns the sorted, de-duplicated IDs of buses that carry an
// external grid and have a coordinate. References to missing buses are
// ignored here; they surface when the bus collection is built.
func ExtGridBuses(net *network.Network) []int {
	var ids []int
	for _, eg := range net.ExtGrids {
		if _, ok, err := net.BusCoordinate(eg.Bus); err == nil && ok {
			ids = append(ids, eg.Bus)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// TrafosWithCoordinates returns the sorted IDs of trafos whose HV and LV
// buses both have coordinates.
func TrafosWithCoordinates(net *network.Network) []int {
	var ids []int
	for _, t := range net.Trafos {
		_, okHV, errHV := net.BusCoordinate(t.HVBus)
		_, okLV, errLV := net.BusCoordinate(t.LVBus)
		if errHV == nil && errLV == nil && okHV && okLV {
			ids = append(ids, t.ID)
		}
	}
	slices.Sort(ids)
	return ids
}

// SortByZOrder stably orders cs by ascending ZOrder, so equal layers keep
// their build order.
func SortByZOrder(cs []*Collection) {
	slices.SortStableFunc(cs, func(a, b *Collection) int { return a.ZOrder - b.ZOrder })
}
