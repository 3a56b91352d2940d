package geodata

import (
	"math"

	"github.com/matzehuels/netplot/pkg/network"
)

type box struct {
	pos  map[int]network.Coordinate
	minX float64
	minY float64
	w, h float64
}

func newBox(pos map[int]network.Coordinate) box {
	b := box{pos: pos}
	first := true
	var maxX, maxY float64
	for _, c := range pos {
		if first {
			b.minX, maxX, b.minY, maxY = c.X, c.X, c.Y, c.Y
			first = false
			continue
		}
		b.minX = math.Min(b.minX, c.X)
		b.minY = math.Min(b.minY, c.Y)
		maxX = math.Max(maxX, c.X)
		maxY = math.Max(maxY, c.Y)
	}
	b.w, b.h = maxX-b.minX, maxY-b.minY

	// Degenerate extents (a single bus, a straight line) are widened to 1
	// and the layout is centred in the widened box.
	if b.w < 1 {
		b.minX -= (1 - b.w) / 2
		b.w = 1
	}
	if b.h < 1 {
		b.minY -= (1 - b.h) / 2
		b.h = 1
	}
	return b
}

// pack places component layouts into disjoint boxes using shelf packing.
// Layouts must be ordered largest first; rows are filled left to right and
// stack downwards, with gap between neighbouring boxes.
func pack(layouts []map[int]network.Coordinate, gap float64) map[int]network.Coordinate {
	out := make(map[int]network.Coordinate)
	if len(layouts) == 0 {
		return out
	}

	boxes := make([]box, len(layouts))
	var area, widest float64
	for i, l := range layouts {
		boxes[i] = newBox(l)
		area += (boxes[i].w + gap) * (boxes[i].h + gap)
		widest = math.Max(widest, boxes[i].w)
	}
	rowWidth := math.Max(widest, math.Sqrt(area))

	var x, y, rowH float64
	for _, b := range boxes {
		if x > 0 && x+b.w > rowWidth {
			y += rowH + gap
			x, rowH = 0, 0
		}
		// Box spans [x, x+w] horizontally and [-(y+h), -y] vertically.
		offX := x - b.minX
		offY := -(y + b.h) - b.minY
		for id, c := range b.pos {
			out[id] = network.Coordinate{X: c.X + offX, Y: c.Y + offY}
		}
		x += b.w + gap
		rowH = math.Max(rowH, b.h)
	}
	return out
}
