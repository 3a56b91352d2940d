package geodata

import (
	"math"

	"github.com/matzehuels/netplot/pkg/network"
	"github.com/matzehuels/netplot/pkg/topology"
)

// springLayout runs a deterministic Fruchterman-Reingold simulation with an
// ideal edge length of 1. Vertices start on a circle in ascending ID order
// and the temperature cools linearly to zero.
func springLayout(g *topology.Graph, iterations int) map[int]network.Coordinate {
	ids := g.Nodes()
	n := len(ids)
	out := make(map[int]network.Coordinate, n)
	if n == 0 {
		return out
	}
	if n == 1 {
		out[ids[0]] = network.Coordinate{}
		return out
	}

	index := make(map[int]int, n)
	for i, id := range ids {
		index[id] = i
	}
	edges := g.Edges()

	const k = 1.0
	side := math.Sqrt(float64(n))
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range ids {
		a := 2 * math.Pi * float64(i) / float64(n)
		xs[i] = side / 2 * math.Cos(a)
		ys[i] = side / 2 * math.Sin(a)
	}

	dx := make([]float64, n)
	dy := make([]float64, n)
	t0 := math.Max(side/10, 0.1)

	for it := 0; it < iterations; it++ {
		clear(dx)
		clear(dy)

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				ddx, ddy, d := separation(xs[i]-xs[j], ys[i]-ys[j], i, j)
				f := k * k / d
				dx[i] += ddx / d * f
				dy[i] += ddy / d * f
				dx[j] -= ddx / d * f
				dy[j] -= ddy / d * f
			}
		}

		for _, e := range edges {
			a, b := index[e[0]], index[e[1]]
			ddx, ddy, d := separation(xs[a]-xs[b], ys[a]-ys[b], a, b)
			f := d * d / k
			dx[a] -= ddx / d * f
			dy[a] -= ddy / d * f
			dx[b] += ddx / d * f
			dy[b] += ddy / d * f
		}

		t := t0 * (1 - float64(it)/float64(iterations))
		for i := 0; i < n; i++ {
			l := math.Hypot(dx[i], dy[i])
			if l == 0 {
				continue
			}
			step := math.Min(l, t)
			xs[i] += dx[i] / l * step
			ys[i] += dy[i] / l * step
		}
	}

	for i, id := range ids {
		out[id] = network.Coordinate{X: xs[i], Y: ys[i]}
	}
	return out
}

// separation returns the displacement between two vertices and its length.
// Coincident vertices get a small deterministic offset so forces stay finite.
func separation(ddx, ddy float64, i, j int) (float64, float64, float64) {
	d := math.Hypot(ddx, ddy)
	if d > 1e-9 {
		return ddx, ddy, d
	}
	a := float64(i*31+j*17) * 0.618
	ddx, ddy = 1e-3*math.Cos(a), 1e-3*math.Sin(a)
	return ddx, ddy, math.Hypot(ddx, ddy)
}
