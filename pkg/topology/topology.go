// Package topology builds the undirected connectivity graph of a network.
//
// Vertices are buses. Edges are lines, transformers and bus-bus switches.
// Whether switch states count is controlled by [Options.RespectSwitches]:
//
//   - false: every bus-bus switch connects its buses regardless of state;
//     line and trafo switches are ignored.
//   - true: a bus-bus switch connects only when closed, and a line or trafo
//     behind an open switch is dropped, so isolated islands become separate
//     components.
//
// The graph is built fresh per call and is never stored on the network.
package topology

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/matzehuels/netplot/pkg/network"
)

// Options controls how switches are interpreted.
type Options struct {
	RespectSwitches bool
}

// Graph is an undirected simple graph stored as an adjacency list keyed by
// bus ID. Parallel edges collapse and self loops are dropped.
type Graph struct {
	adj   map[int]map[int]struct{}
	edges int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{adj: make(map[int]map[int]struct{})}
}

// AddNode inserts a vertex. Adding an existing vertex is a no-op.
func (g *Graph) AddNode(id int) {
	if _, ok := g.adj[id]; !ok {
		g.adj[id] = make(map[int]struct{})
	}
}

// AddEdge connects a and b, inserting missing vertices.
func (g *Graph) AddEdge(a, b int) {
	g.AddNode(a)
	g.AddNode(b)
	if a == b {
		return
	}
	if _, ok := g.adj[a][b]; ok {
		return
	}
	g.adj[a][b] = struct{}{}
	g.adj[b][a] = struct{}{}
	g.edges++
}

// HasEdge reports whether a and b are adjacent.
func (g *Graph) HasEdge(a, b int) bool {
	_, ok := g.adj[a][b]
	return ok
}

// NodeCount returns the number of vertices.
func (g *Graph) NodeCount() int { return len(g.adj) }

// EdgeCount returns the number of distinct undirected edges.
func (g *Graph) EdgeCount() int { return g.edges }

// Nodes returns all vertex IDs in ascending order.
func (g *Graph) Nodes() []int {
	ids := make([]int, 0, len(g.adj))
	for id := range g.adj {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Neighbors returns the vertices adjacent to id in ascending order.
func (g *Graph) Neighbors(id int) []int {
	nb := make([]int, 0, len(g.adj[id]))
	for n := range g.adj[id] {
		nb = append(nb, n)
	}
	slices.Sort(nb)
	return nb
}

// Edges returns every edge once as (low, high) pairs, sorted.
func (g *Graph) Edges() [][2]int {
	out := make([][2]int, 0, g.edges)
	for _, a := range g.Nodes() {
		for _, b := range g.Neighbors(a) {
			if a < b {
				out = append(out, [2]int{a, b})
			}
		}
	}
	return out
}

// Components returns the connected components found by breadth-first search.
// Each component is sorted ascending; components are ordered by size
// (largest first) and then by their smallest bus ID.
func (g *Graph) Components() [][]int {
	seen := make(map[int]bool, len(g.adj))
	var comps [][]int
	for _, start := range g.Nodes() {
		if seen[start] {
			continue
		}
		seen[start] = true
		comp := []int{start}
		queue := []int{start}
		for len(queue) > 0 {
			curr := queue[0]
			queue = queue[1:]
			for _, n := range g.Neighbors(curr) {
				if !seen[n] {
					seen[n] = true
					comp = append(comp, n)
					queue = append(queue, n)
				}
			}
		}
		slices.Sort(comp)
		comps = append(comps, comp)
	}
	slices.SortStableFunc(comps, func(a, b []int) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return a[0] - b[0]
	})
	return comps
}

// Subgraph returns the graph induced by ids.
func (g *Graph) Subgraph(ids []int) *Graph {
	sub := New()
	keep := make(map[int]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
		sub.AddNode(id)
	}
	for _, id := range ids {
		for n := range g.adj[id] {
			if keep[n] {
				sub.AddEdge(id, n)
			}
		}
	}
	return sub
}

// Hash returns a stable SHA-256 over the sorted vertices and edges.
// Two graphs with the same connectivity hash identically.
func (g *Graph) Hash() string {
	h := sha256.New()
	var buf [8]byte
	write := func(v int) {
		binary.BigEndian.PutUint64(buf[:], uint64(int64(v)))
		h.Write(buf[:])
	}
	nodes := g.Nodes()
	write(len(nodes))
	for _, id := range nodes {
		write(id)
	}
	for _, e := range g.Edges() {
		write(e[0])
		write(e[1])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Build creates the connectivity graph of n. Every bus becomes a vertex,
// including isolated ones. References to missing buses, lines or trafos
// propagate the network's lookup errors.
func Build(n *network.Network, opts Options) (*Graph, error) {
	g := New()
	for _, b := range n.Buses {
		g.AddNode(b.ID)
	}
	connect := func(a, b int) error {
		for _, id := range []int{a, b} {
			if _, ok := g.adj[id]; !ok {
				_, err := n.BusByID(id)
				return err
			}
		}
		g.AddEdge(a, b)
		return nil
	}

	openLines := map[int]bool{}
	openTrafos := map[int]bool{}
	if opts.RespectSwitches {
		for _, s := range n.Switches {
			if s.Closed {
				continue
			}
			switch s.ElementType {
			case network.SwitchLine:
				openLines[s.Element] = true
			case network.SwitchTrafo:
				openTrafos[s.Element] = true
			}
		}
	}

	for _, l := range n.Lines {
		if openLines[l.ID] {
			continue
		}
		if err := connect(l.FromBus, l.ToBus); err != nil {
			return nil, fmt.Errorf("line %d: %w", l.ID, err)
		}
	}

	for _, t := range n.Trafos {
		if openTrafos[t.ID] {
			continue
		}
		if err := connect(t.HVBus, t.LVBus); err != nil {
			return nil, fmt.Errorf("trafo %d: %w", t.ID, err)
		}
	}

	for _, s := range n.Switches {
		if s.ElementType != network.SwitchBus {
			continue
		}
		if opts.RespectSwitches && !s.Closed {
			continue
		}
		if err := connect(s.Bus, s.Element); err != nil {
			return nil, fmt.Errorf("switch %d: %w", s.ID, err)
		}
	}

	return g, nil
}
