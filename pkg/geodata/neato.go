package geodata

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/netplot/pkg/network"
	"github.com/matzehuels/netplot/pkg/topology"
)

// toDOT writes g as an undirected DOT graph for neato. Node names are bus
// IDs; the fixed start seed keeps repeated layouts identical.
func toDOT(g *topology.Graph) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  start=1;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  node [shape=point];\n")
	buf.WriteString("  edge [len=1];\n")
	buf.WriteString("\n")

	for _, id := range g.Nodes() {
		fmt.Fprintf(&buf, "  \"%d\";\n", id)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  \"%d\" -- \"%d\";\n", e[0], e[1])
	}

	buf.WriteString("}\n")
	return buf.String()
}

// neatoLayout lays out one component with Graphviz neato and reads node
// positions back from the "plain" output format. Positions are in inches,
// which matches the unit edge length requested in the DOT source.
func neatoLayout(ctx context.Context, g *topology.Graph) (map[int]network.Coordinate, error) {
	if g.NodeCount() == 1 {
		return map[int]network.Coordinate{g.Nodes()[0]: {}}, nil
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	graph, err := graphviz.ParseBytes([]byte(toDOT(g)))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer graph.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.Format("plain"), &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	pos, err := parsePlain(buf.Bytes())
	if err != nil {
		return nil, err
	}
	for _, id := range g.Nodes() {
		if _, ok := pos[id]; !ok {
			return nil, fmt.Errorf("neato output lacks bus %d", id)
		}
	}
	return pos, nil
}

// parsePlain extracts "node <name> <x> <y> ..." records from Graphviz plain
// output. Other records are skipped.
func parsePlain(data []byte) (map[int]network.Coordinate, error) {
	pos := make(map[int]network.Coordinate)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 || fields[0] != "node" {
			continue
		}
		id, err := strconv.Atoi(strings.Trim(fields[1], `"`))
		if err != nil {
			return nil, fmt.Errorf("plain output: node name %q: %w", fields[1], err)
		}
		x, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("plain output: node %d x: %w", id, err)
		}
		y, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("plain output: node %d y: %w", id, err)
		}
		pos[id] = network.Coordinate{X: x, Y: y}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("plain output: %w", err)
	}
	return pos, nil
}
