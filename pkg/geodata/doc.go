// Package geodata synthesizes schematic bus coordinates for networks that
// carry no geographic data.
//
// # Overview
//
// [Synthesize] derives the connectivity graph with [topology.Build], lays
// out each connected component on its own and packs the components into
// disjoint regions so that islands never overlap. It never mutates the
// network; [Apply] merges a [Result] into buses lacking a coordinate and
// [Generate] does both.
//
// # Engines
//
// Two engines are available:
//
//   - [EngineSpring]: a deterministic Fruchterman-Reingold simulation with
//     unit ideal edge length. Same network and options, same coordinates.
//   - [EngineNeato]: Graphviz neato via go-graphviz (WebAssembly, no system
//     install required), seeded for repeatable output.
//
// # Switches
//
// With [Options.RespectSwitches] set, open switches disconnect their
// elements, so an island fed through an open coupler is laid out apart
// from the main grid.
//
// [topology.Build]: github.com/matzehuels/netplot/pkg/topology.Build
package geodata
