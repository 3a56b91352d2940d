// Package collections converts network elements with coordinates into
// drawable primitive groups.
//
// Each builder returns one [Collection] per element category: circle or
// rectangle markers for buses and ext grids, polylines for lines and a
// two-circle glyph for transformers. Elements lacking coordinates are left
// out rather than reported, and an empty category yields a nil collection
// so callers can skip it. Buses and lines can be asked to keep an empty
// collection instead, for callers that always draw both.
//
// Collections carry resolved sizes in plot units; computing those from
// relative settings is the job of package scale.
package collections
