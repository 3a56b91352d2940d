package render

import "strings"

// Palette holds one color per element category.
type Palette struct {
	Bus     string `json:"bus" toml:"bus"`
	Line    string `json:"line" toml:"line"`
	Trafo   string `json:"trafo" toml:"trafo"`
	ExtGrid string `json:"ext_grid" toml:"ext_grid"`
}

// DefaultPalette returns the standard colors: blue buses, grey lines,
// green transformers and olive ext grid markers.
func DefaultPalette() Palette {
	return Palette{
		Bus:     "#1f77b4",
		Line:    "grey",
		Trafo:   "green",
		ExtGrid: "#bfbf00",
	}
}

// Merge returns p with empty entries taken from base.
func (p Palette) Merge(base Palette) Palette {
	if p.Bus == "" {
		p.Bus = base.Bus
	}
	if p.Line == "" {
		p.Line = base.Line
	}
	if p.Trafo == "" {
		p.Trafo = base.Trafo
	}
	if p.ExtGrid == "" {
		p.ExtGrid = base.ExtGrid
	}
	return p
}

var colorCodes = map[string]string{
	"b": "#0000ff",
	"g": "#008000",
	"r": "#ff0000",
	"c": "#00bfbf",
	"m": "#bf00bf",
	"y": "#bfbf00",
	"k": "#000000",
	"w": "#ffffff",
}

// ResolveColor maps single-letter color codes to CSS colors. Any other
// value is returned trimmed; the empty string becomes black.
func ResolveColor(c string) string {
	c = strings.TrimSpace(c)
	if c == "" {
		return "#000000"
	}
	if css, ok := colorCodes[c]; ok {
		return css
	}
	return c
}
