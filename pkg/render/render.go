package render

import (
	"context"
	"strings"

	"github.com/matzehuels/netplot/pkg/collections"
	"github.com/matzehuels/netplot/pkg/errors"
)

// Format is an output encoding.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatPDF  Format = "pdf"
	FormatJSON Format = "json"
)

// ValidFormats lists the supported output formats.
var ValidFormats = map[Format]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ParseFormat converts a user-supplied format name. The empty string maps
// to SVG.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	if f == "" {
		return FormatSVG, nil
	}
	if !ValidFormats[f] {
		return "", errors.New(errors.ErrCodeInvalidFormat, "invalid format %q (must be svg, png, pdf or json)", s)
	}
	return f, nil
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	case FormatJSON:
		return "application/json"
	default:
		return "image/svg+xml"
	}
}

// Ext returns the file extension of f without the dot.
func (f Format) Ext() string {
	if f == "" {
		return string(FormatSVG)
	}
	return string(f)
}

// Canvas describes the output surface.
type Canvas struct {
	Width      int    `json:"width" toml:"width"`
	Margin     int    `json:"margin" toml:"margin"`
	Background string `json:"background,omitempty" toml:"background"`
	Title      string `json:"title,omitempty" toml:"title"`
}

const (
	DefaultWidth  = 800
	DefaultMargin = 20

	// MaxWidth bounds the canvas width; PNG and PDF allocate per pixel.
	MaxWidth = 10000
)

// DefaultCanvas returns an 800 px wide canvas with a 20 px margin on white.
func DefaultCanvas() Canvas {
	return Canvas{Width: DefaultWidth, Margin: DefaultMargin, Background: "white"}
}

// WithDefaults fills zero fields of c.
func (c Canvas) WithDefaults() Canvas {
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Margin < 0 {
		c.Margin = 0
	}
	if 2*c.Margin >= c.Width {
		c.Margin = DefaultMargin
		if 2*c.Margin >= c.Width {
			c.Margin = 0
		}
	}
	return c
}

// Renderer turns collections into an encoded canvas.
type Renderer interface {
	Format() Format
	Render(ctx context.Context, cs []*collections.Collection, c Canvas) ([]byte, error)
}

// New returns the renderer for f. SVG options apply to every format drawn
// through SVG.
func New(f Format, opts ...SVGOption) (Renderer, error) {
	switch f {
	case FormatSVG, "":
		return NewSVG(opts...), nil
	case FormatPNG:
		return NewPNG(DefaultPNGScale, opts...), nil
	case FormatPDF:
		return NewPDF(opts...), nil
	case FormatJSON:
		return NewJSON(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format %q", f)
	}
}
