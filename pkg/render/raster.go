package render

import (
	"context"

	"github.com/matzehuels/netplot/pkg/collections"
)

// DefaultPNGScale renders PNGs at 2x resolution.
const DefaultPNGScale = 2.0

type pngRenderer struct {
	svg   Renderer
	scale float64
}

// NewPNG returns a renderer that draws SVG and converts it to PNG.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func NewPNG(scale float64, opts ...SVGOption) Renderer {
	return &pngRenderer{svg: NewSVG(opts...), scale: scale}
}

func (r *pngRenderer) Format() Format { return FormatPNG }

func (r *pngRenderer) Render(ctx context.Context, cs []*collections.Collection, c Canvas) ([]byte, error) {
	svg, err := r.svg.Render(ctx, cs, c)
	if err != nil {
		return nil, err
	}
	return ToPNG(ctx, svg, r.scale)
}

type pdfRenderer struct {
	svg Renderer
}

// NewPDF returns a renderer that draws SVG and converts it to PDF.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func NewPDF(opts ...SVGOption) Renderer {
	return &pdfRenderer{svg: NewSVG(opts...)}
}

func (r *pdfRenderer) Format() Format { return FormatPDF }

func (r *pdfRenderer) Render(ctx context.Context, cs []*collections.Collection, c Canvas) ([]byte, error) {
	svg, err := r.svg.Render(ctx, cs, c)
	if err != nil {
		return nil, err
	}
	return ToPDF(ctx, svg)
}
