package render

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/matzehuels/netplot/pkg/collections"
	"github.com/matzehuels/netplot/pkg/errors"
	"github.com/matzehuels/netplot/pkg/network"
)

var circleRe = regexp.MustCompile(`<circle cx="(-?\d+)" cy="(-?\d+)" r="(\d+)"`)

func sampleCollections() []*collections.Collection {
	return []*collections.Collection{
		{
			Category: collections.CategoryBus,
			IDs:      []int{0, 1},
			Shape:    collections.ShapeCircle,
			Size:     0.5,
			Color:    "b",
			ZOrder:   collections.ZOrderBuses,
			Markers: []collections.Marker{
				{ID: 0, Center: network.Coordinate{X: 0, Y: 0}},
				{ID: 1, Center: network.Coordinate{X: 10, Y: 5}},
			},
		},
		nil,
		{
			Category:  collections.CategoryLine,
			IDs:       []int{0},
			Shape:     collections.ShapePath,
			Color:     "grey",
			ZOrder:    collections.ZOrderLines,
			LineWidth: 1,
			Paths: []collections.Path{
				{ID: 0, Points: []network.Coordinate{{X: 0, Y: 0}, {X: 10, Y: 5}}},
			},
		},
	}
}

func TestSVGRender(t *testing.T) {
	out, err := NewSVG(WithElementIDs()).Render(context.Background(), sampleCollections(), DefaultCanvas())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	s := string(out)

	if !strings.Contains(s, "<svg") || !strings.Contains(s, "</svg>") {
		t.Fatalf("not an SVG document:\n%s", s)
	}
	if strings.Index(s, "<polyline") > strings.Index(s, "<circle") {
		t.Error("lines must be drawn before buses")
	}
	if !strings.Contains(s, `id="bus-1"`) {
		t.Error("missing element id for bus 1")
	}
	if !strings.Contains(s, "fill:#0000ff") {
		t.Error("color code b not resolved")
	}

	m := circleRe.FindAllStringSubmatch(s, -1)
	if len(m) != 2 {
		t.Fatalf("got %d circles, want 2", len(m))
	}
	y0, _ := strconv.Atoi(m[0][2])
	y1, _ := strconv.Atoi(m[1][2])
	if y1 >= y0 {
		t.Errorf("y axis not flipped: bus 0 at cy=%d, bus 1 at cy=%d", y0, y1)
	}
}

func TestSVGMarkerOpacity(t *testing.T) {
	tests := []struct {
		name string
		opts []SVGOption
		want string
	}{
		{"default", nil, "fill-opacity:1.00"},
		{"translucent", []SVGOption{WithMarkerOpacity(0.5)}, "fill-opacity:0.50"},
		{"clamped", []SVGOption{WithMarkerOpacity(3)}, "fill-opacity:1.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewSVG(tt.opts...).Render(context.Background(), sampleCollections(), DefaultCanvas())
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if !strings.Contains(string(out), tt.want) {
				t.Errorf("output lacks %q:\n%s", tt.want, out)
			}
		})
	}
}

func TestSVGRenderSizes(t *testing.T) {
	tests := []struct {
		name  string
		cs    []*collections.Collection
		wantW int
		wantH int
	}{
		{"empty", nil, 800, 800},
		{"wide", sampleCollections(), 800, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewSVG().(*svgRenderer)
			out, err := r.Render(context.Background(), tt.cs, DefaultCanvas())
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			p := fit(bounds(compact(tt.cs)), DefaultCanvas())
			if p.width != tt.wantW {
				t.Errorf("width = %d, want %d", p.width, tt.wantW)
			}
			if tt.wantH > 0 && p.height != tt.wantH {
				t.Errorf("height = %d, want %d", p.height, tt.wantH)
			}
			if p.height > p.width {
				t.Errorf("wide extent produced tall canvas %dx%d", p.width, p.height)
			}
			if !strings.Contains(string(out), `width="`+strconv.Itoa(p.width)+`"`) {
				t.Errorf("output lacks width %d", p.width)
			}
		})
	}
}

func compact(cs []*collections.Collection) []*collections.Collection {
	var out []*collections.Collection
	for _, c := range cs {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

func TestProjection(t *testing.T) {
	b := bbox{minX: 0, minY: 0, maxX: 10, maxY: 20}
	p := fit(b, Canvas{Width: 220, Margin: 10})

	if p.scale != 10 {
		t.Fatalf("scale = %v, want 10", p.scale)
	}
	if p.width != 120 || p.height != 220 {
		t.Errorf("canvas = %dx%d, want 120x220", p.width, p.height)
	}
	if x, y := p.point(network.Coordinate{X: 0, Y: 20}); x != 10 || y != 10 {
		t.Errorf("top-left = (%d, %d), want (10, 10)", x, y)
	}
	if x, y := p.point(network.Coordinate{X: 10, Y: 0}); x != 110 || y != 210 {
		t.Errorf("bottom-right = (%d, %d), want (110, 210)", x, y)
	}
	if got := p.length(0); got != 0 {
		t.Errorf("length(0) = %d, want 0", got)
	}
	if got := p.length(0.001); got != 1 {
		t.Errorf("length(0.001) = %d, want 1", got)
	}
}

func TestFitSinglePoint(t *testing.T) {
	b := bbox{}
	b.empty = true
	b.add(network.Coordinate{X: 5, Y: 5}, 0)
	p := fit(b, DefaultCanvas())
	x, y := p.point(network.Coordinate{X: 5, Y: 5})
	if x != 400 || y != 400 {
		t.Errorf("single point at (%d, %d), want centred (400, 400)", x, y)
	}
}

func TestSVGRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSVG().Render(ctx, sampleCollections(), DefaultCanvas()); err == nil {
		t.Error("expected context error")
	}
}

func TestSVGRenderTrafoAndRect(t *testing.T) {
	cs := []*collections.Collection{
		{
			Category: collections.CategoryExtGrid,
			Shape:    collections.ShapeRect,
			Size:     1,
			Color:    "y",
			ZOrder:   collections.ZOrderExtGrid,
			Markers:  []collections.Marker{{ID: 0, Center: network.Coordinate{X: 0, Y: 0}}},
		},
		{
			Category:  collections.CategoryTrafo,
			Shape:     collections.ShapeTrafo,
			Color:     "green",
			ZOrder:    collections.ZOrderTrafos,
			LineWidth: 1,
			Glyphs: []collections.Glyph{{
				ID:      3,
				Centers: [2]network.Coordinate{{X: 4, Y: 0}, {X: 6, Y: 0}},
				Radius:  1,
				Connectors: [2]collections.Path{
					{ID: 3, Points: []network.Coordinate{{X: 0, Y: 0}, {X: 3, Y: 0}}},
					{ID: 3, Points: []network.Coordinate{{X: 7, Y: 0}, {X: 10, Y: 0}}},
				},
			}},
		},
	}
	out, err := NewSVG().Render(context.Background(), cs, DefaultCanvas())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	s := string(out)
	if strings.Count(s, "<circle") != 2 {
		t.Errorf("trafo glyph should draw 2 circles:\n%s", s)
	}
	if !strings.Contains(s, `id="trafo-3"`) {
		t.Error("glyph group id missing")
	}
	if strings.Index(s, `id="trafo"`) > strings.Index(s, `id="ext_grid"`) {
		t.Error("trafos must be drawn before ext grid markers")
	}
	if !strings.Contains(s, "<rect") || !strings.Contains(s, "fill:#bfbf00") {
		t.Error("ext grid marker not drawn as rect in #bfbf00")
	}
}

func TestJSONRender(t *testing.T) {
	out, err := NewJSON().Render(context.Background(), sampleCollections(), Canvas{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	var got jsonOutput
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Canvas.Width != DefaultWidth {
		t.Errorf("canvas width = %d, want %d", got.Canvas.Width, DefaultWidth)
	}
	if len(got.Collections) != 2 {
		t.Fatalf("got %d collections, want 2", len(got.Collections))
	}
	if got.Collections[0].Category != collections.CategoryLine {
		t.Errorf("first collection = %s, want line", got.Collections[0].Category)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatSVG, false},
		{"svg", FormatSVG, false},
		{".PNG", FormatPNG, false},
		{"pdf", FormatPDF, false},
		{"json", FormatJSON, false},
		{"gif", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("code = %s, want INVALID_FORMAT", errors.GetCode(err))
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	for f := range ValidFormats {
		r, err := New(f)
		if err != nil {
			t.Fatalf("New(%s): %v", f, err)
		}
		if r.Format() != f {
			t.Errorf("New(%s).Format() = %s", f, r.Format())
		}
	}
	if _, err := New("bmp"); err == nil {
		t.Error("expected error for bmp")
	}
}

func TestFormatContentType(t *testing.T) {
	tests := map[Format]string{
		FormatSVG:  "image/svg+xml",
		FormatPNG:  "image/png",
		FormatPDF:  "application/pdf",
		FormatJSON: "application/json",
	}
	for f, want := range tests {
		if got := f.ContentType(); got != want {
			t.Errorf("%s.ContentType() = %q, want %q", f, got, want)
		}
	}
}

func TestResolveColor(t *testing.T) {
	tests := []struct{ in, want string }{
		{"b", "#0000ff"},
		{"y", "#bfbf00"},
		{" grey ", "grey"},
		{"#1f77b4", "#1f77b4"},
		{"", "#000000"},
	}
	for _, tt := range tests {
		if got := ResolveColor(tt.in); got != tt.want {
			t.Errorf("ResolveColor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPaletteMerge(t *testing.T) {
	p := Palette{Bus: "r"}.Merge(DefaultPalette())
	if p.Bus != "r" || p.Line != "grey" || p.ExtGrid != "#bfbf00" {
		t.Errorf("Merge = %+v", p)
	}
}

func TestToPNG(t *testing.T) {
	if !HasConverter() {
		t.Skip("rsvg-convert not installed")
	}
	svg, err := NewSVG().Render(context.Background(), sampleCollections(), DefaultCanvas())
	if err != nil {
		t.Fatal(err)
	}
	png, err := ToPNG(context.Background(), svg, 1)
	if err != nil {
		t.Fatalf("ToPNG: %v", err)
	}
	if !strings.HasPrefix(string(png), "\x89PNG") {
		t.Error("output is not a PNG")
	}
}
