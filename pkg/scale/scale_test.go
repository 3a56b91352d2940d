package scale

import (
	"fmt"
	"math"
	"testing"

	"github.com/matzehuels/netplot/pkg/errors"
	"github.com/matzehuels/netplot/pkg/network"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-12 }

func TestDeriveUnit(t *testing.T) {
	tests := []struct {
		name   string
		coords map[int]network.Coordinate
		want   float64
	}{
		{"empty", nil, 0},
		{"single", map[int]network.Coordinate{1: {X: 5, Y: 5}}, 0},
		{"coincident", map[int]network.Coordinate{1: {X: 2, Y: 3}, 2: {X: 2, Y: 3}}, 0},
		{"box 10x20", map[int]network.Coordinate{1: {X: 0, Y: 0}, 2: {X: 10, Y: 20}}, 0.15},
		{"negative coords", map[int]network.Coordinate{1: {X: -100, Y: -50}, 2: {X: 100, Y: 50}, 3: {X: 0, Y: 0}}, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveUnit(tt.coords); !almostEqual(got, tt.want) {
				t.Errorf("DeriveUnit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		size   Size
		unit   float64
		factor float64
		want   float64
	}{
		{"relative", Relative(2), 0.15, 1, 0.3},
		{"relative ext grid", Relative(1), 0.15, ExtGridFactor, 0.225},
		{"absolute ignores unit", Absolute(0.3), 10, ExtGridFactor, 0.3},
		{"absolute zero", Absolute(0), 10, 1, 0},
		{"off", Off(), 10, 1, 0},
		{"zero value", Size{}, 10, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.size.Resolve(tt.unit, tt.factor); !almostEqual(got, tt.want) {
				t.Errorf("Resolve(%v, %v) = %v, want %v", tt.unit, tt.factor, got, tt.want)
			}
		})
	}
}

func TestExtGridIsOneAndAHalfBus(t *testing.T) {
	unit := DeriveUnit(map[int]network.Coordinate{1: {X: 0, Y: 0}, 2: {X: 10, Y: 20}})
	bus := Relative(1).Resolve(unit, 1)
	grid := Relative(1).Resolve(unit, ExtGridFactor)
	if !almostEqual(grid, 1.5*bus) {
		t.Errorf("ext grid size %v, want 1.5 x %v", grid, bus)
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    Size
		wantErr bool
	}{
		{"1.5", Relative(1.5), false},
		{" 2 ", Relative(2), false},
		{"abs:0.3", Absolute(0.3), false},
		{"ABS: 0", Absolute(0), false},
		{"off", Off(), false},
		{"none", Off(), false},
		{"", Size{}, true},
		{"big", Size{}, true},
		{"-1", Size{}, true},
		{"abs:-0.1", Size{}, true},
		{"NaN", Size{}, true},
		{"inf", Size{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSize(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSize(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidSize) {
					t.Errorf("code = %s, want INVALID_SIZE", errors.GetCode(err))
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseSize(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSizeTextRoundTrip(t *testing.T) {
	for _, s := range []Size{Relative(1.25), Absolute(0), Absolute(3), Off()} {
		b, err := s.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText: %v", err)
		}
		var got Size
		if err := got.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", b, err)
		}
		if got != s {
			t.Errorf("round trip %q = %+v, want %+v", b, got, s)
		}
	}
}

func TestNeedsUnit(t *testing.T) {
	tests := []struct {
		name  string
		sizes []Size
		want  bool
	}{
		{"none", nil, false},
		{"all absolute", []Size{Absolute(1), Absolute(2)}, false},
		{"off and absolute", []Size{Off(), Absolute(2)}, false},
		{"one relative", []Size{Absolute(1), Relative(1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsUnit(tt.sizes...); got != tt.want {
				t.Errorf("NeedsUnit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func ExampleParseSize() {
	for _, in := range []string{"1.5", "abs:0.3", "off"} {
		s, _ := ParseSize(in)
		fmt.Println(s.Mode, s.Resolve(0.5, 1))
	}
	// Output:
	// relative 0.75
	// absolute 0.3
	// off 0
}

func TestMustParseSize(t *testing.T) {
	if got := MustParseSize("abs:2"); got != Absolute(2) {
		t.Errorf("MustParseSize(abs:2) = %v, want %v", got, Absolute(2))
	}

	defer func() {
		if recover() == nil {
			t.Error("MustParseSize(huge) did not panic")
		}
	}()
	MustParseSize("huge")
}
