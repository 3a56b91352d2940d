// Package scale derives a spatial unit from the extent of a network and
// turns marker size settings into plot units.
//
// A [Size] is one of three modes:
//
//   - [Relative]: a multiplier applied to the unit (auto scaling).
//   - [Absolute]: a value in plot units that bypasses scaling.
//   - [Off]: the marker category is disabled and not drawn at all.
//
// The zero value is Off.
package scale

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/netplot/pkg/errors"
	"github.com/matzehuels/netplot/pkg/network"
)

const (
	// Resolution divides the summed per-axis extent to give the unit.
	Resolution = 200.0

	// ExtGridFactor enlarges ext grid markers relative to bus markers.
	ExtGridFactor = 1.5
)

// DeriveUnit returns (maxX-minX + maxY-minY) / Resolution over coords.
// Empty input yields 0.
func DeriveUnit(coords map[int]network.Coordinate) float64 {
	if len(coords) == 0 {
		return 0
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range coords {
		minX = math.Min(minX, c.X)
		maxX = math.Max(maxX, c.X)
		minY = math.Min(minY, c.Y)
		maxY = math.Max(maxY, c.Y)
	}
	return ((maxX - minX) + (maxY - minY)) / Resolution
}

// Mode is the interpretation of a [Size] value.
type Mode uint8

const (
	ModeOff Mode = iota
	ModeRelative
	ModeAbsolute
)

func (m Mode) String() string {
	switch m {
	case ModeRelative:
		return "relative"
	case ModeAbsolute:
		return "absolute"
	default:
		return "off"
	}
}

// Size is a tri-state marker size.
type Size struct {
	Mode  Mode
	Value float64
}

// Relative returns an auto-scaled size: m times the unit.
func Relative(m float64) Size { return Size{Mode: ModeRelative, Value: m} }

// Absolute returns a size in plot units. Absolute(0) is a valid zero size.
func Absolute(v float64) Size { return Size{Mode: ModeAbsolute, Value: v} }

// Off returns a disabled size.
func Off() Size { return Size{} }

func (s Size) IsOff() bool      { return s.Mode == ModeOff }
func (s Size) IsRelative() bool { return s.Mode == ModeRelative }
func (s Size) IsAbsolute() bool { return s.Mode == ModeAbsolute }

// Resolve converts s to plot units. Relative sizes are multiplied by unit
// and factor; absolute sizes are returned as is; Off resolves to 0.
func (s Size) Resolve(unit, factor float64) float64 {
	switch s.Mode {
	case ModeRelative:
		return s.Value * unit * factor
	case ModeAbsolute:
		return s.Value
	default:
		return 0
	}
}

// String formats s in the syntax accepted by [ParseSize].
func (s Size) String() string {
	v := strconv.FormatFloat(s.Value, 'g', -1, 64)
	switch s.Mode {
	case ModeRelative:
		return v
	case ModeAbsolute:
		return "abs:" + v
	default:
		return "off"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Size) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Size) UnmarshalText(b []byte) error {
	v, err := ParseSize(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSize parses "1.5" (relative), "abs:0.3" (absolute) or "off".
// Negative and non-finite values are rejected.
func ParseSize(s string) (Size, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	if raw == "off" || raw == "none" {
		return Off(), nil
	}

	mode := ModeRelative
	if rest, ok := strings.CutPrefix(raw, "abs:"); ok {
		mode = ModeAbsolute
		raw = strings.TrimSpace(rest)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Size{}, errors.New(errors.ErrCodeInvalidSize, "invalid size %q", s)
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return Size{}, errors.New(errors.ErrCodeInvalidSize, "invalid size %q: must be a finite non-negative number", s)
	}
	return Size{Mode: mode, Value: v}, nil
}

// MustParseSize is like ParseSize but panics on error.
func MustParseSize(s string) Size {
	v, err := ParseSize(s)
	if err != nil {
		panic(fmt.Sprintf("scale: %v", err))
	}
	return v
}

// NeedsUnit reports whether any size is relative.
func NeedsUnit(sizes ...Size) bool {
	for _, s := range sizes {
		if s.IsRelative() {
			return true
		}
	}
	return false
}
