package network

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrUnknownBus is returned when an element references a bus ID that is
	// not present in the bus table.
	ErrUnknownBus = errors.New("unknown bus")

	// ErrUnknownLine is returned when a line switch references a missing line.
	ErrUnknownLine = errors.New("unknown line")

	// ErrUnknownTrafo is returned when a trafo switch references a missing trafo.
	ErrUnknownTrafo = errors.New("unknown transformer")

	// ErrDuplicateID is returned by [Network.Validate] when two rows of one
	// table share an ID.
	ErrDuplicateID = errors.New("duplicate ID")

	// ErrInvalidSwitchType is returned by [Network.Validate] for switch
	// element types other than bus, line and trafo.
	ErrInvalidSwitchType = errors.New("invalid switch element type")
)

// Coordinate is a position in an abstract planar unit.
type Coordinate struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
}

// Bus is a network node.
type Bus struct {
	ID   int         `json:"id" toml:"id"`
	Name string      `json:"name,omitempty" toml:"name,omitempty"`
	VnKV float64     `json:"vn_kv,omitempty" toml:"vn_kv,omitempty"`
	Geo  *Coordinate `json:"geo,omitempty" toml:"geo,omitempty"`
}

// Line connects two buses and may carry a real-world path.
type Line struct {
	ID      int          `json:"id" toml:"id"`
	Name    string       `json:"name,omitempty" toml:"name,omitempty"`
	FromBus int          `json:"from_bus" toml:"from_bus"`
	ToBus   int          `json:"to_bus" toml:"to_bus"`
	Geo     []Coordinate `json:"geo,omitempty" toml:"geo,omitempty"`
}

// Trafo connects a high voltage bus to a low voltage bus.
type Trafo struct {
	ID    int    `json:"id" toml:"id"`
	Name  string `json:"name,omitempty" toml:"name,omitempty"`
	HVBus int    `json:"hv_bus" toml:"hv_bus"`
	LVBus int    `json:"lv_bus" toml:"lv_bus"`
}

// ExtGrid marks a bus as a feed point from an external system.
type ExtGrid struct {
	ID   int    `json:"id" toml:"id"`
	Name string `json:"name,omitempty" toml:"name,omitempty"`
	Bus  int    `json:"bus" toml:"bus"`
}

// SwitchType identifies what the element side of a switch refers to.
type SwitchType string

const (
	// SwitchBus connects two buses; Element is the second bus ID.
	SwitchBus SwitchType = "b"
	// SwitchLine sits between a bus and a line; Element is the line ID.
	SwitchLine SwitchType = "l"
	// SwitchTrafo sits between a bus and a trafo; Element is the trafo ID.
	SwitchTrafo SwitchType = "t"
)

// Switch connects a bus to another bus, a line or a trafo.
type Switch struct {
	ID          int        `json:"id" toml:"id"`
	Bus         int        `json:"bus" toml:"bus"`
	Element     int        `json:"element" toml:"element"`
	ElementType SwitchType `json:"et" toml:"et"`
	Closed      bool       `json:"closed" toml:"closed"`
}

// Network holds the element tables of a physical network.
//
// Network is not safe for concurrent use, not even for lookups, which
// build an ID index on first use. The only mutation performed by netplot
// is the merge of synthesized bus coordinates (see geodata.Apply).
type Network struct {
	Name     string    `json:"name,omitempty" toml:"name,omitempty"`
	Buses    []Bus     `json:"bus" toml:"bus"`
	Lines    []Line    `json:"line,omitempty" toml:"line,omitempty"`
	Trafos   []Trafo   `json:"trafo,omitempty" toml:"trafo,omitempty"`
	ExtGrids []ExtGrid `json:"ext_grid,omitempty" toml:"ext_grid,omitempty"`
	Switches []Switch  `json:"switch,omitempty" toml:"switch,omitempty"`

	busIndex map[int]int // bus ID to position in Buses
}

// BusByID returns the bus with the given ID. With duplicate IDs the first
// row wins. A missing bus yields an error wrapping [ErrUnknownBus].
func (n *Network) BusByID(id int) (*Bus, error) {
	if i, ok := n.busIndex[id]; ok && i < len(n.Buses) && n.Buses[i].ID == id {
		return &n.Buses[i], nil
	}
	// Missing or stale index; the bus table may have changed since.
	n.indexBuses()
	if i, ok := n.busIndex[id]; ok {
		return &n.Buses[i], nil
	}
	return nil, fmt.Errorf("bus %d: %w", id, ErrUnknownBus)
}

func (n *Network) indexBuses() {
	n.busIndex = make(map[int]int, len(n.Buses))
	for i, b := range n.Buses {
		if _, dup := n.busIndex[b.ID]; !dup {
			n.busIndex[b.ID] = i
		}
	}
}

// LineByID returns the line with the given ID.
func (n *Network) LineByID(id int) (*Line, error) {
	for i := range n.Lines {
		if n.Lines[i].ID == id {
			return &n.Lines[i], nil
		}
	}
	return nil, fmt.Errorf("line %d: %w", id, ErrUnknownLine)
}

// TrafoByID returns the trafo with the given ID.
func (n *Network) TrafoByID(id int) (*Trafo, error) {
	for i := range n.Trafos {
		if n.Trafos[i].ID == id {
			return &n.Trafos[i], nil
		}
	}
	return nil, fmt.Errorf("trafo %d: %w", id, ErrUnknownTrafo)
}

// BusCoordinate returns the coordinate of bus id and whether it has one.
// Unknown buses return an error wrapping [ErrUnknownBus].
func (n *Network) BusCoordinate(id int) (Coordinate, bool, error) {
	b, err := n.BusByID(id)
	if err != nil {
		return Coordinate{}, false, err
	}
	if b.Geo == nil {
		return Coordinate{}, false, nil
	}
	return *b.Geo, true, nil
}

// HasBusGeodata reports whether at least one bus owns a coordinate.
func (n *Network) HasBusGeodata() bool {
	for _, b := range n.Buses {
		if b.Geo != nil {
			return true
		}
	}
	return false
}

// HasLineGeodata reports whether at least one line owns a path.
func (n *Network) HasLineGeodata() bool {
	for _, l := range n.Lines {
		if len(l.Geo) > 0 {
			return true
		}
	}
	return false
}

// HasGeodata reports whether any bus or line carries geodata.
func (n *Network) HasGeodata() bool {
	return n.HasBusGeodata() || n.HasLineGeodata()
}

// BusCoordinates returns the coordinates of all buses that own one.
func (n *Network) BusCoordinates() map[int]Coordinate {
	coords := make(map[int]Coordinate)
	for _, b := range n.Buses {
		if b.Geo != nil {
			coords[b.ID] = *b.Geo
		}
	}
	return coords
}

// BusIDs returns all bus IDs in table order.
func (n *Network) BusIDs() []int {
	ids := make([]int, len(n.Buses))
	for i, b := range n.Buses {
		ids[i] = b.ID
	}
	return ids
}

// LineIDs returns all line IDs in table order.
func (n *Network) LineIDs() []int {
	ids := make([]int, len(n.Lines))
	for i, l := range n.Lines {
		ids[i] = l.ID
	}
	return ids
}

// TrafoIDs returns all trafo IDs in table order.
func (n *Network) TrafoIDs() []int {
	ids := make([]int, len(n.Trafos))
	for i, t := range n.Trafos {
		ids[i] = t.ID
	}
	return ids
}

// Clone returns a deep copy of the network.
func (n *Network) Clone() *Network {
	c := &Network{
		Name:     n.Name,
		Buses:    slices.Clone(n.Buses),
		Lines:    slices.Clone(n.Lines),
		Trafos:   slices.Clone(n.Trafos),
		ExtGrids: slices.Clone(n.ExtGrids),
		Switches: slices.Clone(n.Switches),
	}
	for i := range c.Buses {
		if g := c.Buses[i].Geo; g != nil {
			cp := *g
			c.Buses[i].Geo = &cp
		}
	}
	for i := range c.Lines {
		c.Lines[i].Geo = slices.Clone(c.Lines[i].Geo)
	}
	return c
}

// Validate checks ID uniqueness per table and that every reference points
// at an existing row. It is run by the I/O layer; plotting never calls it.
func (n *Network) Validate() error {
	buses := make(map[int]bool, len(n.Buses))
	for _, b := range n.Buses {
		if buses[b.ID] {
			return fmt.Errorf("bus %d: %w", b.ID, ErrDuplicateID)
		}
		buses[b.ID] = true
	}
	requireBus := func(kind string, id, bus int) error {
		if !buses[bus] {
			return fmt.Errorf("%s %d references bus %d: %w", kind, id, bus, ErrUnknownBus)
		}
		return nil
	}

	lines := make(map[int]bool, len(n.Lines))
	for _, l := range n.Lines {
		if lines[l.ID] {
			return fmt.Errorf("line %d: %w", l.ID, ErrDuplicateID)
		}
		lines[l.ID] = true
		if err := requireBus("line", l.ID, l.FromBus); err != nil {
			return err
		}
		if err := requireBus("line", l.ID, l.ToBus); err != nil {
			return err
		}
	}

	trafos := make(map[int]bool, len(n.Trafos))
	for _, t := range n.Trafos {
		if trafos[t.ID] {
			return fmt.Errorf("trafo %d: %w", t.ID, ErrDuplicateID)
		}
		trafos[t.ID] = true
		if err := requireBus("trafo", t.ID, t.HVBus); err != nil {
			return err
		}
		if err := requireBus("trafo", t.ID, t.LVBus); err != nil {
			return err
		}
	}

	grids := make(map[int]bool, len(n.ExtGrids))
	for _, g := range n.ExtGrids {
		if grids[g.ID] {
			return fmt.Errorf("ext_grid %d: %w", g.ID, ErrDuplicateID)
		}
		grids[g.ID] = true
		if err := requireBus("ext_grid", g.ID, g.Bus); err != nil {
			return err
		}
	}

	switches := make(map[int]bool, len(n.Switches))
	for _, s := range n.Switches {
		if switches[s.ID] {
			return fmt.Errorf("switch %d: %w", s.ID, ErrDuplicateID)
		}
		switches[s.ID] = true
		if err := requireBus("switch", s.ID, s.Bus); err != nil {
			return err
		}
		switch s.ElementType {
		case SwitchBus:
			if err := requireBus("switch", s.ID, s.Element); err != nil {
				return err
			}
		case SwitchLine:
			if !lines[s.Element] {
				return fmt.Errorf("switch %d references line %d: %w", s.ID, s.Element, ErrUnknownLine)
			}
		case SwitchTrafo:
			if !trafos[s.Element] {
				return fmt.Errorf("switch %d references trafo %d: %w", s.ID, s.Element, ErrUnknownTrafo)
			}
		default:
			return fmt.Errorf("switch %d: %q: %w", s.ID, s.ElementType, ErrInvalidSwitchType)
		}
	}
	return nil
}
