package network

import (
	"errors"
	"testing"
)

func lineNetwork() *Network {
	return &Network{
		Buses: []Bus{{ID: 0}, {ID: 1}, {ID: 2}},
		Lines: []Line{
			{ID: 0, FromBus: 0, ToBus: 1},
			{ID: 1, FromBus: 1, ToBus: 2},
		},
	}
}

func TestBusByID(t *testing.T) {
	n := lineNetwork()

	b, err := n.BusByID(1)
	if err != nil {
		t.Fatalf("BusByID(1): %v", err)
	}
	if b.ID != 1 {
		t.Errorf("ID = %d, want 1", b.ID)
	}

	_, err = n.BusByID(42)
	if !errors.Is(err, ErrUnknownBus) {
		t.Errorf("BusByID(42) error = %v, want ErrUnknownBus", err)
	}
}

func TestBusByIDReturnsTableRow(t *testing.T) {
	n := lineNetwork()
	b, _ := n.BusByID(2)
	b.Geo = &Coordinate{X: 3, Y: 4}

	if n.Buses[2].Geo == nil {
		t.Fatal("BusByID should return a pointer into the bus table")
	}
}

func TestBusByIDAfterTableChange(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(n *Network)
		id     int
		want   int // index into Buses, -1 for unknown
	}{
		{"appended", func(n *Network) { n.Buses = append(n.Buses, Bus{ID: 9}) }, 9, 3},
		{"removed", func(n *Network) { n.Buses = n.Buses[:1] }, 2, -1},
		{"reordered", func(n *Network) { n.Buses[0], n.Buses[2] = n.Buses[2], n.Buses[0] }, 2, 0},
		{"renumbered", func(n *Network) { n.Buses[1].ID = 7 }, 7, 1},
		{"replaced", func(n *Network) { n.Buses = []Bus{{ID: 5}, {ID: 1}} }, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := lineNetwork()
			for _, b := range n.Buses {
				if _, err := n.BusByID(b.ID); err != nil {
					t.Fatalf("BusByID(%d): %v", b.ID, err)
				}
			}

			tt.mutate(n)
			b, err := n.BusByID(tt.id)
			if tt.want < 0 {
				if !errors.Is(err, ErrUnknownBus) {
					t.Errorf("BusByID(%d) error = %v, want ErrUnknownBus", tt.id, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("BusByID(%d): %v", tt.id, err)
			}
			if b != &n.Buses[tt.want] {
				t.Errorf("BusByID(%d) = %+v, want row %d", tt.id, *b, tt.want)
			}
		})
	}
}

func TestBusByIDDuplicateFirstWins(t *testing.T) {
	n := &Network{Buses: []Bus{{ID: 3, Name: "first"}, {ID: 3, Name: "second"}}}
	b, err := n.BusByID(3)
	if err != nil {
		t.Fatalf("BusByID(3): %v", err)
	}
	if b.Name != "first" {
		t.Errorf("Name = %q, want first", b.Name)
	}
}

func TestGeodataPredicates(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(n *Network)
		wantBus  bool
		wantLine bool
	}{
		{"none", func(n *Network) {}, false, false},
		{"bus", func(n *Network) { n.Buses[0].Geo = &Coordinate{} }, true, false},
		{"line", func(n *Network) { n.Lines[0].Geo = []Coordinate{{0, 0}, {1, 1}} }, false, true},
		{"both", func(n *Network) {
			n.Buses[1].Geo = &Coordinate{X: 1}
			n.Lines[1].Geo = []Coordinate{{0, 0}, {1, 1}}
		}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := lineNetwork()
			tt.mutate(n)
			if got := n.HasBusGeodata(); got != tt.wantBus {
				t.Errorf("HasBusGeodata() = %v, want %v", got, tt.wantBus)
			}
			if got := n.HasLineGeodata(); got != tt.wantLine {
				t.Errorf("HasLineGeodata() = %v, want %v", got, tt.wantLine)
			}
			if got := n.HasGeodata(); got != (tt.wantBus || tt.wantLine) {
				t.Errorf("HasGeodata() = %v", got)
			}
		})
	}
}

func TestBusCoordinate(t *testing.T) {
	n := lineNetwork()
	n.Buses[1].Geo = &Coordinate{X: 2, Y: 5}

	c, ok, err := n.BusCoordinate(1)
	if err != nil || !ok {
		t.Fatalf("BusCoordinate(1) = %v, %v, %v", c, ok, err)
	}
	if c != (Coordinate{X: 2, Y: 5}) {
		t.Errorf("coordinate = %v", c)
	}

	if _, ok, err := n.BusCoordinate(0); ok || err != nil {
		t.Errorf("BusCoordinate(0) = %v, %v, want false, nil", ok, err)
	}

	if _, _, err := n.BusCoordinate(9); !errors.Is(err, ErrUnknownBus) {
		t.Errorf("BusCoordinate(9) error = %v, want ErrUnknownBus", err)
	}

	coords := n.BusCoordinates()
	if len(coords) != 1 || coords[1] != (Coordinate{X: 2, Y: 5}) {
		t.Errorf("BusCoordinates() = %v", coords)
	}
}

func TestClone(t *testing.T) {
	n := lineNetwork()
	n.Buses[0].Geo = &Coordinate{X: 1}
	n.Lines[0].Geo = []Coordinate{{0, 0}, {1, 0}}

	c := n.Clone()
	c.Buses[0].Geo.X = 99
	c.Lines[0].Geo[0].X = 99
	c.Buses[1].Name = "changed"

	if n.Buses[0].Geo.X != 1 {
		t.Error("Clone shares bus coordinates")
	}
	if n.Lines[0].Geo[0].X != 0 {
		t.Error("Clone shares line paths")
	}
	if n.Buses[1].Name != "" {
		t.Error("Clone shares bus table")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(n *Network)
		wantErr error
	}{
		{"valid", func(n *Network) {}, nil},
		{"duplicate bus", func(n *Network) { n.Buses = append(n.Buses, Bus{ID: 0}) }, ErrDuplicateID},
		{"duplicate line", func(n *Network) { n.Lines = append(n.Lines, Line{ID: 0, FromBus: 0, ToBus: 1}) }, ErrDuplicateID},
		{"line unknown bus", func(n *Network) { n.Lines[0].ToBus = 7 }, ErrUnknownBus},
		{"trafo unknown bus", func(n *Network) { n.Trafos = []Trafo{{ID: 0, HVBus: 0, LVBus: 7}} }, ErrUnknownBus},
		{"ext grid unknown bus", func(n *Network) { n.ExtGrids = []ExtGrid{{ID: 0, Bus: 7}} }, ErrUnknownBus},
		{"switch unknown line", func(n *Network) {
			n.Switches = []Switch{{ID: 0, Bus: 0, Element: 5, ElementType: SwitchLine}}
		}, ErrUnknownLine},
		{"switch unknown trafo", func(n *Network) {
			n.Switches = []Switch{{ID: 0, Bus: 0, Element: 5, ElementType: SwitchTrafo}}
		}, ErrUnknownTrafo},
		{"switch unknown bus", func(n *Network) {
			n.Switches = []Switch{{ID: 0, Bus: 0, Element: 5, ElementType: SwitchBus}}
		}, ErrUnknownBus},
		{"switch bad type", func(n *Network) {
			n.Switches = []Switch{{ID: 0, Bus: 0, Element: 1, ElementType: "x"}}
		}, ErrInvalidSwitchType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := lineNetwork()
			tt.mutate(n)
			err := n.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExample(t *testing.T) {
	n := Example()

	if err := n.Validate(); err != nil {
		t.Fatalf("Example() is invalid: %v", err)
	}
	if n.HasGeodata() {
		t.Error("Example() should not carry geodata")
	}
	if got := len(n.Buses); got != 22 {
		t.Errorf("buses = %d, want 22", got)
	}
	if got := len(n.Lines); got != 21 {
		t.Errorf("lines = %d, want 21", got)
	}
	if len(n.Trafos) != 1 || len(n.ExtGrids) != 1 {
		t.Errorf("trafos = %d, ext grids = %d, want 1 and 1", len(n.Trafos), len(n.ExtGrids))
	}

	n.Buses[0].Geo = &Coordinate{}
	if Example().HasGeodata() {
		t.Error("Example() should return a fresh network on every call")
	}
}
