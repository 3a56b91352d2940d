package network

import "fmt"

const (
	exampleRings       = 3
	exampleBusesInRing = 6
)

// Example returns a fixed medium voltage network without geodata.
//
// The network is fed from a 110 kV bus with an external grid through one
// 110/20 kV transformer. Three open rings hang off the 20 kV busbar; each
// ring is closed back onto the busbar by a line whose busbar-side switch is
// open. A second busbar section is coupled by a closed bus-bus switch and
// a spare bus sits behind an open coupler.
//
// Every call returns a fresh copy, so callers may mutate the result.
func Example() *Network {
	n := &Network{Name: "mv_ring"}

	n.Buses = append(n.Buses,
		Bus{ID: 0, Name: "HV feed", VnKV: 110},
		Bus{ID: 1, Name: "MV busbar A", VnKV: 20},
	)
	n.ExtGrids = []ExtGrid{{ID: 0, Name: "grid", Bus: 0}}
	n.Trafos = []Trafo{{ID: 0, Name: "110/20 kV", HVBus: 0, LVBus: 1}}

	busID, lineID, switchID := 2, 0, 0
	for r := range exampleRings {
		first := busID
		for i := range exampleBusesInRing {
			n.Buses = append(n.Buses, Bus{
				ID:   busID,
				Name: fmt.Sprintf("ring %d station %d", r+1, i+1),
				VnKV: 20,
			})
			busID++
		}
		last := busID - 1

		n.Lines = append(n.Lines, Line{ID: lineID, Name: fmt.Sprintf("ring %d feeder", r+1), FromBus: 1, ToBus: first})
		n.Switches = append(n.Switches, Switch{ID: switchID, Bus: 1, Element: lineID, ElementType: SwitchLine, Closed: true})
		lineID++
		switchID++

		for b := first; b < last; b++ {
			n.Lines = append(n.Lines, Line{ID: lineID, FromBus: b, ToBus: b + 1})
			lineID++
		}

		n.Lines = append(n.Lines, Line{ID: lineID, Name: fmt.Sprintf("ring %d return", r+1), FromBus: last, ToBus: 1})
		n.Switches = append(n.Switches, Switch{ID: switchID, Bus: 1, Element: lineID, ElementType: SwitchLine, Closed: false})
		lineID++
		switchID++
	}

	sectionB, spare := busID, busID+1
	n.Buses = append(n.Buses,
		Bus{ID: sectionB, Name: "MV busbar B", VnKV: 20},
		Bus{ID: spare, Name: "spare", VnKV: 20},
	)
	n.Switches = append(n.Switches,
		Switch{ID: switchID, Bus: 1, Element: sectionB, ElementType: SwitchBus, Closed: true},
		Switch{ID: switchID + 1, Bus: sectionB, Element: spare, ElementType: SwitchBus, Closed: false},
	)

	return n
}
