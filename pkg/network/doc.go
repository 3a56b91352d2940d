// Package network holds the element tables of a physical network: buses,
// lines, transformers, external grid connections and switches.
//
// # Data Model
//
// A [Network] is a set of typed tables keyed by integer IDs. Buses may own a
// [Coordinate]; lines may own a path (an ordered list of coordinates). A
// line without a path is drawn as the straight segment between its buses.
//
// # Serialization
//
// Networks are stored as JSON or TOML:
//
//	{
//	  "name": "feeder",
//	  "bus":  [{"id": 0, "vn_kv": 20}, {"id": 1, "vn_kv": 20, "geo": {"x": 1, "y": 0}}],
//	  "line": [{"id": 0, "from_bus": 0, "to_bus": 1}]
//	}
//
// Common operations:
//
//	n, _ := network.ReadFile("feeder.json")  // File → Network (validated)
//	network.WriteFile(n, "feeder.toml")      // Network → File
//	data, _ := network.Marshal(n)            // Network → []byte
//
// # References
//
// Lookups such as [Network.BusByID] report missing buses with an error
// wrapping [ErrUnknownBus]. Plotting relies on these lookups instead of
// validating the whole network up front; [Network.Validate] is applied by
// the readers in this package.
package network
