// Package netstore keeps named power networks.
//
// Two backends are provided:
//   - [DirStore]: one JSON (or TOML) file per network in a directory, for the
//     CLI and single-instance servers
//   - [MongoStore]: one document per network in a MongoDB collection, for
//     shared deployments
//
// Names are validated with errors.ValidateNetworkName before they reach a
// backend, so they are safe to use as file names and document keys.
//
// # Usage
//
//	store, err := netstore.NewDirStore("networks")
//	if err != nil {
//	    return err
//	}
//	if err := store.Put(ctx, "feeder-7", net); err != nil {
//	    return err
//	}
//	net, err = store.Get(ctx, "feeder-7")
//
// Get returns an error with code NETWORK_NOT_FOUND for unknown names.
package netstore

import (
	"context"

	"github.com/matzehuels/netplot/pkg/errors"
	"github.com/matzehuels/netplot/pkg/network"
)

// Store is the interface for network storage backends.
type Store interface {
	// Get loads a network by name.
	Get(ctx context.Context, name string) (*network.Network, error)

	// Put validates and stores a network, replacing any previous version.
	Put(ctx context.Context, name string, n *network.Network) error

	// List returns the stored names in ascending order.
	List(ctx context.Context) ([]string, error)

	// Delete removes a network. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error

	Close() error
}

func notFound(name string) error {
	return errors.New(errors.ErrCodeNetworkNotFound, "network %q not found", name)
}

// checkPut validates the arguments shared by every Put implementation.
func checkPut(name string, n *network.Network) error {
	if err := errors.ValidateNetworkName(name); err != nil {
		return err
	}
	if n == nil {
		return errors.New(errors.ErrCodeInvalidNetwork, "network %q is nil", name)
	}
	if err := n.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidNetwork, err, "network %q", name)
	}
	return nil
}

// Backend names accepted by [Open].
const (
	BackendNone  = ""
	BackendDir   = "dir"
	BackendMongo = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"`
	Mongo   MongoConfig `toml:"mongo"`
}

// Open creates the configured store. It returns nil and no error when no
// backend is configured.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendNone:
		return nil, nil
	case BackendDir:
		s, err := NewDirStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendMongo:
		s, err := NewMongoStore(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown network store backend %q", cfg.Backend)
	}
}
