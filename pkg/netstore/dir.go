package netstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/netplot/pkg/errors"
	"github.com/matzehuels/netplot/pkg/network"
)

// DirStore stores networks as files in a directory. Put always writes
// <name>.json; Get and List also pick up hand-written <name>.toml files.
type DirStore struct {
	mu  sync.RWMutex
	dir string
}

// NewDirStore creates a store in dir, creating the directory if needed.
func NewDirStore(dir string) (*DirStore, error) {
	if dir == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "network store directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create network store dir")
	}
	return &DirStore{dir: dir}, nil
}

// Dir returns the store directory.
func (s *DirStore) Dir() string { return s.dir }

func (s *DirStore) Get(ctx context.Context, name string) (*network.Network, error) {
	if err := errors.ValidateNetworkName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ext := range []string{".json", ".toml"} {
		path := filepath.Join(s.dir, name+ext)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		n, err := network.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "load network %q", name)
		}
		if n.Name == "" {
			n.Name = name
		}
		return n, nil
	}
	return nil, notFound(name)
}

func (s *DirStore) Put(ctx context.Context, name string, n *network.Network) error {
	if err := checkPut(name, n); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+name+"-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "store network %q", name)
	}
	defer os.Remove(tmp.Name())

	if err := network.Write(tmp, n, network.FormatJSON); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeStorage, err, "store network %q", name)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "store network %q", name)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name+".json")); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "store network %q", name)
	}
	// The JSON file now shadows any TOML copy; drop it.
	_ = os.Remove(filepath.Join(s.dir, name+".toml"))
	return nil
}

func (s *DirStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read network store dir")
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".json" && ext != ".toml" {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ext)
		if errors.ValidateNetworkName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

func (s *DirStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateNetworkName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ext := range []string{".json", ".toml"} {
		if err := os.Remove(filepath.Join(s.dir, name+ext)); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeStorage, err, "delete network %q", name)
		}
	}
	return nil
}

func (s *DirStore) Close() error { return nil }

func (s *DirStore) String() string { return fmt.Sprintf("dir:%s", s.dir) }

var _ Store = (*DirStore)(nil)
