package netstore

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/uuid"

	"github.com/matzehuels/netplot/pkg/errors"
	"github.com/matzehuels/netplot/pkg/network"
)

func sampleNetwork() *network.Network {
	return &network.Network{
		Buses: []network.Bus{{ID: 0, Geo: &network.Coordinate{X: 1, Y: 2}}, {ID: 1}},
		Lines: []network.Line{{ID: 0, FromBus: 0, ToBus: 1}},
	}
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "feeder"); !errors.Is(err, errors.ErrCodeNetworkNotFound) {
		t.Fatalf("Get(missing) err = %v, want NETWORK_NOT_FOUND", err)
	}

	if err := s.Put(ctx, "feeder", sampleNetwork()); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, "alpha", sampleNetwork()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, "feeder")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "feeder" {
		t.Errorf("Name = %q, want store name", got.Name)
	}
	if len(got.Buses) != 2 || got.Buses[0].Geo == nil || *got.Buses[0].Geo != (network.Coordinate{X: 1, Y: 2}) {
		t.Errorf("bus table not preserved: %+v", got.Buses)
	}
	if got.Buses[1].Geo != nil {
		t.Error("missing coordinate became non-nil")
	}

	names, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !slices.Equal(names, []string{"alpha", "feeder"}) {
		t.Errorf("List = %v", names)
	}

	if err := s.Delete(ctx, "feeder"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "feeder"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
	if _, err := s.Get(ctx, "feeder"); !errors.Is(err, errors.ErrCodeNetworkNotFound) {
		t.Errorf("Get after Delete err = %v", err)
	}
}

func TestDirStore(t *testing.T) {
	s, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	exerciseStore(t, s)
}

func TestDirStoreRejects(t *testing.T) {
	s, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	tests := []struct {
		name string
		key  string
		net  *network.Network
		code errors.Code
	}{
		{"traversal", "../etc", sampleNetwork(), errors.ErrCodeInvalidName},
		{"empty name", "", sampleNetwork(), errors.ErrCodeInvalidName},
		{"nil network", "x", nil, errors.ErrCodeInvalidNetwork},
		{"bad reference", "x", &network.Network{
			Buses: []network.Bus{{ID: 0}},
			Lines: []network.Line{{ID: 0, FromBus: 0, ToBus: 3}},
		}, errors.ErrCodeInvalidNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Put(ctx, tt.key, tt.net)
			if !errors.Is(err, tt.code) {
				t.Errorf("Put err = %v, want %s", err, tt.code)
			}
		})
	}

	if _, err := s.Get(ctx, "a/b"); !errors.Is(err, errors.ErrCodeInvalidName) {
		t.Errorf("Get(a/b) err = %v", err)
	}
}

func TestDirStoreTOML(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "hand.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := network.Write(f, sampleNetwork(), network.FormatTOML); err != nil {
		t.Fatal(err)
	}
	f.Close()
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644)

	s, err := NewDirStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	names, err := s.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(names, []string{"hand"}) {
		t.Errorf("List = %v, want [hand]", names)
	}
	n, err := s.Get(context.Background(), "hand")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(n.Lines) != 1 {
		t.Errorf("lines = %d, want 1", len(n.Lines))
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{})
	if err != nil || s != nil {
		t.Errorf("Open(none) = %v, %v", s, err)
	}

	s, err = Open(ctx, Config{Backend: BackendDir, Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open(dir): %v", err)
	}
	if _, ok := s.(*DirStore); !ok {
		t.Errorf("Open(dir) = %T", s)
	}

	if _, err := Open(ctx, Config{Backend: "sqlite"}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Open(sqlite) err = %v", err)
	}
}

// TestMongoStore runs against the server named by NETPLOT_TEST_MONGO
// (for example mongodb://localhost:27017) in a throwaway collection.
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("NETPLOT_TEST_MONGO")
	if uri == "" {
		t.Skip("NETPLOT_TEST_MONGO not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, MongoConfig{
		URI:        uri,
		Database:   "netplot_test",
		Collection: "networks_" + uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	t.Cleanup(func() {
		_ = s.coll.Drop(context.Background())
		s.Close()
	})
	exerciseStore(t, s)
}
