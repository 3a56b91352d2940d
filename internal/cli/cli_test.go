package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/netplot/pkg/errors"
	"github.com/matzehuels/netplot/pkg/network"
	"github.com/matzehuels/netplot/pkg/observability"
)

// testEnv is an isolated working directory with its own config file.
type testEnv struct {
	dir    string
	config string
	logs   bytes.Buffer
}

// newTestEnv changes into a temp dir and writes a config with the given
// extra TOML appended to a file cache section.
func newTestEnv(t *testing.T, extra string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	env := &testEnv{dir: dir, config: filepath.Join(dir, "netplot.toml")}
	cfg := "[cache]\nbackend = \"file\"\ndir = " + quote(filepath.Join(dir, "cache")) + "\n" + extra
	if err := os.WriteFile(env.config, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return env
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// run executes the CLI with args and returns what the command wrote to
// its output stream.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(&e.logs, LogInfo)
	root := c.RootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&e.logs)
	root.SetArgs(append([]string{"--config", e.config}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("netplot %s: %v\nlogs:\n%s", strings.Join(args, " "), err, e.logs.String())
	}
	return out
}

// ringNetwork is a four bus ring without geodata.
func ringNetwork() *network.Network {
	n := &network.Network{Name: "ring"}
	for i := 0; i < 4; i++ {
		n.Buses = append(n.Buses, network.Bus{ID: i})
	}
	for i := 0; i < 4; i++ {
		n.Lines = append(n.Lines, network.Line{ID: i, FromBus: i, ToBus: (i + 1) % 4})
	}
	n.ExtGrids = []network.ExtGrid{{ID: 0, Bus: 0}}
	return n
}

func writeNetwork(t *testing.T, n *network.Network, path string) {
	t.Helper()
	if err := network.WriteFile(n, path); err != nil {
		t.Fatal(err)
	}
}

func TestPlotExampleDefaultOutput(t *testing.T) {
	env := newTestEnv(t, "")
	env.mustRun(t, "plot")

	data, err := os.ReadFile(filepath.Join(env.dir, "example.svg"))
	if err != nil {
		t.Fatalf("example.svg not written: %v", err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Error("example.svg is not an SVG document")
	}
	if !strings.Contains(env.logs.String(), "no network provided") {
		t.Errorf("missing example warning in logs:\n%s", env.logs.String())
	}
}

func TestPlotFileToStdout(t *testing.T) {
	env := newTestEnv(t, "")
	writeNetwork(t, ringNetwork(), "ring.toml")

	out := env.mustRun(t, "plot", "ring.toml", "-o", "-", "-f", "json", "--trafo-size", "off", "--bus-size", "abs:0.5")

	var doc struct {
		Collections []struct {
			Category string  `json:"category"`
			Size     float64 `json:"size"`
		} `json:"collections"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, out)
	}
	got := map[string]float64{}
	for _, c := range doc.Collections {
		got[c.Category] = c.Size
	}
	if len(got) != 3 {
		t.Fatalf("categories = %v, want bus, line and ext_grid", got)
	}
	if got["bus"] != 0.5 {
		t.Errorf("bus size = %v, want absolute 0.5", got["bus"])
	}
	if _, err := os.Stat("ring.json"); err == nil {
		t.Error("stdout output also wrote a file")
	}
}

func TestPlotLayoutCached(t *testing.T) {
	env := newTestEnv(t, "")
	writeNetwork(t, ringNetwork(), "ring.json")

	env.mustRun(t, "plot", "ring.json")
	first, err := os.ReadFile("ring.svg")
	if err != nil {
		t.Fatal(err)
	}
	env.mustRun(t, "plot", "ring.json", "-o", "again.svg")
	second, err := os.ReadFile("again.svg")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("cached layout produced a different drawing")
	}

	entries, err := os.ReadDir(filepath.Join(env.dir, "cache"))
	if err != nil || len(entries) == 0 {
		t.Errorf("layout cache not populated: %v", err)
	}
}

func TestPlotErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"bad format", []string{"plot", "-f", "gif"}, errors.ErrCodeInvalidFormat},
		{"bad engine", []string{"plot", "--engine", "dot"}, errors.ErrCodeInvalidEngine},
		{"missing file", []string{"plot", "nope.json"}, errors.ErrCodeFileNotFound},
		{"file and network", []string{"plot", "a.json", "--network", "a"}, errors.ErrCodeInvalidInput},
		{"no network store", []string{"plot", "--network", "feeder"}, errors.ErrCodeUnsupported},
		{"no artifact store", []string{"plot", "--upload"}, errors.ErrCodeUnsupported},
		{"negative width", []string{"plot", "--line-width=-1"}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "")
			_, err := env.run(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("code = %q, want %q (err: %v)", errors.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestPlotBadSizeFlag(t *testing.T) {
	env := newTestEnv(t, "")
	if _, err := env.run(t, "plot", "--bus-size", "huge"); err == nil {
		t.Fatal("expected flag parse error")
	}
}

func TestPlotInvalidNetwork(t *testing.T) {
	env := newTestEnv(t, "")
	n := ringNetwork()
	n.Lines[0].ToBus = 42
	data, _ := json.Marshal(n)
	if err := os.WriteFile("broken.json", data, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := env.run(t, "plot", "broken.json")
	if !errors.Is(err, errors.ErrCodeInvalidNetwork) {
		t.Errorf("err = %v, want INVALID_NETWORK", err)
	}
}

func TestPlotUpload(t *testing.T) {
	artifacts := filepath.Join(t.TempDir(), "artifacts")
	env := newTestEnv(t, "[artifacts]\nbackend = \"fs\"\ndir = "+quote(artifacts)+"\n")

	env.mustRun(t, "plot", "--upload")

	matches, err := filepath.Glob(filepath.Join(artifacts, "plots", "*.svg"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("uploaded artifacts = %v (err %v), want one svg", matches, err)
	}
	if _, err := os.Stat("example.svg"); err == nil {
		t.Error("--upload without -o should not write a local file")
	}
}

func TestExampleCommand(t *testing.T) {
	env := newTestEnv(t, "")

	out := env.mustRun(t, "example", "-f", "toml")
	n, err := network.Read(strings.NewReader(out), network.FormatTOML)
	if err != nil {
		t.Fatalf("example TOML does not parse: %v", err)
	}
	if n.Name != network.Example().Name || len(n.Buses) != len(network.Example().Buses) {
		t.Errorf("example = %s with %d buses", n.Name, len(n.Buses))
	}

	env.mustRun(t, "example", "-o", "net.json")
	if _, err := network.ReadFile("net.json"); err != nil {
		t.Errorf("net.json: %v", err)
	}

	if _, err := env.run(t, "example", "-f", "yaml"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("yaml err = %v, want INVALID_FORMAT", err)
	}
}

func TestLayoutCommand(t *testing.T) {
	env := newTestEnv(t, "")
	writeNetwork(t, ringNetwork(), "ring.toml")

	env.mustRun(t, "layout", "ring.toml")

	n, err := network.ReadFile("ring.geo.toml")
	if err != nil {
		t.Fatalf("layout output: %v", err)
	}
	for _, b := range n.Buses {
		if b.Geo == nil {
			t.Errorf("bus %d has no coordinate", b.ID)
		}
	}
	if n.HasLineGeodata() {
		t.Error("layout should not invent line paths")
	}
}

func TestLayoutKeepsGeodata(t *testing.T) {
	env := newTestEnv(t, "")
	n := ringNetwork()
	for i := range n.Buses {
		n.Buses[i].Geo = &network.Coordinate{X: float64(i), Y: 7}
	}
	writeNetwork(t, n, "placed.json")

	out := env.mustRun(t, "layout", "placed.json", "-o", "-")
	got, err := network.Read(strings.NewReader(out), network.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if c := got.Buses[2].Geo; c == nil || c.Y != 7 {
		t.Errorf("existing coordinate changed: %+v", c)
	}

	out = env.mustRun(t, "layout", "placed.json", "-o", "-", "--force")
	got, err = network.Read(strings.NewReader(out), network.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	allSeven := true
	for _, b := range got.Buses {
		if b.Geo == nil {
			t.Fatalf("bus %d has no coordinate after --force", b.ID)
		}
		allSeven = allSeven && b.Geo.Y == 7
	}
	if allSeven {
		t.Error("--force did not recompute coordinates")
	}
}

func TestNetworksCommands(t *testing.T) {
	store := filepath.Join(t.TempDir(), "networks")
	env := newTestEnv(t, "[store]\nbackend = \"dir\"\ndir = "+quote(store)+"\n")
	writeNetwork(t, ringNetwork(), "ring.json")

	if out := env.mustRun(t, "networks", "list"); out != "" {
		t.Errorf("empty store listed %q", out)
	}
	env.mustRun(t, "networks", "put", "feeder-7", "ring.json")
	if out := env.mustRun(t, "networks", "list"); out != "feeder-7\n" {
		t.Errorf("list = %q, want feeder-7", out)
	}

	env.mustRun(t, "plot", "--network", "feeder-7")
	if _, err := os.Stat("feeder-7.svg"); err != nil {
		t.Errorf("stored network not plotted: %v", err)
	}

	if _, err := env.run(t, "plot", "--network", "feeder-8"); !errors.Is(err, errors.ErrCodeNetworkNotFound) {
		t.Errorf("missing network err = %v, want NETWORK_NOT_FOUND", err)
	}
	if _, err := env.run(t, "networks", "put", "../escape", "ring.json"); !errors.Is(err, errors.ErrCodeInvalidName) {
		t.Errorf("bad name err = %v, want INVALID_NAME", err)
	}

	env.mustRun(t, "networks", "delete", "feeder-7")
	if out := env.mustRun(t, "networks", "list"); out != "" {
		t.Errorf("list after delete = %q", out)
	}
}

func TestCacheCommands(t *testing.T) {
	env := newTestEnv(t, "")
	cacheDir := filepath.Join(env.dir, "cache")

	if out := env.mustRun(t, "cache", "path"); strings.TrimSpace(out) != cacheDir {
		t.Errorf("cache path = %q, want %q", out, cacheDir)
	}

	writeNetwork(t, ringNetwork(), "ring.json")
	env.mustRun(t, "plot", "ring.json")
	if _, err := os.Stat(cacheDir); err != nil {
		t.Fatalf("cache not created: %v", err)
	}

	env.mustRun(t, "cache", "clear")
	if _, err := os.Stat(cacheDir); !os.IsNotExist(err) {
		t.Errorf("cache dir still present after clear: %v", err)
	}
	env.mustRun(t, "cache", "clear")
}

func TestConfigErrors(t *testing.T) {
	env := newTestEnv(t, "[plot]\nbus_size = \"big\"\n")
	if _, err := env.run(t, "plot"); err == nil {
		t.Fatal("expected config error")
	}

	env = newTestEnv(t, "")
	c := New(&env.logs, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"--config", filepath.Join(env.dir, "missing.toml"), "example"})
	root.SetOut(&bytes.Buffer{})
	if err := root.Execute(); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing config err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestConfigPlotDefaults(t *testing.T) {
	env := newTestEnv(t, "[plot]\nbus_size = \"abs:2\"\n")
	writeNetwork(t, ringNetwork(), "ring.json")

	out := env.mustRun(t, "plot", "ring.json", "-f", "json", "-o", "-")
	if !strings.Contains(out, `"size": 2`) && !strings.Contains(out, `"size":2`) {
		t.Errorf("configured bus size not applied:\n%s", out)
	}
}

func TestCompletion(t *testing.T) {
	env := newTestEnv(t, "")
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		if out := env.mustRun(t, "completion", shell); !strings.Contains(out, "netplot") {
			t.Errorf("%s completion does not mention netplot", shell)
		}
	}
	if _, err := env.run(t, "completion", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}

func TestServerFromConfig(t *testing.T) {
	store := filepath.Join(t.TempDir(), "networks")
	env := newTestEnv(t, "[store]\nbackend = \"dir\"\ndir = "+quote(store)+"\n")
	t.Cleanup(observability.Reset)

	c := New(&env.logs, LogInfo)
	c.Config.Store.Backend = "dir"
	c.Config.Store.Dir = store
	c.Config.Cache.Dir = filepath.Join(env.dir, "cache")

	srv, cleanup, err := c.newServer(context.Background())
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	defer cleanup()

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	for _, path := range []string{"/healthz", "/networks/", "/example/plot", "/metrics"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, resp.StatusCode)
		}
	}
}
