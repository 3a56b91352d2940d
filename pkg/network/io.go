package network

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Format identifies a serialization format for networks.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath infers the format from a file extension.
// Unknown extensions default to JSON.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

// ReadFile reads and validates a network file. The format is chosen by
// extension (.toml for TOML, anything else JSON).
func ReadFile(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	n, err := Read(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

// Read decodes and validates a network from r.
func Read(r io.Reader, format Format) (*Network, error) {
	var n Network
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&n); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(&n); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported network format %q", format)
	}
	if err := n.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return &n, nil
}

// Write encodes n to w in the given format. JSON output is indented.
func Write(w io.Writer, n *Network, format Format) error {
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(n); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(n); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	default:
		return fmt.Errorf("unsupported network format %q", format)
	}
	return nil
}

// WriteFile writes n to path, choosing the format by extension.
// The file is created with 0644 permissions.
func WriteFile(n *Network, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(f, n, FormatFromPath(path))
}

// Marshal converts n to indented JSON bytes.
func Marshal(n *Network) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, n, FormatJSON); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes and validates a JSON network.
func Unmarshal(data []byte) (*Network, error) {
	return Read(bytes.NewReader(data), FormatJSON)
}
