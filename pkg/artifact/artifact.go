// Package artifact stores rendered canvases.
//
// Backends:
//   - [FSStore]: files below a root directory
//   - [S3Store]: objects in an S3 or S3-compatible (MinIO) bucket
//
// Keys are relative slash-separated paths such as "plots/<uuid>.svg";
// [NewKey] generates one. Every backend rejects absolute keys and keys
// containing "..".
package artifact

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/netplot/pkg/errors"
)

// Info describes a stored artifact.
type Info struct {
	Key         string    `json:"key"`
	Size        int64     `json:"size_bytes"`
	ContentType string    `json:"content_type,omitempty"`
	Location    string    `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store is the interface for artifact backends.
type Store interface {
	// Put stores data under key, replacing any previous object.
	Put(ctx context.Context, key string, data []byte, contentType string) (Info, error)

	// Get returns the stored bytes. Missing keys yield NOT_FOUND.
	Get(ctx context.Context, key string) ([]byte, Info, error)

	Close() error
}

// NewKey returns a fresh key "<prefix>/<uuid>.<ext>".
func NewKey(prefix, ext string) string {
	prefix = strings.Trim(prefix, "/")
	name := uuid.NewString()
	if ext = strings.TrimPrefix(ext, "."); ext != "" {
		name += "." + ext
	}
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// Backend names accepted by [Open].
const (
	BackendNone = ""
	BackendFS   = "fs"
	BackendS3   = "s3"
)

// Config selects and configures a backend.
type Config struct {
	Backend string   `toml:"backend"`
	Dir     string   `toml:"dir"`
	S3      S3Config `toml:"s3"`
}

// Open creates the configured store. It returns nil and no error when no
// backend is configured.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendNone:
		return nil, nil
	case BackendFS:
		s, err := NewFSStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendS3:
		s, err := NewS3Store(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown artifact backend %q", cfg.Backend)
	}
}
