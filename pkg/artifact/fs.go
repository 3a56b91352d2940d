package artifact

import (
	"context"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/netplot/pkg/errors"
)

// FSStore writes artifacts below a root directory. The content type is
// not persisted; Get infers it from the file extension.
type FSStore struct {
	root string
}

// NewFSStore creates a store rooted at dir, creating it if needed.
func NewFSStore(dir string) (*FSStore, error) {
	if dir == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "artifact directory is empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "resolve artifact dir")
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create artifact dir")
	}
	return &FSStore{root: abs}, nil
}

func (s *FSStore) path(key string) (string, error) {
	if err := errors.ValidateObjectKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

func (s *FSStore) Put(ctx context.Context, key string, data []byte, contentType string) (Info, error) {
	path, err := s.path(key)
	if err != nil {
		return Info{}, err
	}
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Info{}, errors.Wrap(errors.ErrCodeStorage, err, "store artifact %s", key)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return Info{}, errors.Wrap(errors.ErrCodeStorage, err, "store artifact %s", key)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return Info{}, errors.Wrap(errors.ErrCodeStorage, err, "store artifact %s", key)
	}
	return Info{
		Key:         key,
		Size:        int64(len(data)),
		ContentType: contentType,
		Location:    "file://" + filepath.ToSlash(path),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func (s *FSStore) Get(ctx context.Context, key string) ([]byte, Info, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, Info{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, Info{}, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, Info{}, errors.New(errors.ErrCodeNotFound, "artifact %s not found", key)
	}
	if err != nil {
		return nil, Info{}, errors.Wrap(errors.ErrCodeStorage, err, "load artifact %s", key)
	}
	info := Info{
		Key:         key,
		Size:        int64(len(data)),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Location:    "file://" + filepath.ToSlash(path),
	}
	if st, err := os.Stat(path); err == nil {
		info.CreatedAt = st.ModTime().UTC()
	}
	return data, info, nil
}

// Root returns the store directory.
func (s *FSStore) Root() string { return s.root }

func (s *FSStore) Close() error { return nil }

var _ Store = (*FSStore)(nil)
