package export

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Common errors
var (
	// ErrInvalidKey is returned when a key escapes the store root or is empty.
	ErrInvalidKey = errors.New("export: invalid key")
)

// Store receives exported objects.
type Store interface {
	// Put writes body under key, replacing any previous object.
	Put(ctx context.Context, key, contentType string, body []byte) error
}

// DirStore stores exported pages on the local filesystem.
type DirStore struct {
	dir string

	mu   sync.Mutex
	keys map[string]struct{}
}

// NewDirStore creates a new DirStore rooted at dir, creating it if needed.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &DirStore{dir: dir, keys: make(map[string]struct{})}, nil
}

// Dir returns the root directory of the store.
func (s *DirStore) Dir() string {
	return s.dir
}

// Put writes body to dir/key. The file is written to a temporary name
// first and renamed so readers never see a partial page.
func (s *DirStore) Put(ctx context.Context, key, contentType string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean, err := cleanKey(key)
	if err != nil {
		return err
	}

	dst := filepath.Join(s.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(dst), ".export-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(body); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return err
	}

	s.mu.Lock()
	s.keys[clean] = struct{}{}
	s.mu.Unlock()
	return nil
}

// Keys returns the keys written so far, sorted.
func (s *DirStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// cleanKey normalizes a slash separated key and rejects keys that would
// leave the store root.
func cleanKey(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	clean := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." {
		return "", ErrInvalidKey
	}
	for _, part := range strings.Split(strings.ReplaceAll(key, "\\", "/"), "/") {
		if part == ".." {
			return "", ErrInvalidKey
		}
	}
	return clean, nil
}
