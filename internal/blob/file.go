package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File stores each key as a file in a directory.
// Writes go to a temp file that is renamed over the old value.
type File struct {
	dir string
}

// NewFile creates a file store rooted at dir, creating it if needed.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory %s: %w", dir, err)
	}
	return &File{dir: dir}, nil
}

// Get reads the file for key.
func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	path, err := f.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}

// Put replaces the file for key.
func (f *File) Put(_ context.Context, key string, data []byte) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		return f.abort(tmp, tmpName, fmt.Errorf("writing %s: %w", key, err))
	}
	if err := tmp.Sync(); err != nil {
		return f.abort(tmp, tmpName, fmt.Errorf("syncing %s: %w", key, err))
	}
	if err := tmp.Close(); err != nil {
		return f.abort(nil, tmpName, fmt.Errorf("closing %s: %w", key, err))
	}
	if err := os.Rename(tmpName, path); err != nil {
		return f.abort(nil, tmpName, fmt.Errorf("replacing %s: %w", key, err))
	}
	return nil
}

// abort cleans up a failed write and returns err.
func (f *File) abort(tmp *os.File, name string, err error) error {
	if tmp != nil {
		if cerr := tmp.Close(); cerr != nil {
			err = fmt.Errorf("%w (also failed to close: %v)", err, cerr)
		}
	}
	if rerr := os.Remove(name); rerr != nil && !os.IsNotExist(rerr) {
		err = fmt.Errorf("%w (also failed to remove temp file: %v)", err, rerr)
	}
	return err
}

func (f *File) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}
