package cachestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// FileStore persists snapshots to a single file on disk, the closest
// analog to the browser's local storage. Writes are atomic: the
// snapshot lands in a temp file that is renamed over the target, so a
// crash mid-write never leaves a truncated snapshot behind.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to path. The parent directory
// is created on first save.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("cachestore: file path is required")
	}
	return &FileStore{path: path}, nil
}

// Save implements Store.
func (s *FileStore) Save(ctx context.Context, snap Snapshot) error {
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return fmt.Errorf("cachestore: encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cachestore: create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("cachestore: create temp snapshot: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("cachestore: write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cachestore: close snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cachestore: replace snapshot: %w", err)
	}
	return nil
}

// Load implements Store. A missing file reports not-found; a file that
// cannot be decoded reports an error, which the Persister treats as an
// empty cache.
func (s *FileStore) Load(ctx context.Context) (Snapshot, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("cachestore: read snapshot: %w", err)
	}

	var snap Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("cachestore: decode snapshot: %w", err)
	}
	return snap, true, nil
}
