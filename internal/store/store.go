// Key-value blob store used for best-effort state snapshots
package store

import (
	"os"
	"path/filepath"
	"strings"
)

// Store is an opaque key-value blob store. Values are JSON blobs; callers
// tolerate missing or malformed content by falling back to defaults.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, blob []byte) error
	Remove(key string) error
}

// FileStore keeps one file per key under a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed and returns a FileStore.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	name := strings.ReplaceAll(key, "/", "_") + ".json"
	return filepath.Join(s.dir, name)
}

// Get returns the blob for key, or false when absent or unreadable.
func (s *FileStore) Get(key string) ([]byte, bool) {
	b, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}
	return b, true
}

// Set writes the blob for key.
func (s *FileStore) Set(key string, blob []byte) error {
	return os.WriteFile(s.path(key), blob, 0o644)
}

// Remove deletes the blob for key. Removing an absent key is not an error.
func (s *FileStore) Remove(key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// MemStore is an in-memory Store used by tests.
type MemStore struct {
	blobs map[string][]byte
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{blobs: make(map[string][]byte)}
}

func (s *MemStore) Get(key string) ([]byte, bool) {
	b, ok := s.blobs[key]
	return b, ok
}

func (s *MemStore) Set(key string, blob []byte) error {
	cp := make([]byte, len(blob))
	copy(cp, blob)
	s.blobs[key] = cp
	return nil
}

func (s *MemStore) Remove(key string) error {
	delete(s.blobs, key)
	return nil
}
