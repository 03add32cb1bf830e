package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// FileStore keeps each collection as one JSON file under a data directory.
type FileStore struct {
	dir    string
	mu     sync.Mutex
	logger *zerolog.Logger
}

// NewFileStore creates the data directory if needed and returns the store.
func NewFileStore(dir string, logger *zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	logger.Info().Str("dir", dir).Msg("File store initialized")
	return &FileStore{dir: dir, logger: logger}, nil
}

func (s *FileStore) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func (s *FileStore) Load(_ context.Context, collection string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(collection))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read collection %s: %w", collection, err)
	}
	return data, nil
}

// Save writes to a temp file and renames so a crash mid-write never leaves
// a truncated collection behind.
func (s *FileStore) Save(_ context.Context, collection string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path(collection) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write collection %s: %w", collection, err)
	}
	if err := os.Rename(tmp, s.path(collection)); err != nil {
		return fmt.Errorf("replace collection %s: %w", collection, err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(collection)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete collection %s: %w", collection, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
