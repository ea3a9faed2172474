package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// FileStore is the default backend: all records live in one JSON file
// next to the user's data, surviving restarts. Every Set rewrites the
// file atomically via a temp-file rename.
type FileStore struct {
	mu      sync.Mutex
	path    string
	records map[string][]byte
	logger  *zap.Logger
}

func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("error creating storage directory: %w", err)
	}

	store := &FileStore{
		path:    path,
		records: make(map[string][]byte),
		logger:  logger,
	}
	if err := store.load(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.logger.Info("No existing storage file, starting fresh", zap.String("path", s.path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading storage file: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("error parsing storage file %s: %w", s.path, err)
	}
	for key, value := range raw {
		s.records[key] = []byte(value)
	}
	return nil
}

func (s *FileStore) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.records[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (s *FileStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.records[key] = stored

	return s.flush()
}

// flush writes the whole record map out. All stored values are JSON
// records, so they embed verbatim.
func (s *FileStore) flush() error {
	raw := make(map[string]json.RawMessage, len(s.records))
	for key, value := range s.records {
		raw[key] = json.RawMessage(value)
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding storage file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("error writing storage file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("error replacing storage file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
