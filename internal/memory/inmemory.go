package memory

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// InMemoryStorage implements the Memory interface with a map that is
// written through to a JSON file on every change. An empty file path keeps
// everything in process, which is what the tests use.
type InMemoryStorage struct {
	data      map[string][]byte
	filePath  string
	mutex     sync.RWMutex
	persisted bool
}

// NewInMemoryStorage creates a new in-memory storage with optional file persistence.
// A file that cannot be parsed is ignored and will be overwritten by the next Store.
func NewInMemoryStorage(filePath string) (*InMemoryStorage, error) {
	storage := &InMemoryStorage{
		data:      make(map[string][]byte),
		filePath:  filePath,
		persisted: filePath != "",
	}

	if !storage.persisted {
		return storage, nil
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return storage, nil
		}
		return nil, err
	}

	var storedData map[string]string
	if err := json.Unmarshal(raw, &storedData); err != nil {
		return storage, nil
	}
	for k, v := range storedData {
		storage.data[k] = []byte(v)
	}

	return storage, nil
}

// Store implements the Memory interface Store method
func (s *InMemoryStorage) Store(_ context.Context, key string, value []byte) error {
	if key == "" {
		return ErrKeyEmpty
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[key] = append([]byte(nil), value...)

	if s.persisted {
		return s.persistToDisk()
	}
	return nil
}

// Retrieve implements the Memory interface Retrieve method
func (s *InMemoryStorage) Retrieve(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrKeyEmpty
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}

	return append([]byte(nil), value...), nil
}

// Delete implements the Memory interface Delete method
func (s *InMemoryStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrKeyEmpty
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.data, key)

	if s.persisted {
		return s.persistToDisk()
	}
	return nil
}

// List implements the Memory interface List method
func (s *InMemoryStorage) List(_ context.Context, prefix string) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var keys []string
	for k := range s.data {
		if prefix == "" || strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	return keys, nil
}

// Close implements the Memory interface Close method
func (s *InMemoryStorage) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.persisted {
		return s.persistToDisk()
	}
	return nil
}

// persistToDisk writes the map to a temp file and renames it over the
// target so a crash mid-write never leaves a truncated store.
func (s *InMemoryStorage) persistToDisk() error {
	stringData := make(map[string]string, len(s.data))
	for k, v := range s.data {
		stringData[k] = string(v)
	}

	data, err := json.MarshalIndent(stringData, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.filePath)
}
