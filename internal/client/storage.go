package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Keys under which identity survives restarts of the client.
const (
	KeyUser   = "user"
	KeyUserID = "userId"
)

// Storage is client-local key/value persistence.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// FileStorage keeps the values in a small YAML file, rewritten on every Set.
type FileStorage struct {
	path string
	mem  *MemoryStorage
}

func OpenFileStorage(path string) (*FileStorage, error) {
	fs := &FileStorage{path: path, mem: NewMemoryStorage()}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}
	if err := yaml.Unmarshal(b, &fs.mem.data); err != nil {
		return nil, fmt.Errorf("failed to parse storage file: %w", err)
	}
	if fs.mem.data == nil {
		fs.mem.data = make(map[string]string)
	}
	return fs, nil
}

func (f *FileStorage) Get(key string) (string, bool) { return f.mem.Get(key) }

func (f *FileStorage) Set(key, value string) error {
	f.mem.mu.Lock()
	defer f.mem.mu.Unlock()
	f.mem.data[key] = value
	b, err := yaml.Marshal(f.mem.data)
	if err != nil {
		return fmt.Errorf("failed to encode storage: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(f.path, b, 0644); err != nil {
		return fmt.Errorf("failed to write storage file: %w", err)
	}
	return nil
}
