package kv

import (
	"context"
	"sync"

	"github.com/aretw0/jotter/pkg/core"
)

// Backend is byte-level key-value persistence.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Name identifies the backend in logs and introspection.
	Name() string

	// Read returns the value stored under key and whether it exists.
	Read(key string) ([]byte, bool, error)

	// Write stores value under key, replacing any previous value.
	Write(key string, value []byte) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
}

// watcher is implemented by backends that can report external changes to a key.
type watcher interface {
	Watch(ctx context.Context, key string) (<-chan core.Event, error)
}

// MemoryBackend keeps values in process memory. It never fails.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string][]byte)}
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Read(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryBackend) Write(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryBackend) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Len returns the number of stored keys.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
