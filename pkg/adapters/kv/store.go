// Package kv persists one JSON root object per namespace on top of a
// byte-level Backend, falling back to memory when the durable backend is
// unusable.
package kv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/jotter/pkg/core"
)

// Root is the JSON object stored under a namespace.
// Numbers decode as json.Number so a read/write cycle does not drift.
type Root map[string]any

// Store is a namespaced view over a Backend.
type Store struct {
	namespace string
	durable   Backend
	memory    *MemoryBackend
	logger    *slog.Logger

	probe sync.Once

	mu       sync.RWMutex
	active   Backend
	fallback string // reason, empty while the durable backend is in use
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a store for namespace on top of backend. A nil backend means
// memory only. The backend is probed on first use, not here.
func New(namespace string, backend Backend, opts ...Option) *Store {
	mem := NewMemoryBackend()
	if backend == nil {
		backend = mem
	}
	s := &Store{
		namespace: namespace,
		durable:   backend,
		memory:    mem,
		logger:    slog.New(slog.DiscardHandler),
		active:    backend,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Namespace returns the key the root object is stored under.
func (s *Store) Namespace() string {
	return s.namespace
}

// ensureProbed runs the one-time write/delete round trip against the durable backend.
func (s *Store) ensureProbed() {
	s.probe.Do(func() {
		if s.durable == Backend(s.memory) {
			return
		}
		key := s.namespace + ".probe"
		err := s.durable.Write(key, []byte("1"))
		if err == nil {
			err = s.durable.Remove(key)
		}
		if err != nil {
			s.degrade(fmt.Errorf("%w: probe failed: %w", core.ErrStorageUnavailable, err))
		}
	})
}

// degrade switches to the memory backend for the rest of the session.
func (s *Store) degrade(reason error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fallback != "" {
		return
	}
	s.active = s.memory
	s.fallback = reason.Error()
	s.logger.Warn("durable storage unavailable, using memory", "backend", s.durable.Name(), "error", reason)
}

func (s *Store) backend() Backend {
	s.ensureProbed()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// GetAll returns the root object, or an empty one when it is absent or unreadable.
func (s *Store) GetAll() Root {
	data, ok, err := s.backend().Read(s.namespace)
	if err != nil {
		s.logger.Warn("failed to read root", "namespace", s.namespace, "error", err)
		return Root{}
	}
	if !ok {
		return Root{}
	}

	var root Root
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&root); err != nil {
		s.logger.Warn("discarding corrupt root", "namespace", s.namespace, "error", err)
		return Root{}
	}
	if root == nil {
		return Root{}
	}
	return root
}

// SetAll replaces the root object. Values that cannot be encoded are dropped
// with a warning. A failing durable write moves the store to memory and keeps
// the value there.
func (s *Store) SetAll(root Root) {
	data, err := json.Marshal(root)
	if err != nil {
		s.logger.Warn("dropping write", "namespace", s.namespace, "error", fmt.Errorf("%w: %w", core.ErrSerialization, err))
		return
	}

	b := s.backend()
	if err := b.Write(s.namespace, data); err != nil {
		s.degrade(fmt.Errorf("%w: %w", core.ErrStorageUnavailable, err))
		_ = s.memory.Write(s.namespace, data)
	}
}

// Watch reports external changes to the namespace when the active backend supports it.
func (s *Store) Watch(ctx context.Context) (<-chan core.Event, error) {
	w, ok := s.backend().(watcher)
	if !ok {
		return nil, core.ErrWatchUnsupported
	}
	return w.Watch(ctx, s.namespace)
}

// Fallback reports whether the store runs on memory because the durable backend failed.
func (s *Store) Fallback() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fallback != ""
}

// Close releases the durable backend if it holds resources.
func (s *Store) Close() error {
	if c, ok := s.durable.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
