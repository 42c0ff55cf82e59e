package kv

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/aretw0/jotter/pkg/core"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// FileBackend stores each key as a JSON file inside Dir.
// Writes are atomic (temp file + rename).
type FileBackend struct {
	Dir    string
	Logger *slog.Logger

	mu        sync.Mutex
	lastWrite map[string][]byte // per key, used to tell our own writes from external ones
}

// NewFileBackend creates a file backend rooted at dir. The directory is
// created lazily on first write.
func NewFileBackend(dir string, logger *slog.Logger) *FileBackend {
	return &FileBackend{
		Dir:       dir,
		Logger:    logger,
		lastWrite: make(map[string][]byte),
	}
}

func (f *FileBackend) Name() string { return "file" }

// Path returns the file that holds key.
func (f *FileBackend) Path(key string) string {
	return filepath.Join(f.Dir, fileName(key))
}

func fileName(key string) string {
	return unsafeKeyChars.ReplaceAllString(key, "_") + ".json"
}

func (f *FileBackend) Read(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.Path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, true, nil
}

func (f *FileBackend) Write(key string, value []byte) error {
	if err := os.MkdirAll(f.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := writeFileAtomic(f.Path(key), value, 0644); err != nil {
		return err
	}
	f.lastWrite[key] = append([]byte(nil), value...)
	return nil
}

func (f *FileBackend) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.lastWrite, key)
	if err := os.Remove(f.Path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// isOwnWrite reports whether data is exactly what this process last wrote for key.
func (f *FileBackend) isOwnWrite(key string, data []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	last, ok := f.lastWrite[key]
	return ok && bytes.Equal(last, data)
}

// Watch reports changes to key made by other processes.
// The returned channel is closed when ctx is done or the watcher fails.
func (f *FileBackend) Watch(ctx context.Context, key string) (<-chan core.Event, error) {
	if err := os.MkdirAll(f.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	events := make(chan core.Event, 16)
	w := newWatchWorker(f, key, events)
	if err := w.Start(ctx); err != nil {
		close(events)
		return nil, err
	}
	return events, nil
}
