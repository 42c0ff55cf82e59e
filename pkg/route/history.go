package route

import (
	"sync"
)

// History is a browser-like address stack.
// Push, Back and Forward notify listeners; Replace does not, mirroring how
// replacing the current entry fires no navigation event.
type History interface {
	Current() string
	Push(address string)
	Replace(address string)
	Listen(fn func(address string)) (unlisten func())
}

// MemoryHistory is an in-process History.
type MemoryHistory struct {
	mu        sync.Mutex
	entries   []string
	index     int
	listeners map[int]func(string)
	nextID    int
}

// NewMemoryHistory creates a history positioned at initial ("/" when empty).
func NewMemoryHistory(initial string) *MemoryHistory {
	if initial == "" {
		initial = HomeAddress
	}
	return &MemoryHistory{
		entries:   []string{initial},
		listeners: make(map[int]func(string)),
	}
}

func (h *MemoryHistory) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Push adds an entry after the current one, dropping any forward entries.
func (h *MemoryHistory) Push(address string) {
	h.mu.Lock()
	h.entries = append(h.entries[:h.index+1], address)
	h.index++
	h.mu.Unlock()
	h.notify(address)
}

// Replace overwrites the current entry silently.
func (h *MemoryHistory) Replace(address string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.index] = address
}

// Back moves one entry back. It reports false at the start of the history.
func (h *MemoryHistory) Back() bool {
	return h.move(-1)
}

// Forward moves one entry forward. It reports false at the end of the history.
func (h *MemoryHistory) Forward() bool {
	return h.move(1)
}

func (h *MemoryHistory) move(delta int) bool {
	h.mu.Lock()
	next := h.index + delta
	if next < 0 || next >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	h.index = next
	address := h.entries[next]
	h.mu.Unlock()
	h.notify(address)
	return true
}

// Len returns the number of entries.
func (h *MemoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *MemoryHistory) Listen(fn func(address string)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.listeners, id)
		h.mu.Unlock()
	}
}

func (h *MemoryHistory) notify(address string) {
	h.mu.Lock()
	fns := make([]func(string), 0, len(h.listeners))
	for id := 0; id < h.nextID; id++ {
		if fn, ok := h.listeners[id]; ok {
			fns = append(fns, fn)
		}
	}
	h.mu.Unlock()
	for _, fn := range fns {
		fn(address)
	}
}
