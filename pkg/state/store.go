package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/introspection"

	"github.com/aretw0/jotter/pkg/core"
)

// Listener observes a transition. It runs after the store lock is released,
// so it may dispatch further actions.
type Listener func(prev, next State)

// Store owns the collection state of one session.
type Store struct {
	mu        sync.RWMutex
	state     State
	clock     func() time.Time
	logger    *slog.Logger
	listeners map[int]Listener
	nextID    int
	applied   int
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used to stamp time-dependent actions.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a store holding the empty state.
func NewStore(opts ...Option) *Store {
	s := &Store{
		state:     Empty(),
		clock:     time.Now,
		logger:    slog.New(slog.DiscardHandler),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch applies a as one atomic step and notifies listeners.
// It returns the resulting state.
func (s *Store) Dispatch(a Action) State {
	a = stamp(a, core.Stamp(s.clock()))

	s.mu.Lock()
	prev := s.state
	next := Reduce(prev, a)
	s.state = next
	s.applied++
	listeners := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	if s.logger.Enabled(context.Background(), slog.LevelDebug) {
		if err := next.Check(); err != nil {
			s.logger.Error("state invariant violated", "action", actionName(a), "error", err)
		}
		s.logger.Debug("dispatch", "action", actionName(a), "notes", len(next.Order), "selected", next.Selected)
	}

	for _, l := range listeners {
		l(prev, next)
	}
	return next
}

// Subscribe registers l and returns a function that removes it.
// Listeners run in registration order.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func actionName(a Action) string {
	switch a.(type) {
	case Load:
		return "load"
	case Select:
		return "select"
	case Create:
		return "create"
	case Update:
		return "update"
	case Delete:
		return "delete"
	case SetQuery:
		return "set-query"
	case SetLoading:
		return "set-loading"
	case SetError:
		return "set-error"
	default:
		return "unknown"
	}
}

// StoreState exposes internal state for observability.
type StoreState struct {
	Notes     int    `json:"notes"`
	Selected  string `json:"selected,omitempty"`
	Loading   bool   `json:"loading"`
	Error     string `json:"error,omitempty"`
	Query     string `json:"query,omitempty"`
	Applied   int    `json:"actions_applied"`
	Listeners int    `json:"listeners"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StoreState{
		Notes:     len(s.state.Order),
		Selected:  s.state.Selected,
		Loading:   s.state.Loading,
		Error:     s.state.Error,
		Query:     s.state.Query,
		Applied:   s.applied,
		Listeners: len(s.listeners),
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "entity-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
