package route

import (
	"log/slog"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/aretw0/jotter/pkg/state"
)

// Synchronizer reconciles the history's address with the store's selection.
//
// The two directions are separate passes, each triggered by its own change
// event and each comparing before writing:
//   - address → store: a note address selects that note; home leaves the
//     selection alone.
//   - store → address: a selection change replaces the current address with
//     the canonical one.
type Synchronizer struct {
	store   *state.Store
	history History
	logger  *slog.Logger

	// follow serializes store → address passes
	follow sync.Mutex

	mu          sync.Mutex
	stop        []func()
	selects     int
	replacement int
}

// NewSynchronizer wires store and history. Call Start to begin syncing.
func NewSynchronizer(store *state.Store, history History, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Synchronizer{store: store, history: history, logger: logger}
}

// Start reconciles once in both directions, deep link first, then follows
// changes until Stop.
func (s *Synchronizer) Start() {
	s.AddressChanged(s.history.Current())
	s.followSelection()

	unlisten := s.history.Listen(s.AddressChanged)
	unsubscribe := s.store.Subscribe(func(prev, next state.State) {
		if prev.Selected != next.Selected {
			s.followSelection()
		}
	})

	s.mu.Lock()
	s.stop = append(s.stop, unlisten, unsubscribe)
	s.mu.Unlock()
}

// Stop detaches from the store and the history.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()
	for _, fn := range stop {
		fn()
	}
}

// Navigate pushes address and selects the note it references.
func (s *Synchronizer) Navigate(address string) {
	s.history.Push(address)
	s.mu.Lock()
	running := len(s.stop) > 0
	s.mu.Unlock()
	if !running {
		// not listening, reconcile by hand
		s.AddressChanged(address)
	}
}

// AddressChanged runs the address → store pass.
func (s *Synchronizer) AddressChanged(address string) {
	loc := Parse(address)
	if loc.IsHome() {
		return
	}
	if loc.ID == s.store.Snapshot().Selected {
		return
	}
	s.logger.Debug("address selects note", "address", address, "id", loc.ID)
	s.mu.Lock()
	s.selects++
	s.mu.Unlock()
	s.store.Dispatch(state.Select{ID: loc.ID})
}

// followSelection runs the store → address pass for the store's current
// selection. Notifications can arrive out of order, so the one in hand may
// already be stale.
func (s *Synchronizer) followSelection() {
	s.follow.Lock()
	defer s.follow.Unlock()
	s.SelectionChanged(s.store.Snapshot().Selected)
}

// SelectionChanged runs the store → address pass.
func (s *Synchronizer) SelectionChanged(selected string) {
	want := Canonical(selected).String()
	if want == s.history.Current() {
		return
	}
	s.logger.Debug("selection rewrites address", "from", s.history.Current(), "to", want)
	s.mu.Lock()
	s.replacement++
	s.mu.Unlock()
	s.history.Replace(want)
}

// Location returns the parsed current address.
func (s *Synchronizer) Location() Location {
	return Parse(s.history.Current())
}

// SynchronizerState exposes internal state for observability.
type SynchronizerState struct {
	Address      string `json:"address"`
	Running      bool   `json:"running"`
	Selects      int    `json:"selects_issued"`
	Replacements int    `json:"address_replacements"`
}

// State implements introspection.Introspectable.
func (s *Synchronizer) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SynchronizerState{
		Address:      s.history.Current(),
		Running:      len(s.stop) > 0,
		Selects:      s.selects,
		Replacements: s.replacement,
	}
}

// ComponentType implements introspection.Component.
func (s *Synchronizer) ComponentType() string {
	return "route-synchronizer"
}

var _ introspection.Introspectable = (*Synchronizer)(nil)
var _ introspection.Component = (*Synchronizer)(nil)
