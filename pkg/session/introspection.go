package session

import "github.com/aretw0/introspection"

// SessionState exposes internal state for observability.
type SessionState struct {
	TasksStarted int64 `json:"tasks_started"`
	Failures     int64 `json:"failures"`
	Reloads      int64 `json:"reloads"`
	BusyNotes    int   `json:"busy_notes"`
	Pending      int   `json:"pending_writes"`
}

// State implements introspection.Introspectable.
func (s *Session) State() any {
	s.mu.Lock()
	pending := 0
	for _, n := range s.pending {
		pending += n
	}
	s.mu.Unlock()

	return SessionState{
		TasksStarted: s.started.Load(),
		Failures:     s.failures.Load(),
		Reloads:      s.reloads.Load(),
		BusyNotes:    s.queue.busy(),
		Pending:      pending,
	}
}

// ComponentType implements introspection.Component.
func (s *Session) ComponentType() string {
	return "session"
}

var _ introspection.Introspectable = (*Session)(nil)
var _ introspection.Component = (*Session)(nil)
