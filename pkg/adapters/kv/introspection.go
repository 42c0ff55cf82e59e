package kv

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Namespace      string `json:"namespace"`
	Durable        string `json:"durable_backend"`
	Active         string `json:"active_backend"`
	FallbackReason string `json:"fallback_reason,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StoreState{
		Namespace:      s.namespace,
		Durable:        s.durable.Name(),
		Active:         s.active.Name(),
		FallbackReason: s.fallback,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "kv-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
