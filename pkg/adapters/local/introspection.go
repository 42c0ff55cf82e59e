package local

import (
	"github.com/aretw0/introspection"

	"github.com/aretw0/jotter/pkg/core"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Namespace string `json:"namespace"`
	Notes     int    `json:"notes"`
	Fallback  bool   `json:"fallback"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.Lock()
	count := len(r.load())
	r.mu.Unlock()

	return RepositoryState{
		Namespace: r.store.Namespace(),
		Notes:     count,
		Fallback:  r.store.Fallback(),
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "repository"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
var _ core.Repository = (*Repository)(nil)
var _ core.Watchable = (*Repository)(nil)
