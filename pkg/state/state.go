// Package state holds the in-memory note collection.
//
// State is an immutable snapshot; Reduce computes the next snapshot for one
// Action and never mutates its input. Store owns the current snapshot for a
// session and notifies subscribers after every transition.
package state

import (
	"fmt"
	"slices"

	"github.com/aretw0/jotter/pkg/core"
)

// State is the complete collection snapshot.
// Treat it as read-only; Reduce copies whatever it changes.
type State struct {
	NotesByID map[string]core.Note
	Order     []string // most recently touched first
	Selected  string   // empty when nothing is selected
	Loading   bool
	Error     string // empty when the last operation succeeded
	Query     string
}

// Empty returns the initial state.
func Empty() State {
	return State{NotesByID: map[string]core.Note{}, Order: []string{}}
}

// Notes returns the notes in display order.
func (s State) Notes() []core.Note {
	out := make([]core.Note, 0, len(s.Order))
	for _, id := range s.Order {
		out = append(out, s.NotesByID[id])
	}
	return out
}

// Visible returns the notes in display order that match Query.
func (s State) Visible() []core.Note {
	return core.Filter(s.Notes(), s.Query)
}

// SelectedNote returns the selected note, if the selection points at one.
func (s State) SelectedNote() (core.Note, bool) {
	if s.Selected == "" {
		return core.Note{}, false
	}
	n, ok := s.NotesByID[s.Selected]
	return n, ok
}

// Check reports the first violated collection invariant.
// A selection that points at nothing is allowed because Select does not
// validate its argument.
func (s State) Check() error {
	if len(s.Order) != len(s.NotesByID) {
		return fmt.Errorf("order has %d ids, notes has %d", len(s.Order), len(s.NotesByID))
	}
	seen := make(map[string]bool, len(s.Order))
	for _, id := range s.Order {
		if seen[id] {
			return fmt.Errorf("duplicate id %q in order", id)
		}
		seen[id] = true
		n, ok := s.NotesByID[id]
		if !ok {
			return fmt.Errorf("ordered id %q has no note", id)
		}
		if n.ID != id {
			return fmt.Errorf("note keyed %q carries id %q", id, n.ID)
		}
		if n.UpdatedAt.Before(n.CreatedAt) {
			return fmt.Errorf("note %q updated before it was created", id)
		}
	}
	return nil
}

func (s State) clone() State {
	next := s
	next.NotesByID = make(map[string]core.Note, len(s.NotesByID)+1)
	for k, v := range s.NotesByID {
		next.NotesByID[k] = v
	}
	next.Order = slices.Clone(s.Order)
	if next.Order == nil {
		next.Order = []string{}
	}
	return next
}

// moveToFront returns order with id first and no other occurrence of it.
func moveToFront(order []string, id string) []string {
	out := make([]string, 0, len(order)+1)
	out = append(out, id)
	for _, o := range order {
		if o != id {
			out = append(out, o)
		}
	}
	return out
}
