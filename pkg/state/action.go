package state

import (
	"time"

	"github.com/aretw0/jotter/pkg/core"
)

// Action is one transition of the closed set below.
// The unexported method keeps the set closed to this package.
type Action interface {
	action()
}

// Load replaces the whole collection, typically with the result of a bulk read.
type Load struct {
	Notes []core.Note
	At    time.Time // fills missing timestamps
}

// Select points the selection at ID. An empty ID clears it.
type Select struct {
	ID string
}

// Create inserts or overwrites a note and selects it.
type Create struct {
	Note core.Note
	At   time.Time // used for timestamps the note does not carry
}

// Update merges Patch into the note with ID.
type Update struct {
	ID    string
	Patch core.Patch
	At    time.Time
}

// Delete removes the note with ID.
type Delete struct {
	ID string
}

// SetQuery replaces the search filter.
type SetQuery struct {
	Query string
}

// SetLoading marks whether a load or command is outstanding.
type SetLoading struct {
	Loading bool
}

// SetError records the message of the last failed operation. Empty clears it.
type SetError struct {
	Message string
}

func (Load) action()       {}
func (Select) action()     {}
func (Create) action()     {}
func (Update) action()     {}
func (Delete) action()     {}
func (SetQuery) action()   {}
func (SetLoading) action() {}
func (SetError) action()   {}

// stamp fills the zero At of time-dependent actions.
func stamp(a Action, now time.Time) Action {
	switch v := a.(type) {
	case Load:
		if v.At.IsZero() {
			v.At = now
		}
		return v
	case Create:
		if v.At.IsZero() {
			v.At = now
		}
		return v
	case Update:
		if v.At.IsZero() {
			v.At = now
		}
		return v
	}
	return a
}
