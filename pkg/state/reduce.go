package state

import (
	"slices"

	"github.com/aretw0/jotter/pkg/core"
)

// Reduce returns the state that results from applying a to s.
// It is total: actions that do not apply (unknown ids, missing ids, nil)
// return s unchanged.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case Load:
		return reduceLoad(s, a)
	case Select:
		s.Selected = a.ID
		return s
	case Create:
		return reduceCreate(s, a)
	case Update:
		return reduceUpdate(s, a)
	case Delete:
		return reduceDelete(s, a)
	case SetQuery:
		s.Query = a.Query
		return s
	case SetLoading:
		s.Loading = a.Loading
		return s
	case SetError:
		s.Error = a.Message
		return s
	default:
		return s
	}
}

func reduceLoad(s State, a Load) State {
	notes := make([]core.Note, 0, len(a.Notes))
	index := make(map[string]int, len(a.Notes))
	for _, n := range a.Notes {
		if n.ID == "" {
			continue
		}
		n = core.Normalize(n, a.At)
		// a repeated id keeps its first position and its last value
		if i, dup := index[n.ID]; dup {
			notes[i] = n
			continue
		}
		index[n.ID] = len(notes)
		notes = append(notes, n)
	}
	core.SortByRecency(notes)

	next := s
	next.NotesByID = make(map[string]core.Note, len(notes))
	next.Order = make([]string, 0, len(notes))
	for _, n := range notes {
		next.NotesByID[n.ID] = n
		next.Order = append(next.Order, n.ID)
	}
	if _, ok := next.NotesByID[s.Selected]; !ok {
		next.Selected = ""
		if len(next.Order) > 0 {
			next.Selected = next.Order[0]
		}
	}
	next.Error = ""
	return next
}

func reduceCreate(s State, a Create) State {
	n := a.Note
	if n.ID == "" {
		return s
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = a.At
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = a.At
	}
	n = core.Normalize(n, a.At)

	next := s.clone()
	next.NotesByID[n.ID] = n
	next.Order = moveToFront(next.Order, n.ID)
	next.Selected = n.ID
	next.Error = ""
	return next
}

func reduceUpdate(s State, a Update) State {
	n, ok := s.NotesByID[a.ID]
	if !ok {
		return s
	}
	n = a.Patch.Apply(n)
	n.UpdatedAt = core.Touch(n.UpdatedAt, a.At)

	next := s.clone()
	next.NotesByID[a.ID] = n
	next.Order = moveToFront(next.Order, a.ID)
	next.Error = ""
	return next
}

func reduceDelete(s State, a Delete) State {
	if _, ok := s.NotesByID[a.ID]; !ok {
		return s
	}

	next := s.clone()
	delete(next.NotesByID, a.ID)
	next.Order = slices.DeleteFunc(next.Order, func(o string) bool { return o == a.ID })
	if next.Selected == a.ID {
		next.Selected = ""
		if len(next.Order) > 0 {
			next.Selected = next.Order[0]
		}
	}
	next.Error = ""
	return next
}
