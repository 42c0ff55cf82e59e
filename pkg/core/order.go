package core

import (
	"slices"
	"strings"
	"time"
)

// Normalize fills missing timestamps with now and keeps UpdatedAt >= CreatedAt.
func Normalize(n Note, now time.Time) Note {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = Stamp(now)
	} else {
		n.CreatedAt = Stamp(n.CreatedAt)
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = Stamp(now)
	} else {
		n.UpdatedAt = Stamp(n.UpdatedAt)
	}
	if n.UpdatedAt.Before(n.CreatedAt) {
		n.UpdatedAt = n.CreatedAt
	}
	return n
}

// CompareRecency orders a before b when a was touched more recently.
// Ties on UpdatedAt fall back to CreatedAt; full ties compare equal.
func CompareRecency(a, b Note) int {
	if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
		return c
	}
	return b.CreatedAt.Compare(a.CreatedAt)
}

// SortByRecency sorts notes newest first. The sort is stable.
func SortByRecency(notes []Note) {
	slices.SortStableFunc(notes, CompareRecency)
}

// Matches reports whether the note's title or content contains query,
// ignoring case. An empty query matches everything.
func Matches(n Note, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(n.Title), q) ||
		strings.Contains(strings.ToLower(n.Content), q)
}

// Filter returns the notes matching query, preserving order.
func Filter(notes []Note, query string) []Note {
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if Matches(n, query) {
			out = append(out, n)
		}
	}
	return out
}
