// Package route keeps a navigable address in step with the note selection.
//
// Two address forms exist: "/" (home) and "/note/<percent-encoded id>".
// Anything else is treated as home.
package route

import (
	"net/url"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// HomeAddress is the canonical address of Home.
	HomeAddress = "/"

	notePrefix  = "/note/"
	notePattern = "/note/*"
)

// Location is a parsed address: Home, or a reference to one note.
type Location struct {
	// ID is the referenced note, empty for Home.
	ID string
}

// Home is the location that references no note.
var Home = Location{}

// NoteRef returns the location referencing id. An empty id is Home.
func NoteRef(id string) Location {
	return Location{ID: id}
}

// IsHome reports whether l references no note.
func (l Location) IsHome() bool {
	return l.ID == ""
}

// String returns the canonical address of l.
func (l Location) String() string {
	if l.IsHome() {
		return HomeAddress
	}
	return notePrefix + escapeID(l.ID)
}

// escapeID percent-encodes every byte outside A-Z a-z 0-9 and -_.!~*'(),
// the set browsers leave alone in a URI component.
func escapeID(id string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(id))
	for i := 0; i < len(id); i++ {
		c := id[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

// Canonical returns the location for a selection; empty means Home.
func Canonical(selected string) Location {
	return NoteRef(selected)
}

// Parse converts an address into a Location. Query strings and fragments are
// ignored; unknown or malformed addresses yield Home.
func Parse(address string) Location {
	path, _, _ := strings.Cut(address, "#")
	path, _, _ = strings.Cut(path, "?")

	if ok, err := doublestar.Match(notePattern, path); err != nil || !ok {
		return Home
	}
	id, err := url.PathUnescape(strings.TrimPrefix(path, notePrefix))
	if err != nil {
		return Home
	}
	return NoteRef(id)
}
