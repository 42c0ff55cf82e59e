package core

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Note is the central entity of the domain.
// It is fully defined by these five fields; storage adapters never persist
// partial variants.
type Note struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Content   string    `json:"content" yaml:"content"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Draft describes a note to be created. Empty ID means "generate one".
// Zero timestamps are stamped by whoever persists the draft.
type Draft struct {
	ID        string
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate rejects drafts that cannot be stored as text.
func (d Draft) Validate() error {
	for field, v := range map[string]string{"id": d.ID, "title": d.Title, "content": d.Content} {
		if !utf8.ValidString(v) {
			return fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalidInput, field)
		}
	}
	return nil
}

// Patch is a partial update of the mutable note fields.
// A nil field is left untouched.
type Patch struct {
	Title   *string `json:"title,omitempty" yaml:"title,omitempty"`
	Content *string `json:"content,omitempty" yaml:"content,omitempty"`
}

// SetTitle returns a copy of p that replaces the title.
func (p Patch) SetTitle(title string) Patch {
	p.Title = &title
	return p
}

// SetContent returns a copy of p that replaces the content.
func (p Patch) SetContent(content string) Patch {
	p.Content = &content
	return p
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Content == nil
}

// Validate rejects patches carrying text that cannot be stored.
func (p Patch) Validate() error {
	if p.Title != nil && !utf8.ValidString(*p.Title) {
		return fmt.Errorf("%w: title is not valid UTF-8", ErrInvalidInput)
	}
	if p.Content != nil && !utf8.ValidString(*p.Content) {
		return fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidInput)
	}
	return nil
}

// Apply merges the patch into n. Timestamps are not touched.
func (p Patch) Apply(n Note) Note {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	return n
}

// ParsePatch converts untyped input (decoded JSON, CLI flags) into a Patch.
// Only "title" and "content" are accepted and both must be strings.
func ParsePatch(fields map[string]any) (Patch, error) {
	if fields == nil {
		return Patch{}, fmt.Errorf("%w: patch must be an object", ErrInvalidInput)
	}
	var p Patch
	for k, v := range fields {
		s, ok := v.(string)
		switch {
		case k != "title" && k != "content":
			return Patch{}, fmt.Errorf("%w: field %q cannot be updated", ErrInvalidInput, k)
		case !ok:
			return Patch{}, fmt.Errorf("%w: field %q must be a string, got %T", ErrInvalidInput, k, v)
		case k == "title":
			p = p.SetTitle(s)
		default:
			p = p.SetContent(s)
		}
	}
	return p, p.Validate()
}

// Now returns the current time at the precision notes are stored with.
func Now() time.Time {
	return Stamp(time.Now())
}

// Stamp truncates t to millisecond precision in UTC.
func Stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// Touch returns a timestamp that is strictly after prev, preferring now.
func Touch(prev, now time.Time) time.Time {
	now = Stamp(now)
	if !now.After(prev) {
		return Stamp(prev).Add(time.Millisecond)
	}
	return now
}
