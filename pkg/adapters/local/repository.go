// Package local implements core.Repository on top of a namespaced key-value store.
//
// All notes live under the "notes" key of the namespace root:
//
//	{ "notes": { "<id>": { "id", "title", "content", "createdAt", "updatedAt" } } }
//
// Whatever is read back is normalized, so corrupt or older entries degrade to
// safe defaults instead of failing the caller.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/jotter/pkg/adapters/kv"
	"github.com/aretw0/jotter/pkg/core"
)

// NotesKey is the root key holding the note map.
const NotesKey = "notes"

// IDGenerator produces candidate note identifiers.
type IDGenerator interface {
	NewID() string
}

// Config holds the configuration for the local repository.
type Config struct {
	Store  *kv.Store
	IDs    IDGenerator
	Clock  func() time.Time // defaults to time.Now
	Logger *slog.Logger
}

// Repository implements core.Repository over a kv.Store.
type Repository struct {
	store  *kv.Store
	ids    IDGenerator
	clock  func() time.Time
	logger *slog.Logger

	// serializes read-modify-write cycles on the root object
	mu sync.Mutex
}

// NewRepository creates a repository from config.
func NewRepository(config Config) *Repository {
	r := &Repository{
		store:  config.Store,
		ids:    config.IDs,
		clock:  config.Clock,
		logger: config.Logger,
	}
	if r.clock == nil {
		r.clock = time.Now
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	return r
}

func (r *Repository) now() time.Time {
	return core.Stamp(r.clock())
}

// List returns all notes, newest first.
func (r *Repository) List(ctx context.Context) ([]core.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	notes := r.load()
	r.mu.Unlock()
	return sorted(notes), nil
}

// Get retrieves a note by its ID.
func (r *Repository) Get(ctx context.Context, id string) (core.Note, bool, error) {
	if err := ctx.Err(); err != nil {
		return core.Note{}, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.load()[id]
	return n, ok, nil
}

// Create persists a new note.
//
// Workflow:
//  1. Validate the draft.
//  2. Use the draft ID or generate one.
//  3. On collision, regenerate once; a second collision fails with core.ErrConflict.
//  4. Stamp timestamps not supplied by the draft and persist.
func (r *Repository) Create(ctx context.Context, d core.Draft) (core.Note, error) {
	if err := ctx.Err(); err != nil {
		return core.Note{}, err
	}
	if err := d.Validate(); err != nil {
		return core.Note{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	notes := r.load()

	id := d.ID
	if id == "" {
		id = r.ids.NewID()
	}
	if _, taken := notes[id]; taken {
		r.logger.Debug("id collision, regenerating", "id", id)
		id = r.ids.NewID()
		if _, taken := notes[id]; taken || id == "" {
			return core.Note{}, fmt.Errorf("%w: %s", core.ErrConflict, id)
		}
	}

	now := r.now()
	created := d.CreatedAt
	if created.IsZero() {
		created = now
	}
	updated := d.UpdatedAt
	if updated.IsZero() {
		updated = created
	}
	n := core.Normalize(core.Note{
		ID:        id,
		Title:     d.Title,
		Content:   d.Content,
		CreatedAt: created,
		UpdatedAt: updated,
	}, now)

	notes[id] = n
	r.save(notes)
	r.logger.Debug("note created", "id", id)
	return n, nil
}

// Update merges title/content into an existing note and stamps UpdatedAt.
func (r *Repository) Update(ctx context.Context, id string, p core.Patch) (core.Note, error) {
	if err := ctx.Err(); err != nil {
		return core.Note{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	notes := r.load()

	n, ok := notes[id]
	if !ok {
		return core.Note{}, fmt.Errorf("failed to update %q: %w", id, core.ErrNotFound)
	}
	if err := p.Validate(); err != nil {
		return core.Note{}, fmt.Errorf("failed to update %q: %w", id, err)
	}

	n = p.Apply(n)
	n.UpdatedAt = core.Touch(n.UpdatedAt, r.clock())
	notes[id] = n
	r.save(notes)
	r.logger.Debug("note updated", "id", id)
	return n, nil
}

// Delete removes a note and reports whether it existed.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	notes := r.load()
	if _, ok := notes[id]; !ok {
		return false, nil
	}
	delete(notes, id)
	r.save(notes)
	r.logger.Debug("note deleted", "id", id)
	return true, nil
}

// Search returns notes whose title or content contains query, ignoring case.
func (r *Repository) Search(ctx context.Context, query string) ([]core.Note, error) {
	notes, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return core.Filter(notes, query), nil
}

// Watch reports note changes made outside this process.
// It fails with core.ErrWatchUnsupported when the active backend cannot watch.
func (r *Repository) Watch(ctx context.Context) (<-chan core.Event, error) {
	return r.store.Watch(ctx)
}

// load decodes the note map from the root. Entries missing a timestamp get
// one from the clock and are written back at once, so every later read sees
// the same value. Caller must hold r.mu.
func (r *Repository) load() map[string]core.Note {
	raw, _ := r.store.GetAll()[NotesKey].(map[string]any)
	now := r.now()
	notes := make(map[string]core.Note, len(raw))
	repaired := 0
	for id, v := range raw {
		if id == "" {
			continue
		}
		fields, _ := v.(map[string]any)
		n, ok := decodeNote(id, fields, now)
		if !ok {
			repaired++
		}
		notes[id] = n
	}
	if repaired > 0 {
		r.logger.Debug("stamping notes without timestamps", "count", repaired)
		r.save(notes)
	}
	return notes
}

// save writes the note map back, keeping any other root keys. Caller must hold r.mu.
func (r *Repository) save(notes map[string]core.Note) {
	root := r.store.GetAll()
	root[NotesKey] = notes
	r.store.SetAll(root)
}

func sorted(notes map[string]core.Note) []core.Note {
	out := make([]core.Note, 0, len(notes))
	for _, n := range notes {
		out = append(out, n)
	}
	// id order first so that recency ties come out deterministic
	slices.SortFunc(out, func(a, b core.Note) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	core.SortByRecency(out)
	return out
}

// decodeNote builds a note from loosely typed JSON, replacing anything
// missing or malformed with defaults. It reports false when a timestamp had
// to be taken from now.
func decodeNote(id string, fields map[string]any, now time.Time) (core.Note, bool) {
	title, _ := fields["title"].(string)
	content, _ := fields["content"].(string)
	n := core.Note{
		ID:        id,
		Title:     title,
		Content:   content,
		CreatedAt: decodeTime(fields["createdAt"]),
		UpdatedAt: decodeTime(fields["updatedAt"]),
	}
	complete := !n.CreatedAt.IsZero() && !n.UpdatedAt.IsZero()
	return core.Normalize(n, now), complete
}

// decodeTime accepts RFC 3339 strings and unix milliseconds.
func decodeTime(v any) time.Time {
	switch t := v.(type) {
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	case json.Number:
		if ms, err := t.Int64(); err == nil && ms > 0 {
			return time.UnixMilli(ms)
		}
		if f, err := t.Float64(); err == nil && f > 0 {
			return time.UnixMilli(int64(f))
		}
	case float64:
		if t > 0 {
			return time.UnixMilli(int64(t))
		}
	}
	return time.Time{}
}
