// Package session turns user intents into an immediate entity-store
// transition plus a durable write that resolves later.
//
// Every mutating call dispatches to the store before returning and hands
// back a Task for the durable side. Tasks touching the same note run in the
// order they were issued; tasks for different notes run in parallel. A failed
// task surfaces as the store's error message. The in-memory transition is
// never rolled back.
//
// Store listeners may run while the session holds its own lock, so they must
// not call back into the session.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"runtime/debug"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/lifecycle"
	"golang.org/x/sync/singleflight"

	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/state"
)

// IDGenerator produces note identifiers ahead of the durable create.
type IDGenerator interface {
	NewID() string
}

// Config holds the collaborators of a Session.
type Config struct {
	Repository core.Repository
	Store      *state.Store
	IDs        IDGenerator
	Clock      func() time.Time // defaults to time.Now
	Logger     *slog.Logger
}

// Session coordinates one store with one repository.
type Session struct {
	repo   core.Repository
	store  *state.Store
	ids    IDGenerator
	clock  func() time.Time
	logger *slog.Logger

	// tasks outlive the caller's context
	ctx    context.Context
	queue  *keyedQueue
	reload singleflight.Group
	wg     sync.WaitGroup

	// listing is write-held from a reload's List to its Load and read-held
	// by each durable write, so no write lands between the two
	listing sync.RWMutex
	mu      sync.Mutex
	pending map[string]int // notes with a durable write not yet settled

	started  atomic.Int64
	failures atomic.Int64
	reloads  atomic.Int64
}

// New creates a session. Repository, Store and IDs are required.
func New(config Config) *Session {
	s := &Session{
		repo:   config.Repository,
		store:  config.Store,
		ids:    config.IDs,
		clock:  config.Clock,
		logger: config.Logger,
		ctx:    context.Background(),
		queue:  newKeyedQueue(),

		pending: make(map[string]int),
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// Store returns the entity store driven by this session.
func (s *Session) Store() *state.Store {
	return s.store
}

// Repository returns the durable side of this session.
func (s *Session) Repository() core.Repository {
	return s.repo
}

// Bootstrap bulk-loads the store from the repository.
// The store shows loading while the list is in flight and the error message
// if it fails.
func (s *Session) Bootstrap(ctx context.Context) error {
	s.store.Dispatch(state.SetLoading{Loading: true})
	defer s.store.Dispatch(state.SetLoading{Loading: false})

	if err := s.Reload(ctx); err != nil {
		s.store.Dispatch(state.SetError{Message: err.Error()})
		return err
	}
	return nil
}

// Reload replaces the store's notes with the repository's. Notes with a
// durable write still pending keep their in-memory version.
// Concurrent calls share one List.
func (s *Session) Reload(ctx context.Context) error {
	_, err, shared := s.reload.Do("notes", func() (any, error) {
		s.listing.Lock()
		defer s.listing.Unlock()

		notes, err := s.repo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list notes: %w", err)
		}
		s.mu.Lock()
		s.store.Dispatch(state.Load{Notes: s.withPending(notes)})
		s.mu.Unlock()
		s.reloads.Add(1)
		return nil, nil
	})
	if shared {
		s.logger.Debug("reload shared")
	}
	return err
}

// Select marks id as the selected note.
func (s *Session) Select(id string) {
	s.store.Dispatch(state.Select{ID: id})
}

// Create adds a note. The id is chosen here so the store can show the note
// at once; if the repository has to pick another id the store follows it.
func (s *Session) Create(d core.Draft) *Task[core.Note] {
	if err := d.Validate(); err != nil {
		return s.reject("create", err)
	}

	now := core.Stamp(s.clock())
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = d.CreatedAt
	}

	provisional := d.ID
	if provisional == "" {
		provisional = s.ids.NewID()
		d.ID = provisional
	}
	var optimistic state.Action
	if _, taken := s.store.Snapshot().NotesByID[provisional]; taken {
		// the repository will pick a fresh id, show the note once it has
		provisional = ""
	} else {
		optimistic = state.Create{Note: core.Note{
			ID:        d.ID,
			Title:     d.Title,
			Content:   d.Content,
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		}, At: now}
	}

	return spawn(s, d.ID, "create", optimistic, func(ctx context.Context) (core.Note, error) {
		n, err := s.repo.Create(ctx, d)
		if err != nil {
			return n, err
		}
		if n.ID != provisional {
			s.logger.Debug("create settled on another id", "provisional", provisional, "id", n.ID)
			if provisional != "" {
				s.store.Dispatch(state.Delete{ID: provisional})
			}
			s.store.Dispatch(state.Create{Note: n})
		}
		return n, nil
	})
}

// Update merges p into the note id.
func (s *Session) Update(id string, p core.Patch) *Task[core.Note] {
	if err := p.Validate(); err != nil {
		return s.reject("update", err)
	}
	return spawn(s, id, "update", state.Update{ID: id, Patch: p}, func(ctx context.Context) (core.Note, error) {
		return s.repo.Update(ctx, id, p)
	})
}

// UpdateFields is Update for untyped input, e.g. decoded JSON.
func (s *Session) UpdateFields(id string, fields map[string]any) *Task[core.Note] {
	p, err := core.ParsePatch(fields)
	if err != nil {
		return s.reject("update", err)
	}
	return s.Update(id, p)
}

// Delete removes the note id. The task reports whether the repository held it.
func (s *Session) Delete(id string) *Task[bool] {
	return spawn(s, id, "delete", state.Delete{ID: id}, func(ctx context.Context) (bool, error) {
		return s.repo.Delete(ctx, id)
	})
}

// Search sets the store's query and asks the repository for the matches.
func (s *Session) Search(query string) *Task[[]core.Note] {
	return spawn(s, "", "search", state.SetQuery{Query: query}, func(ctx context.Context) ([]core.Note, error) {
		return s.repo.Search(ctx, query)
	})
}

// Save is the editor's save action: an empty id creates a note from the
// patch, any other id updates that note.
func (s *Session) Save(id string, p core.Patch) *Task[core.Note] {
	if id != "" {
		return s.Update(id, p)
	}
	var d core.Draft
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Content != nil {
		d.Content = *p.Content
	}
	return s.Create(d)
}

// Watch reloads the store whenever the repository reports an external
// change and forwards the event. The channel closes when ctx is done or the
// repository stops reporting.
func (s *Session) Watch(ctx context.Context) (<-chan core.Event, error) {
	w, ok := s.repo.(core.Watchable)
	if !ok {
		return nil, core.ErrWatchUnsupported
	}
	events, err := w.Watch(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan core.Event, 16)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		for e := range events {
			s.logger.Info("external change", "event", e.String())
			if err := s.Reload(ctx); err != nil {
				s.logger.Error("reload failed", "error", err)
				s.store.Dispatch(state.SetError{Message: err.Error()})
			}
			select {
			case out <- e:
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("watch stopped", "error", err)
	}))
	return out, nil
}

// Flush waits for every task issued so far.
func (s *Session) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// reject reports an argument error without touching the repository.
func (s *Session) reject(op string, err error) *Task[core.Note] {
	s.fail(op, err)
	return failed[core.Note](err)
}

func (s *Session) fail(op string, err error) {
	s.failures.Add(1)
	s.logger.Error("operation failed", "op", op, "error", err)
	s.store.Dispatch(state.SetError{Message: err.Error()})
}

// withPending overlays the store's version of every note with a pending
// write onto a listing: a note the store holds wins over the listed one, a
// note the store no longer holds stays out. Caller must hold s.mu.
func (s *Session) withPending(listed []core.Note) []core.Note {
	if len(s.pending) == 0 {
		return listed
	}
	current := s.store.Snapshot().NotesByID
	out := make([]core.Note, 0, len(listed)+len(s.pending))
	for _, n := range listed {
		if s.pending[n.ID] == 0 {
			out = append(out, n)
		}
	}
	for _, id := range slices.Sorted(maps.Keys(s.pending)) {
		if n, ok := current[id]; ok {
			out = append(out, n)
		}
	}
	return out
}

func (s *Session) settle(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[key]--; s.pending[key] <= 0 {
		delete(s.pending, key)
	}
}

// spawn applies optimistic, if any, and runs fn in the background after
// every earlier task for key. An empty key is not queued.
func spawn[T any](s *Session, key, op string, optimistic state.Action, fn func(context.Context) (T, error)) *Task[T] {
	t := newTask[T]()
	s.mu.Lock()
	if key != "" {
		s.pending[key]++
	}
	if optimistic != nil {
		s.store.Dispatch(optimistic)
	}
	s.mu.Unlock()

	turn, leave := s.queue.enter(key)
	s.wg.Add(1)
	s.started.Add(1)

	lifecycle.Go(s.ctx, func(ctx context.Context) (err error) {
		defer s.wg.Done()
		defer leave()
		if key != "" {
			defer s.settle(key)
		}
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s panic: %v", op, r)
				s.logger.Debug("task panic", "op", op, "stack", string(debug.Stack()))
				s.fail(op, err)
				var zero T
				t.resolve(zero, err)
			}
		}()

		<-turn
		if key != "" {
			s.listing.RLock()
			defer s.listing.RUnlock()
		}
		v, err := fn(ctx)
		if err != nil {
			s.fail(op, err)
			t.resolve(v, err)
			// already surfaced through the store
			return nil
		}
		t.resolve(v, nil)
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		if !errors.Is(err, context.Canceled) {
			s.logger.Error("task stopped", "op", op, "error", err)
		}
	}))
	return t
}
