package local_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/jotter/pkg/adapters/kv"
	"github.com/aretw0/jotter/pkg/adapters/local"
	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/ident"
)

// seqIDs hands out a fixed sequence of ids.
type seqIDs struct {
	ids []string
	n   int
}

func (s *seqIDs) NewID() string {
	id := s.ids[s.n%len(s.ids)]
	s.n++
	return id
}

// fakeClock advances by one second on every read.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func newRepo(t *testing.T, backend kv.Backend) (*local.Repository, *kv.Store) {
	t.Helper()
	store := kv.New("jotter.notes", backend)
	repo := local.NewRepository(local.Config{
		Store: store,
		IDs:   &ident.Generator{},
		Clock: newClock().Now,
	})
	return repo, store
}

func TestRepository_CreateThenList(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t, kv.NewMemoryBackend())

	created, err := repo.Create(ctx, core.Draft{Title: "A"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "", created.Content)
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt), "createdAt == updatedAt on creation")

	notes, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "A", notes[0].Title)
	assert.True(t, notes[0].CreatedAt.Equal(notes[0].UpdatedAt))
}

func TestRepository_CreateThenGet(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t, kv.NewMemoryBackend())

	created, err := repo.Create(ctx, core.Draft{Title: "T", Content: "C"})
	require.NoError(t, err)

	got, ok, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, created.Content, got.Content)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, created.UpdatedAt.Equal(got.UpdatedAt))
}

func TestRepository_GetMissingIsNotAnError(t *testing.T) {
	repo, _ := newRepo(t, kv.NewMemoryBackend())

	_, ok, err := repo.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepository_CreateCollision(t *testing.T) {
	ctx := context.Background()
	store := kv.New("ns", kv.NewMemoryBackend())

	t.Run("Regenerates Once", func(t *testing.T) {
		ids := &seqIDs{ids: []string{"fresh"}}
		repo := local.NewRepository(local.Config{Store: store, IDs: ids})

		_, err := repo.Create(ctx, core.Draft{ID: "taken"})
		require.NoError(t, err)

		n, err := repo.Create(ctx, core.Draft{ID: "taken", Title: "second"})
		require.NoError(t, err)
		assert.Equal(t, "fresh", n.ID)
		assert.Equal(t, 1, ids.n, "exactly one regeneration")
	})

	t.Run("Gives Up After One Retry", func(t *testing.T) {
		ids := &seqIDs{ids: []string{"taken"}}
		repo := local.NewRepository(local.Config{Store: store, IDs: ids})

		_, err := repo.Create(ctx, core.Draft{})
		assert.ErrorIs(t, err, core.ErrConflict)
		assert.Equal(t, 2, ids.n)
	})
}

func TestRepository_CreateKeepsSuppliedTimestamps(t *testing.T) {
	repo, _ := newRepo(t, kv.NewMemoryBackend())
	at := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	n, err := repo.Create(context.Background(), core.Draft{ID: "x", CreatedAt: at})
	require.NoError(t, err)
	assert.True(t, n.CreatedAt.Equal(at))
	assert.True(t, n.UpdatedAt.Equal(at))
}

func TestRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t, kv.NewMemoryBackend())

	a, err := repo.Create(ctx, core.Draft{Title: "A", Content: "keep"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, core.Draft{Title: "B"})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, a.ID, core.Patch{}.SetTitle("Z"))
	require.NoError(t, err)
	assert.Equal(t, "Z", updated.Title)
	assert.Equal(t, "keep", updated.Content)
	assert.True(t, updated.UpdatedAt.After(a.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(a.CreatedAt))

	notes, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, a.ID, notes[0].ID, "updated note is newest")
}

func TestRepository_UpdateStampsStrictlyLaterWithFrozenClock(t *testing.T) {
	ctx := context.Background()
	frozen := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	repo := local.NewRepository(local.Config{
		Store: kv.New("ns", nil),
		IDs:   &ident.Generator{},
		Clock: func() time.Time { return frozen },
	})

	n, err := repo.Create(ctx, core.Draft{})
	require.NoError(t, err)
	u, err := repo.Update(ctx, n.ID, core.Patch{}.SetContent("x"))
	require.NoError(t, err)
	assert.True(t, u.UpdatedAt.After(n.UpdatedAt))
}

func TestRepository_UpdateErrors(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t, kv.NewMemoryBackend())

	_, err := repo.Update(ctx, "missing-id", core.Patch{}.SetTitle("x"))
	assert.ErrorIs(t, err, core.ErrNotFound)

	n, err := repo.Create(ctx, core.Draft{})
	require.NoError(t, err)
	_, err = repo.Update(ctx, n.ID, core.Patch{}.SetTitle(string([]byte{0xff})))
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t, kv.NewMemoryBackend())

	n, err := repo.Create(ctx, core.Draft{})
	require.NoError(t, err)

	removed, err := repo.Delete(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, n.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	notes, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestRepository_Search(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t, kv.NewMemoryBackend())

	for _, d := range []core.Draft{
		{Title: "Groceries", Content: "milk, eggs"},
		{Title: "Ideas", Content: "Buy a MILK frother"},
		{Title: "Travel", Content: "passport"},
	} {
		_, err := repo.Create(ctx, d)
		require.NoError(t, err)
	}

	hits, err := repo.Search(ctx, "milk")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "Ideas", hits[0].Title, "newest first")

	hits, err = repo.Search(ctx, "TRAVEL")
	require.NoError(t, err)
	require.Len(t, hits, 1)

	all, err := repo.Search(ctx, "")
	require.NoError(t, err)
	listed, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, listed, all)
}

func TestRepository_NormalizesCorruptEntries(t *testing.T) {
	backend := kv.NewMemoryBackend()
	raw := `{
		"notes": {
			"good": {"id": "good", "title": "ok", "content": "c", "createdAt": "2024-05-01T10:00:00Z", "updatedAt": "2024-05-01T11:00:00Z"},
			"numeric": {"title": 12, "createdAt": 1714557600000, "updatedAt": 1714561200000},
			"garbage": "not an object",
			"skewed": {"createdAt": "2024-05-01T12:00:00Z", "updatedAt": "2024-05-01T09:00:00Z"}
		},
		"prefs": {"theme": "dark"}
	}`
	require.NoError(t, backend.Write("jotter.notes", []byte(raw)))
	repo, store := newRepo(t, backend)
	ctx := context.Background()

	notes, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 4)

	byID := make(map[string]core.Note)
	for _, n := range notes {
		byID[n.ID] = n
		assert.False(t, n.UpdatedAt.Before(n.CreatedAt), "note %s", n.ID)
	}
	assert.Equal(t, "ok", byID["good"].Title)
	assert.Equal(t, "", byID["numeric"].Title)
	assert.Equal(t, int64(1714557600000), byID["numeric"].CreatedAt.UnixMilli())
	assert.Equal(t, "", byID["garbage"].Content)
	assert.False(t, byID["garbage"].CreatedAt.IsZero())

	// Writes keep unrelated root keys.
	_, err = repo.Create(ctx, core.Draft{Title: "new"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"theme": "dark"}, store.GetAll()["prefs"])
}

func TestRepository_StampsMissingTimestampsOnce(t *testing.T) {
	backend := kv.NewMemoryBackend()
	raw := `{"notes": {"bare": {"title": "no dates"}}}`
	require.NoError(t, backend.Write("jotter.notes", []byte(raw)))
	repo, store := newRepo(t, backend)
	ctx := context.Background()

	first, ok, err := repo.Get(ctx, "bare")
	require.NoError(t, err)
	require.True(t, ok)
	second, _, err := repo.Get(ctx, "bare")
	require.NoError(t, err)

	assert.True(t, first.CreatedAt.Equal(second.CreatedAt), "createdAt must not move between reads")
	assert.True(t, first.UpdatedAt.Equal(second.UpdatedAt))

	stored, _ := store.GetAll()[local.NotesKey].(map[string]any)["bare"].(map[string]any)
	assert.NotEmpty(t, stored["createdAt"])
	assert.Equal(t, "no dates", stored["title"])
}

func TestRepository_CorruptRootListsEmpty(t *testing.T) {
	backend := kv.NewMemoryBackend()
	require.NoError(t, backend.Write("jotter.notes", []byte("{{{{")))
	repo, _ := newRepo(t, backend)

	notes, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, notes)
}

type brokenBackend struct{}

func (brokenBackend) Name() string                      { return "broken" }
func (brokenBackend) Read(string) ([]byte, bool, error) { return nil, false, errors.New("denied") }
func (brokenBackend) Write(string, []byte) error        { return errors.New("denied") }
func (brokenBackend) Remove(string) error               { return errors.New("denied") }

func TestRepository_FallsBackWhenDurableBackendThrows(t *testing.T) {
	ctx := context.Background()
	repo, store := newRepo(t, brokenBackend{})

	n, err := repo.Create(ctx, core.Draft{Title: "survives"})
	require.NoError(t, err)

	notes, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, n.ID, notes[0].ID)
	assert.True(t, store.Fallback())

	state := repo.State().(local.RepositoryState)
	assert.Equal(t, 1, state.Notes)
	assert.True(t, state.Fallback)
}

func TestRepository_HonoursCanceledContext(t *testing.T) {
	repo, _ := newRepo(t, kv.NewMemoryBackend())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Create(ctx, core.Draft{})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = repo.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRepository_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, _ := newRepo(t, kv.NewFileBackend(dir, nil))
	n, err := first.Create(ctx, core.Draft{Title: "durable"})
	require.NoError(t, err)

	second, _ := newRepo(t, kv.NewFileBackend(dir, nil))
	got, ok, err := second.Get(ctx, n.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "durable", got.Title)
	assert.True(t, n.UpdatedAt.Equal(got.UpdatedAt))
}
