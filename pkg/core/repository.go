package core

import "context"

// Repository defines the contract for storing and retrieving notes.
// Adhering to this interface keeps the session and the entity store
// independent of the storage medium (local key-value store today, a remote
// transport tomorrow). Every method resolves to a single result.
type Repository interface {
	// List returns all notes, newest first.
	List(ctx context.Context) ([]Note, error)

	// Get retrieves a note by its ID. A missing note is reported with ok=false, not an error.
	Get(ctx context.Context, id string) (n Note, ok bool, err error)

	// Create persists a new note, generating an ID when the draft has none.
	Create(ctx context.Context, d Draft) (Note, error)

	// Update merges the patch into an existing note. Unknown IDs fail with ErrNotFound.
	Update(ctx context.Context, id string, p Patch) (Note, error)

	// Delete removes a note and reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)

	// Search returns notes whose title or content contains query, ignoring case.
	Search(ctx context.Context, query string) ([]Note, error)
}

// Watchable defines an interface for storage that reports external changes.
type Watchable interface {
	Watch(ctx context.Context) (<-chan Event, error)
}
