// Package jotter is the Composition Root for the jotter note store.
//
// It wires an in-memory entity store, a durable persistence adapter and an
// address synchronizer into one session.
//
// Architecture:
//
//   - pkg/state: the single authoritative collection state, changed only by a
//     closed set of actions applied through a pure reducer.
//   - pkg/adapters/local: the persistence adapter over a namespaced key-value
//     store (pkg/adapters/kv) with file, SQLite and in-memory backends.
//   - pkg/session: applies every intent to the store at once and runs the
//     durable write in the background, ordered per note.
//   - pkg/route: keeps a navigable address ("/", "/note/<id>") in step with
//     the selected note.
//
// Usage:
//
//	app, err := jotter.New(".jotter", jotter.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer app.Close()
//	if err := app.Start(ctx); err != nil {
//		return err
//	}
//
//	note, err := app.Session.Create(core.Draft{Title: "Groceries"}).Wait(ctx)
package jotter
