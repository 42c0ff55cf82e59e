package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/introspection"

	"github.com/aretw0/jotter/pkg/adapters/kv"
	"github.com/aretw0/jotter/pkg/adapters/local"
	"github.com/aretw0/jotter/pkg/ident"
	"github.com/aretw0/jotter/pkg/route"
	"github.com/aretw0/jotter/pkg/session"
	"github.com/aretw0/jotter/pkg/state"
)

// flushTimeout bounds how long Close waits for pending durable writes.
const flushTimeout = 5 * time.Second

// App is one wired note session.
type App struct {
	DataDir    string
	Backend    string
	KV         *kv.Store
	Repository *local.Repository
	Entities   *state.Store
	Session    *session.Session
	History    route.History
	Router     *route.Synchronizer

	logger *slog.Logger
}

// New wires an App over the data directory dataDir.
//
//	app, err := jotter.New(".jotter", jotter.WithBackendName("sqlite"))
//
// Nothing is read until Start.
func New(dataDir string, opts ...Option) (*App, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if o.namespace == "" {
		return nil, fmt.Errorf("namespace must not be empty")
	}

	backend, dir, err := openBackend(dataDir, o, logger)
	if err != nil {
		return nil, err
	}

	store := kv.New(o.namespace, backend, kv.WithLogger(logger))

	ids := ident.New(o.idPrefix)
	var storeOpts []state.Option
	if o.clock != nil {
		ids.Now = o.clock
		storeOpts = append(storeOpts, state.WithClock(o.clock))
	}
	storeOpts = append(storeOpts, state.WithLogger(logger))

	repo := local.NewRepository(local.Config{
		Store:  store,
		IDs:    ids,
		Clock:  o.clock,
		Logger: logger,
	})
	entities := state.NewStore(storeOpts...)
	sess := session.New(session.Config{
		Repository: repo,
		Store:      entities,
		IDs:        ids,
		Clock:      o.clock,
		Logger:     logger,
	})

	history := o.history
	if history == nil {
		history = route.NewMemoryHistory(route.HomeAddress)
	}

	name := o.backendName
	if o.backend != nil {
		name = o.backend.Name()
	}

	return &App{
		DataDir:    dir,
		Backend:    name,
		KV:         store,
		Repository: repo,
		Entities:   entities,
		Session:    sess,
		History:    history,
		Router:     route.NewSynchronizer(entities, history, logger),
		logger:     logger,
	}, nil
}

// openBackend resolves the data directory and creates the named backend.
func openBackend(dataDir string, o *options, logger *slog.Logger) (kv.Backend, string, error) {
	if o.backend != nil {
		return o.backend, dataDir, nil
	}

	tempDir, _ := o.config["temp_dir"].(bool)
	// Default to true (safe) if not present.
	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}

	useTemp := tempDir || (IsDevRun() && devSafety)
	dir := ResolveDataDir(dataDir, useTemp)

	if IsDevRun() {
		if devSafety {
			logger.Debug("running in SAFE mode (dev sandbox enabled)", "path", dir)
		} else {
			logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", dir)
		}
	}
	if useTemp && dir != dataDir {
		logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", dataDir, "resolved_path", dir)
	}

	switch o.backendName {
	case BackendFile, "":
		return kv.NewFileBackend(dir, logger), dir, nil
	case BackendSQLite:
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, dir, fmt.Errorf("failed to create data directory: %w", err)
		}
		db, err := kv.OpenSQLite(filepath.Join(dir, o.namespace+".db"))
		if err != nil {
			return nil, dir, err
		}
		return db, dir, nil
	case BackendMemory:
		return nil, dir, nil
	default:
		return nil, dir, fmt.Errorf("unknown backend: %s", o.backendName)
	}
}

// Start loads the notes and begins syncing the address with the selection.
func (a *App) Start(ctx context.Context) error {
	if err := a.Session.Bootstrap(ctx); err != nil {
		return err
	}
	a.Router.Start()
	return nil
}

// Close stops routing, waits for pending writes and releases the backend.
func (a *App) Close() error {
	a.Router.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	flushErr := a.Session.Flush(ctx)
	if flushErr != nil {
		a.logger.Warn("pending writes abandoned", "error", flushErr)
	}
	return errors.Join(flushErr, a.KV.Close())
}

// Components lists every observable component of the app.
func (a *App) Components() []introspection.Component {
	return []introspection.Component{a.KV, a.Repository, a.Entities, a.Session, a.Router}
}

// Status returns the observable state of every component keyed by type.
func (a *App) Status() map[string]any {
	out := make(map[string]any)
	for _, c := range a.Components() {
		if i, ok := c.(introspection.Introspectable); ok {
			out[c.ComponentType()] = i.State()
		}
	}
	return out
}
