package kv

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/jotter/pkg/core"
)

const debounceDelay = 50 * time.Millisecond

type watchWorker struct {
	backend   *FileBackend
	key       string
	pattern   string
	events    chan<- core.Event
	watcher   *fsnotify.Watcher
	debouncer *debouncer
}

func newWatchWorker(backend *FileBackend, key string, events chan<- core.Event) *watchWorker {
	return &watchWorker{
		backend: backend,
		key:     key,
		pattern: fileName(key), // sanitized names carry no glob metacharacters
		events:  events,
	}
}

func (w *watchWorker) logger() *slog.Logger {
	if w.backend.Logger != nil {
		return w.backend.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Start registers the data directory and spawns the event loop.
func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(w.backend.Dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.backend.Dir, err)
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(debounceDelay)

	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		w.logger().Error("watcher stopped", "key", w.key, "error", err)
	}))
	return nil
}

func (w *watchWorker) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if w.logger().Enabled(ctx, slog.LevelDebug) {
				w.logger().Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				w.logger().Error("watcher panic", "error", err)
			}
		}
	}()
	defer close(w.events)
	defer w.watcher.Close()

	err = w.loop(ctx)

	// Drain pending timers before the deferred close of the events channel.
	w.debouncer.stopAndWait(5 * time.Second)
	return err
}

func (w *watchWorker) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.handle(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger().Error("fsnotify error", "error", wErr)
		}
	}
}

// handle filters, maps and debounces one filesystem event.
func (w *watchWorker) handle(ctx context.Context, event fsnotify.Event) {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, tempFilePrefix) {
		return
	}
	if ok, _ := doublestar.Match(w.pattern, base); !ok {
		return
	}

	var eType core.EventType
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		eType = core.EventDelete
	case event.Has(fsnotify.Create):
		eType = core.EventCreate
	case event.Has(fsnotify.Write):
		eType = core.EventModify
	default:
		return
	}

	if eType != core.EventDelete {
		data, exists, err := w.backend.Read(w.key)
		if err != nil {
			w.logger().Debug("watcher read failed", "key", w.key, "error", err)
			return
		}
		if exists && w.backend.isOwnWrite(w.key, data) {
			return
		}
	}

	w.logger().Debug("external change", "key", w.key, "type", eType)
	w.send(ctx, core.Event{Type: eType, Key: w.key, Timestamp: time.Now().Unix()})
}

func (w *watchWorker) send(ctx context.Context, event core.Event) {
	w.debouncer.add(event, func(e core.Event) {
		defer func() {
			// channel closed while stopping
			_ = recover()
		}()
		select {
		case w.events <- e:
		case <-ctx.Done():
		}
	})
}

// debouncer coalesces bursts of events per key into the last one.
type debouncer struct {
	delay   time.Duration
	mu      sync.Mutex
	timers  map[string]*time.Timer
	wg      sync.WaitGroup
	stopped bool
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay, timers: make(map[string]*time.Timer)}
}

func (d *debouncer) add(e core.Event, fn func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if t, ok := d.timers[e.Key]; ok && t.Stop() {
		d.wg.Done()
	}

	d.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.mu.Lock()
		if d.timers[e.Key] == t {
			delete(d.timers, e.Key)
		}
		d.mu.Unlock()
		fn(e)
	})
	d.timers[e.Key] = t
}

func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for key, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, key)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
