package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/jotter/pkg/adapters/kv"
	"github.com/aretw0/jotter/pkg/route"
)

// options holds the internal configuration for a jotter App.
type options struct {
	logger      *slog.Logger
	backend     kv.Backend
	backendName string
	namespace   string
	idPrefix    string
	clock       func() time.Time
	history     route.History
	config      map[string]any
}

// Option defines a functional option for configuring jotter.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		backendName: BackendFile,
		namespace:   DefaultNamespace,
		idPrefix:    DefaultIDPrefix,
		config:      make(map[string]any),
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithBackend injects a byte-level backend (e.g. a fake in tests).
// If provided, WithBackendName is ignored.
func WithBackend(b kv.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithBackendName selects the durable backend by name: "file", "sqlite" or "memory".
// Defaults to "file".
func WithBackendName(name string) Option {
	return func(o *options) {
		o.backendName = name
	}
}

// WithNamespace sets the key the notes root object is stored under.
func WithNamespace(ns string) Option {
	return func(o *options) {
		o.namespace = ns
	}
}

// WithIDPrefix sets the prefix of generated note ids.
func WithIDPrefix(prefix string) Option {
	return func(o *options) {
		o.idPrefix = prefix
	}
}

// WithClock overrides time.Now for every component.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithHistory sets the address history the route synchronizer follows.
// Defaults to an in-memory history positioned at "/".
func WithHistory(h route.History) Option {
	return func(o *options) {
		o.history = h
	}
}

// WithConfig applies the non-empty fields of a loaded config file.
func WithConfig(c Config) Option {
	return func(o *options) {
		if c.Namespace != "" {
			o.namespace = c.Namespace
		}
		if c.Backend != "" {
			o.backendName = c.Backend
		}
		if c.IDPrefix != "" {
			o.idPrefix = c.IDPrefix
		}
	}
}

// WithForceTemp forces the data directory into the temp dir (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or `go test`.
// By default (true) the data directory is re-rooted into a temporary directory.
// Setting this to false operates on the real path even during development.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}
