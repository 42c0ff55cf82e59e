package jotter

import (
	"log/slog"
	"time"

	"github.com/aretw0/jotter/internal/platform"
	"github.com/aretw0/jotter/pkg/adapters/kv"
	"github.com/aretw0/jotter/pkg/route"
)

// --- Types ---

// App is one wired note session.
type App = platform.App

// Config is the on-disk project configuration (jotter.yaml).
type Config = platform.Config

// --- Configuration ---

// Option defines a functional option for configuring jotter.
type Option = platform.Option

// ConfigFileName is the project config file, also a project root marker.
const ConfigFileName = platform.ConfigFileName

// Backend names accepted by WithBackendName and the config file.
const (
	BackendFile   = platform.BackendFile
	BackendSQLite = platform.BackendSQLite
	BackendMemory = platform.BackendMemory
)

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithBackend injects a byte-level storage backend.
func WithBackend(b kv.Backend) Option {
	return platform.WithBackend(b)
}

// WithBackendName selects the durable backend by name.
func WithBackendName(name string) Option {
	return platform.WithBackendName(name)
}

// WithNamespace sets the key the notes are stored under.
func WithNamespace(ns string) Option {
	return platform.WithNamespace(ns)
}

// WithIDPrefix sets the prefix of generated note ids.
func WithIDPrefix(prefix string) Option {
	return platform.WithIDPrefix(prefix)
}

// WithClock overrides time.Now.
func WithClock(clock func() time.Time) Option {
	return platform.WithClock(clock)
}

// WithHistory sets the address history followed by the router.
func WithHistory(h route.History) Option {
	return platform.WithHistory(h)
}

// WithConfig applies a loaded config file.
func WithConfig(c Config) Option {
	return platform.WithConfig(c)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithDevSafety controls the temp-dir sandbox used under `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// --- Factory ---

// New wires an App over dataDir. Call Start before use and Close when done.
func New(dataDir string, opts ...Option) (*App, error) {
	return platform.New(dataDir, opts...)
}

// --- Config ---

// DefaultConfig returns the configuration written by `jotter init`.
func DefaultConfig() Config {
	return platform.DefaultConfig()
}

// LoadConfig reads jotter.yaml from dir; a missing file is not an error.
func LoadConfig(dir string) (Config, error) {
	return platform.LoadConfig(dir)
}

// ParseLevel maps a config log level ("debug", "info", ...) to slog.
func ParseLevel(s string) (slog.Level, error) {
	return platform.ParseLevel(s)
}

// --- Safety & Utils ---

// ResolveDataDir determines the actual data directory based on safety rules.
func ResolveDataDir(userPath string, forceTemp bool) string {
	return platform.ResolveDataDir(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// ErrNoProject is returned by FindRoot outside any project.
var ErrNoProject = platform.ErrNoProject

// FindRoot returns the nearest enclosing project directory.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
