package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/jotter/pkg/ident"
)

const (
	// ConfigFileName marks a jotter project root and holds its Config.
	ConfigFileName = "jotter.yaml"
	// SystemDir is the default data directory inside a project root.
	SystemDir = ".jotter"

	DefaultNamespace = "jotter"
	DefaultIDPrefix  = ident.DefaultPrefix

	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config is the on-disk project configuration.
type Config struct {
	Namespace string `yaml:"namespace,omitempty" json:"namespace,omitempty"`
	Backend   string `yaml:"backend,omitempty" json:"backend,omitempty"`
	DataDir   string `yaml:"data_dir,omitempty" json:"data_dir,omitempty"`
	IDPrefix  string `yaml:"id_prefix,omitempty" json:"id_prefix,omitempty"`
	LogLevel  string `yaml:"log_level,omitempty" json:"log_level,omitempty"`
}

// DefaultConfig returns the configuration written by `jotter init`.
func DefaultConfig() Config {
	return Config{
		Namespace: DefaultNamespace,
		Backend:   BackendFile,
		DataDir:   SystemDir,
		IDPrefix:  DefaultIDPrefix,
		LogLevel:  "info",
	}
}

// LoadConfig reads ConfigFileName from dir. A missing file yields the zero
// Config and no error.
func LoadConfig(dir string) (Config, error) {
	var c Config
	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("invalid config %s: %w", ConfigFileName, err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Save writes c as ConfigFileName into dir.
func (c Config) Save(dir string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, ConfigFileName), data, 0644)
}

// Validate checks the enumerated fields.
func (c Config) Validate() error {
	switch c.Backend {
	case "", BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q (want %s, %s or %s)", c.Backend, BackendFile, BackendSQLite, BackendMemory)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a config log level to slog. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", s, err)
	}
	return level, nil
}

// DataPath resolves the data directory of a project rooted at root.
func (c Config) DataPath(root string) string {
	dir := c.DataDir
	if dir == "" {
		dir = SystemDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}
