package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/jotter"
)

var (
	verbose     bool
	dataDir     string
	backendName string
	namespace   string
	outputJSON  bool
	outputYAML  bool

	logLevel = new(slog.LevelVar)
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jotter",
	Short: "A local note store with an optimistic in-memory view",
	Long: `jotter keeps notes (title + content) in a namespaced key-value store
on disk, mirrors them into an in-memory entity store and addresses the
selected note as /note/<id>.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel.Set(slog.LevelInfo)
		if verbose {
			logLevel.Set(slog.LevelDebug)
		}

		logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
			Level:      logLevel,
			TimeFormat: "15:04:05.000",
			NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		}))
		slog.SetDefault(logger)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (default: <project>/.jotter)")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "", "Storage backend: file, sqlite or memory")
	rootCmd.PersistentFlags().StringVar(&namespace, "namespace", "", "Key the notes are stored under")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&outputYAML, "yaml", false, "Output in YAML format")
	rootCmd.MarkFlagsMutuallyExclusive("json", "yaml")
}

// openApp resolves the project from the working directory, applies its
// config and the global flags, and starts an App.
func openApp(cmd *cobra.Command) (*jotter.App, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	root, err := jotter.FindRoot(cwd)
	switch {
	case errors.Is(err, jotter.ErrNoProject):
		// work relative to cwd
		root = cwd
	case err != nil:
		return nil, err
	}

	cfg, err := jotter.LoadConfig(root)
	if err != nil {
		return nil, err
	}
	if !verbose && cfg.LogLevel != "" {
		if level, err := jotter.ParseLevel(cfg.LogLevel); err == nil {
			logLevel.Set(level)
		}
	}

	dir := dataDir
	if dir == "" {
		dir = cfg.DataPath(root)
	}

	opts := []jotter.Option{
		jotter.WithLogger(slog.Default()),
		jotter.WithConfig(cfg),
	}
	if backendName != "" {
		opts = append(opts, jotter.WithBackendName(backendName))
	}
	if namespace != "" {
		opts = append(opts, jotter.WithNamespace(namespace))
	}

	app, err := jotter.New(dir, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open notes: %w", err)
	}
	if err := app.Start(cmd.Context()); err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}
	slog.Debug("notes loaded", "dir", app.DataDir, "backend", app.Backend)
	return app, nil
}

// render writes v as JSON or YAML when requested, otherwise calls text.
func render(w io.Writer, v any, text func(w io.Writer)) error {
	switch {
	case outputJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
	case outputYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return encoder.Close()
	default:
		text(w)
	}
	return nil
}
