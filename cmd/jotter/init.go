package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Initialize a jotter project",
	Long:  `Write a default jotter.yaml and create the data directory in dir (default: the current directory).`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		if len(args) == 1 {
			dir = args[0]
		}

		if _, err := os.Stat(filepath.Join(dir, jotter.ConfigFileName)); err == nil {
			return fmt.Errorf("already initialized: %s exists in %s", jotter.ConfigFileName, dir)
		}

		cfg := jotter.DefaultConfig()
		if backendName != "" {
			cfg.Backend = backendName
		}
		if namespace != "" {
			cfg.Namespace = namespace
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(dir); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		if err := os.MkdirAll(cfg.DataPath(dir), 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Initialized empty jotter project in", dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
