package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter/pkg/adapters/lifecycle"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow changes made to the notes by other processes",
	Long:  `Watch reloads the notes whenever the data file changes and prints each change until interrupted.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		events, err := app.Session.Watch(ctx)
		if err != nil {
			return fmt.Errorf("failed to watch notes: %w", err)
		}
		src := lifecycle.NewSource(events)
		if err := src.Start(ctx); err != nil {
			return err
		}
		slog.Info("watching for changes", "dir", app.DataDir, "backend", app.Backend)

		out := cmd.OutOrStdout()
		for e := range src.Events() {
			fmt.Fprintf(out, "%s  (%d notes)\n", e, len(app.Entities.Snapshot().Order))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
