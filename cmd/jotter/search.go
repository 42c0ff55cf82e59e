package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find notes whose title or content contains query (case-insensitive)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		notes, err := app.Session.Search(args[0]).Wait(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to search notes: %w", err)
		}
		return renderNotes(cmd.OutOrStdout(), notes)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
