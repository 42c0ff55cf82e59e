package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter/pkg/core"
)

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Print a note",
	Long:  `Print a note's content by its ID, or the whole note with --json/--yaml.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		n, ok, err := app.Repository.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to read note: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: %s", core.ErrNotFound, args[0])
		}
		return renderNote(cmd.OutOrStdout(), n)
	},
}

func renderNote(w io.Writer, n core.Note) error {
	return render(w, n, func(w io.Writer) {
		if n.Title != "" {
			fmt.Fprintf(w, "# %s\n\n", n.Title)
		}
		fmt.Fprintln(w, n.Content)
	})
}

func init() {
	rootCmd.AddCommand(getCmd)
}
