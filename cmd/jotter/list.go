package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter/pkg/core"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all notes, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		return renderNotes(cmd.OutOrStdout(), app.Entities.Snapshot().Notes())
	},
}

// renderNotes prints one "<id>  <title>" line per note.
func renderNotes(w io.Writer, notes []core.Note) error {
	if notes == nil {
		notes = []core.Note{}
	}
	return render(w, notes, func(w io.Writer) {
		for _, n := range notes {
			title := n.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Fprintf(w, "%s  %s\n", n.ID, title)
		}
	})
}

func init() {
	rootCmd.AddCommand(listCmd)
}
