package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a note",
	Long:  `Delete removes a note. Deleting an unknown ID is not an error.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		existed, err := app.Session.Delete(id).Wait(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to delete note: %w", err)
		}

		result := map[string]any{"id": id, "deleted": existed}
		return render(cmd.OutOrStdout(), result, func(w io.Writer) {
			if existed {
				fmt.Fprintf(w, "Note deleted: %s\n", id)
			} else {
				fmt.Fprintf(w, "No such note: %s\n", id)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
