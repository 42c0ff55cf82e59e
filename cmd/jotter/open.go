package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open [address]",
	Short: "Navigate to an address and print the selected note",
	Long: `Open navigates to an address such as /note/<id> and prints the resulting
address and selected note. The home address "/" keeps the current selection.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		app.Router.Navigate(args[0])

		snap := app.Entities.Snapshot()
		n, found := snap.SelectedNote()
		result := map[string]any{
			"address":  app.History.Current(),
			"selected": snap.Selected,
		}
		if found {
			result["note"] = n
		}
		return render(cmd.OutOrStdout(), result, func(w io.Writer) {
			fmt.Fprintln(w, app.History.Current())
			switch {
			case found:
				fmt.Fprintf(w, "%s  %s\n", n.ID, n.Title)
			case snap.Selected != "":
				fmt.Fprintf(w, "%s  (not found)\n", snap.Selected)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}
