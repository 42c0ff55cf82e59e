package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the internal state of every component",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		status := app.Status()
		status["data_dir"] = app.DataDir
		status["backend"] = app.Backend
		return render(cmd.OutOrStdout(), status, func(w io.Writer) {
			// status is structured, default to JSON
			encoder := json.NewEncoder(w)
			encoder.SetIndent("", "  ")
			_ = encoder.Encode(status)
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
