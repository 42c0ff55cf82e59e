package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter/pkg/core"
)

var (
	createID      string
	createTitle   string
	createContent string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a note",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		n, err := app.Session.Create(core.Draft{
			ID:      createID,
			Title:   createTitle,
			Content: createContent,
		}).Wait(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to create note: %w", err)
		}

		return render(cmd.OutOrStdout(), n, func(w io.Writer) {
			fmt.Fprintln(w, n.ID)
		})
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringVar(&createID, "id", "", "Note ID (generated when empty)")
	createCmd.Flags().StringVarP(&createTitle, "title", "t", "", "Note title")
	createCmd.Flags().StringVarP(&createContent, "content", "c", "", "Note content")
}
