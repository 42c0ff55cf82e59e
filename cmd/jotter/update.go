package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter/pkg/core"
)

var (
	updateTitle   string
	updateContent string
)

var updateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Change a note's title and/or content",
	Long:  `Update merges only the fields given as flags into the note.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var p core.Patch
		if cmd.Flags().Changed("title") {
			p = p.SetTitle(updateTitle)
		}
		if cmd.Flags().Changed("content") {
			p = p.SetContent(updateContent)
		}
		if p.Empty() {
			return errors.New("nothing to update: pass --title and/or --content")
		}

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		n, err := app.Session.Update(args[0], p).Wait(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to update note: %w", err)
		}

		return render(cmd.OutOrStdout(), n, func(w io.Writer) {
			fmt.Fprintf(w, "Note updated: %s\n", n.ID)
		})
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringVarP(&updateTitle, "title", "t", "", "New title")
	updateCmd.Flags().StringVarP(&updateContent, "content", "c", "", "New content")
}
