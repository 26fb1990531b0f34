package main

import (
	"context"

	"github.com/groblegark/knotes/internal/client"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := args[0]
		body, _ := cmd.Flags().GetString("body")

		note, err := apiClient.CreateNote(context.Background(), &client.CreateNoteRequest{
			Title: title,
			Body:  body,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			printNoteJSON(note)
		} else {
			printNoteDetail(note)
		}
		return nil
	},
}

func init() {
	createCmd.Flags().StringP("body", "b", "", "note body")
}
