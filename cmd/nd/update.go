package main

import (
	"context"
	"fmt"

	"github.com/groblegark/knotes/internal/client"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &client.UpdateNoteRequest{}
		if cmd.Flags().Changed("title") {
			title, _ := cmd.Flags().GetString("title")
			req.Title = &title
		}
		if cmd.Flags().Changed("body") {
			body, _ := cmd.Flags().GetString("body")
			req.Body = &body
		}
		if req.Title == nil && req.Body == nil {
			return fmt.Errorf("nothing to update; pass --title or --body")
		}

		note, err := apiClient.UpdateNote(context.Background(), args[0], req)
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
	updateCmd.Flags().StringP("title", "t", "", "new title")
	updateCmd.Flags().StringP("body", "b", "", "new body")
}
