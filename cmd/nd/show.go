package main

import (
	"context"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		note, err := apiClient.GetNote(context.Background(), args[0])
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
