package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		if err := apiClient.DeleteNote(context.Background(), id); err != nil {
			return err
		}
		fmt.Printf("note %s deleted\n", id)
		return nil
	},
}
