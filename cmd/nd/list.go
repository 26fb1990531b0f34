package main

import (
	"context"

	"github.com/groblegark/knotes/internal/client"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	RunE: func(cmd *cobra.Command, args []string) error {
		createdBy, _ := cmd.Flags().GetString("created-by")
		search, _ := cmd.Flags().GetString("search")
		sort, _ := cmd.Flags().GetString("sort")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		resp, err := apiClient.ListNotes(context.Background(), &client.ListNotesRequest{
			CreatedBy: createdBy,
			Search:    search,
			Sort:      sort,
			Limit:     limit,
			Offset:    offset,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			printNoteListJSON(resp.Notes)
		} else {
			printNoteListTable(resp.Notes, resp.Total)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().String("created-by", "", "filter by creator")
	listCmd.Flags().StringP("search", "s", "", "search title and body")
	listCmd.Flags().String("sort", "", "sort order (created_at, updated_at)")
	listCmd.Flags().Int("limit", 20, "maximum number of notes to return")
	listCmd.Flags().Int("offset", 0, "offset for pagination")
}
