package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/groblegark/knotes/internal/model"
	"github.com/groblegark/knotes/internal/ui"
)

func printNoteJSON(note *model.Note) {
	data, err := json.MarshalIndent(note, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printNoteDetail(note *model.Note) {
	fmt.Printf("ID:         %s\n", ui.RenderAccent(note.ID))
	fmt.Printf("Title:      %s\n", note.Title)
	if note.Body != "" {
		fmt.Printf("Body:       %s\n", note.Body)
	}
	fmt.Printf("Created By: %s\n", note.CreatedBy)
	fmt.Printf("Created At: %s\n", ui.RenderMuted(note.CreatedAt.Format("2006-01-02 15:04:05")))
	fmt.Printf("Updated At: %s\n", ui.RenderMuted(note.UpdatedAt.Format("2006-01-02 15:04:05")))
}

func printNoteListJSON(notes []*model.Note) {
	data, err := json.MarshalIndent(notes, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printNoteListTable(notes []*model.Note, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCREATED BY\tUPDATED")
	for _, n := range notes {
		title := n.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			n.ID,
			title,
			n.CreatedBy,
			n.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}
	w.Flush()
	fmt.Printf("\n%d notes (%d total)\n", len(notes), total)
}
