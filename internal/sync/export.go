package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/groblegark/knotes/internal/model"
	"github.com/groblegark/knotes/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version   string    `json:"version"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	NoteCount int       `json:"note_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes all notes from the store as JSONL to w, sorted by ID.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	// Fetch all notes (no filter, no limit).
	notes, _, err := s.ListNotes(ctx, model.NoteFilter{Sort: "created_at"})
	if err != nil {
		return fmt.Errorf("list notes: %w", err)
	}

	sort.Slice(notes, func(i, j int) bool {
		return notes[i].ID < notes[j].ID
	})

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:   "1",
		Type:      "header",
		Timestamp: time.Now().UTC(),
		NoteCount: len(notes),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, n := range notes {
		if err := enc.Encode(record{Type: "note", Data: n}); err != nil {
			return fmt.Errorf("encode note %s: %w", n.ID, err)
		}
	}

	return nil
}
