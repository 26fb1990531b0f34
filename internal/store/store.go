package store

import (
	"context"

	"github.com/groblegark/knotes/internal/model"
)

// Store defines the persistence interface for notes.
type Store interface {
	CreateNote(ctx context.Context, note *model.Note) error
	GetNote(ctx context.Context, id string) (*model.Note, error)
	ListNotes(ctx context.Context, filter model.NoteFilter) ([]*model.Note, int, error) // returns notes, total count, error
	UpdateNote(ctx context.Context, note *model.Note) error
	DeleteNote(ctx context.Context, id string) error

	// Lifecycle
	Close() error
}
