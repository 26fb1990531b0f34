// Package client provides a transport-agnostic interface for the knotes service
// and an HTTP/JSON implementation that talks to the knotes REST API.
package client

import (
	"context"

	"github.com/groblegark/knotes/internal/events"
	"github.com/groblegark/knotes/internal/model"
)

// NotesClient is the interface that all knotes CLI commands use to communicate
// with the notes server. It is implemented by HTTPClient (default) and can be
// backed by any transport.
type NotesClient interface {
	// Note CRUD
	CreateNote(ctx context.Context, req *CreateNoteRequest) (*model.Note, error)
	GetNote(ctx context.Context, id string) (*model.Note, error)
	ListNotes(ctx context.Context, req *ListNotesRequest) (*ListNotesResponse, error)
	UpdateNote(ctx context.Context, id string, req *UpdateNoteRequest) (*model.Note, error)
	DeleteNote(ctx context.Context, id string) error

	// Streaming
	Watch(ctx context.Context) (<-chan *events.Event, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// CreateNoteRequest holds parameters for creating a note.
type CreateNoteRequest struct {
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
}

// ListNotesRequest holds parameters for listing notes.
type ListNotesRequest struct {
	CreatedBy string `json:"created_by,omitempty"`
	Search    string `json:"search,omitempty"`
	Sort      string `json:"sort,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// ListNotesResponse is the response from ListNotes.
type ListNotesResponse struct {
	Notes []*model.Note `json:"notes"`
	Total int           `json:"total"`
}

// UpdateNoteRequest holds optional parameters for updating a note.
// Nil pointer fields mean "don't change".
type UpdateNoteRequest struct {
	Title *string `json:"title,omitempty"`
	Body  *string `json:"body,omitempty"`
}
