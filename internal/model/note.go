package model

import "time"

// Note is the domain entity served by the CRUD API.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteFilter restricts which notes ListNotes returns.
type NoteFilter struct {
	CreatedBy string
	Search    string // substring match on title and body
	Sort      string // "created_at" (default) or "updated_at"
	Limit     int
	Offset    int
}
