package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/groblegark/knotes/internal/events"
	"github.com/groblegark/knotes/internal/idgen"
	"github.com/groblegark/knotes/internal/model"
)

type createNoteInput struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type updateNoteInput struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

// handleCreateNote handles POST /v1/notes.
func (s *NotesServer) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var in createNoteInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	caller, _ := identityFrom(r.Context())
	note, err := s.createNote(r.Context(), in, caller)
	if err != nil {
		writeHandlerError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, note)
}

func (s *NotesServer) createNote(ctx context.Context, in createNoteInput, caller model.Identity) (*model.Note, error) {
	id, err := idgen.NewNoteID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	note := &model.Note{
		ID:        id,
		Title:     strings.TrimSpace(in.Title),
		Body:      in.Body,
		CreatedBy: caller.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := model.ValidateNote(note); err != nil {
		return nil, inputError(err.Error())
	}

	if err := s.store.CreateNote(ctx, note); err != nil {
		return nil, err
	}

	s.publishNoteEvent(ctx, events.ActionCreated, note, caller.ID)
	return note, nil
}

// handleListNotes handles GET /v1/notes.
func (s *NotesServer) handleListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.NoteFilter{
		CreatedBy: q.Get("created_by"),
		Search:    q.Get("search"),
		Sort:      q.Get("sort"),
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	notes, total, err := s.store.ListNotes(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list notes")
		return
	}

	// Ensure notes is never null in JSON output.
	if notes == nil {
		notes = []*model.Note{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"notes": notes,
		"total": total,
	})
}

// handleGetNote handles GET /v1/notes/{id}.
func (s *NotesServer) handleGetNote(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	note, err := s.store.GetNote(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get note")
		return
	}

	writeJSON(w, http.StatusOK, note)
}

// handleUpdateNote handles PATCH /v1/notes/{id}.
func (s *NotesServer) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var in updateNoteInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	note, err := s.store.GetNote(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get note")
		return
	}

	if in.Title != nil {
		note.Title = strings.TrimSpace(*in.Title)
	}
	if in.Body != nil {
		note.Body = *in.Body
	}
	note.UpdatedAt = time.Now().UTC()

	if err := model.ValidateNote(note); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.UpdateNote(r.Context(), note); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "note not found")
		} else {
			writeError(w, http.StatusInternalServerError, "failed to update note")
		}
		return
	}

	caller, _ := identityFrom(r.Context())
	s.publishNoteEvent(r.Context(), events.ActionUpdated, note, caller.ID)

	writeJSON(w, http.StatusOK, note)
}

// handleDeleteNote handles DELETE /v1/notes/{id}.
func (s *NotesServer) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	// Fetch first so the delete event carries the note's last representation;
	// subscribers filter on its ownership attribute.
	note, err := s.store.GetNote(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get note")
		return
	}

	if err := s.store.DeleteNote(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "note not found")
		} else {
			writeError(w, http.StatusInternalServerError, "failed to delete note")
		}
		return
	}

	caller, _ := identityFrom(r.Context())
	s.publishNoteEvent(r.Context(), events.ActionDeleted, note, caller.ID)

	w.WriteHeader(http.StatusNoContent)
}

// writeHandlerError maps service-layer errors to HTTP responses.
func writeHandlerError(w http.ResponseWriter, err error) {
	var ie inputError
	if errors.As(err, &ie) {
		writeError(w, http.StatusBadRequest, ie.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
