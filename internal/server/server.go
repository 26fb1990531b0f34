// Package server implements the notes HTTP API and its event stream.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/groblegark/knotes/internal/authz"
	"github.com/groblegark/knotes/internal/events"
	"github.com/groblegark/knotes/internal/idgen"
	"github.com/groblegark/knotes/internal/identity"
	"github.com/groblegark/knotes/internal/model"
	"github.com/groblegark/knotes/internal/store"
)

// defaultHeartbeatInterval is how often streaming sessions emit keepalive
// comments so proxies don't time out idle connections.
const defaultHeartbeatInterval = 30 * time.Second

// NotesServer owns the CRUD handlers and the event stream. It composes the
// store, the in-process bus serving streaming sessions, the external mirror
// publisher, and the authentication/authorization collaborators.
type NotesServer struct {
	store     store.Store
	publisher events.Publisher
	bus       *events.Bus
	auth      identity.Authenticator
	filter    authz.Filter
	heartbeat time.Duration
	logger    *slog.Logger
}

// NewNotesServer returns a server with the default ownership filter and
// heartbeat interval.
func NewNotesServer(st store.Store, pub events.Publisher, bus *events.Bus, auth identity.Authenticator) *NotesServer {
	return &NotesServer{
		store:     st,
		publisher: pub,
		bus:       bus,
		auth:      auth,
		filter:    authz.OwnerPolicy{},
		heartbeat: defaultHeartbeatInterval,
		logger:    slog.Default(),
	}
}

// SetHeartbeatInterval overrides the keepalive interval for streaming
// sessions. The unit is a deployment concern; tests shorten it.
func (s *NotesServer) SetHeartbeatInterval(d time.Duration) {
	if d > 0 {
		s.heartbeat = d
	}
}

// SetLogger replaces the server's logger.
func (s *NotesServer) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

// SetFilter replaces the per-subscriber authorization filter.
func (s *NotesServer) SetFilter(f authz.Filter) {
	if f != nil {
		s.filter = f
	}
}

// Bus exposes the server's event bus so mutation paths outside this package
// can publish, and tests can observe the listener registry.
func (s *NotesServer) Bus() *events.Bus {
	return s.bus
}

// publishNoteEvent constructs the immutable event for a completed mutation,
// dispatches it on the in-process bus, and mirrors it to the external
// publisher. Mirroring is best-effort; failures are logged, never surfaced.
func (s *NotesServer) publishNoteEvent(ctx context.Context, action events.Action, note *model.Note, actor string) {
	payload, err := json.Marshal(note)
	if err != nil {
		s.logger.Warn("failed to marshal event payload", "action", action, "note_id", note.ID, "error", err)
		return
	}
	id, err := idgen.NewEventID()
	if err != nil {
		s.logger.Warn("failed to generate event id", "action", action, "note_id", note.ID, "error", err)
		return
	}

	evt := &events.Event{
		ID:         id,
		Resource:   "notes",
		Action:     action,
		Payload:    payload,
		Actor:      actor,
		OccurredAt: time.Now().UTC(),
	}

	s.bus.Publish(evt)

	if subject := evt.NATSSubject(); subject != "" {
		if err := s.publisher.Publish(ctx, subject, evt); err != nil {
			s.logger.Warn("failed to mirror event", "subject", subject, "event_id", evt.ID, "error", err)
		}
	}
}

// inputError indicates invalid user input. Handlers map it to 400.
type inputError string

func (e inputError) Error() string { return string(e) }
