package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/groblegark/knotes/internal/authz"
	"github.com/groblegark/knotes/internal/events"
	"github.com/groblegark/knotes/internal/model"
)

// sessionQueueSize is the per-session handoff buffer between bus dispatch
// and the session's own write loop. A full queue drops events for that
// session rather than blocking the publisher.
const sessionQueueSize = 64

// sessionState is the lifecycle of one streaming connection. Transitions are
// one-way: connecting → active → closing → closed.
type sessionState int32

const (
	stateConnecting sessionState = iota
	stateActive
	stateClosing
	stateClosed
)

func (s sessionState) String() string {
	switch s {
	case stateConnecting:
		return "connecting"
	case stateActive:
		return "active"
	case stateClosing:
		return "closing"
	case stateClosed:
		return "closed"
	}
	return "unknown"
}

// streamSession bridges the event bus to one subscriber's SSE stream. It
// registers one bus listener per topic the server emits, applies the
// authorization filter to every event, and keeps the connection alive with
// periodic heartbeats. All stream writes happen on the session's own
// goroutine; bus dispatch only enqueues.
type streamSession struct {
	caller    model.Identity
	bus       *events.Bus
	filter    authz.Filter
	w         io.Writer
	flusher   http.Flusher
	heartbeat time.Duration
	logger    *slog.Logger

	state atomic.Int32
	queue chan *events.Event
	subs  []events.Subscription
	once  sync.Once
}

func newStreamSession(caller model.Identity, bus *events.Bus, filter authz.Filter, w io.Writer, flusher http.Flusher, heartbeat time.Duration, logger *slog.Logger) *streamSession {
	s := &streamSession{
		caller:    caller,
		bus:       bus,
		filter:    filter,
		w:         w,
		flusher:   flusher,
		heartbeat: heartbeat,
		logger:    logger,
		queue:     make(chan *events.Event, sessionQueueSize),
	}
	s.state.Store(int32(stateConnecting))
	return s
}

// State returns the session's current lifecycle state.
func (s *streamSession) State() sessionState {
	return sessionState(s.state.Load())
}

// Run drives the session until the context is cancelled or a write fails.
// It always leaves the session closed: listeners deregistered, heartbeat
// stopped.
func (s *streamSession) Run(ctx context.Context) {
	defer s.teardown()

	// Handshake frame first: clients use it to detect a live connection.
	if err := s.writeHandshake(); err != nil {
		s.logger.Warn("stream handshake failed", "subscriber", s.caller.ID, "error", err)
		return
	}

	for _, topic := range events.Topics() {
		s.subs = append(s.subs, s.bus.Subscribe(topic, s.enqueue))
	}
	s.state.Store(int32(stateActive))

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Client disconnect or server shutdown. Queued events are
			// discarded; there is no flush obligation.
			return
		case evt := <-s.queue:
			if err := s.deliver(evt); err != nil {
				s.logger.Warn("stream write failed", "subscriber", s.caller.ID, "event_id", evt.ID, "error", err)
				return
			}
		case <-ticker.C:
			if err := s.writeHeartbeat(); err != nil {
				// A dead heartbeat means a dead connection; no retry.
				return
			}
		}
	}
}

// enqueue is the bus listener callback. It runs on the publisher's goroutine
// and must stay cheap: it hands the event to the session's queue and never
// blocks. Dispatches racing with teardown are expected and ignored.
func (s *streamSession) enqueue(evt *events.Event) {
	if s.State() != stateActive {
		return
	}
	select {
	case s.queue <- evt:
	default:
		// Slow subscriber; drop rather than stall the publisher.
	}
}

// deliver applies the authorization filter and writes the event frame. A
// filter error drops that one event and keeps the session alive; only write
// errors are returned.
func (s *streamSession) deliver(evt *events.Event) error {
	allowed, err := s.filter.CanReceive(s.caller, evt)
	if err != nil {
		s.logger.Warn("authorization check failed",
			"subscriber", s.caller.ID,
			"event_id", evt.ID,
			"error", err,
		)
		return nil
	}
	if !allowed {
		// Normal filtering outcome, not an error.
		return nil
	}

	data, err := json.Marshal(evt)
	if err != nil {
		s.logger.Warn("failed to marshal event frame", "event_id", evt.ID, "error", err)
		return nil
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", evt.Topic().String(), data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *streamSession) writeHandshake() error {
	if _, err := io.WriteString(s.w, "data: {\"type\":\"connected\"}\n\n"); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *streamSession) writeHeartbeat() error {
	if _, err := io.WriteString(s.w, ": heartbeat\n\n"); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// teardown deregisters every listener and marks the session closed. Safe to
// invoke from multiple paths; only the first call does the work.
func (s *streamSession) teardown() {
	s.once.Do(func() {
		s.state.Store(int32(stateClosing))
		for _, sub := range s.subs {
			s.bus.Unsubscribe(sub)
		}
		s.state.Store(int32(stateClosed))
	})
}

// handleEventStream handles GET /v1/events/stream (SSE endpoint). The auth
// middleware has already resolved the caller; anything unauthenticated was
// rejected before this point, so no listener is ever registered for it.
func (s *NotesServer) handleEventStream(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering.
	w.WriteHeader(http.StatusOK)

	session := newStreamSession(caller, s.bus, s.filter, w, flusher, s.heartbeat, s.logger)
	session.Run(r.Context())
}
