package events

import (
	"context"
	"encoding/json"
	"time"
)

// NATS subjects mirrored by the server for external consumers.
const (
	TopicNoteCreated = "knotes.note.created"
	TopicNoteUpdated = "knotes.note.updated"
	TopicNoteDeleted = "knotes.note.deleted"
)

// Action is the kind of mutation an event describes. Closed set.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// String returns the string representation of the action.
func (a Action) String() string {
	return string(a)
}

// IsValid checks whether the action is a known value.
func (a Action) IsValid() bool {
	switch a {
	case ActionCreated, ActionUpdated, ActionDeleted:
		return true
	}
	return false
}

// TopicKey identifies the class of events a listener cares about.
// Used directly as a map key in the bus registry.
type TopicKey struct {
	Resource string
	Action   Action
}

// String renders the topic in its wire form, "resource:action".
func (k TopicKey) String() string {
	return k.Resource + ":" + string(k.Action)
}

// Event is an immutable record of one domain mutation. Once published it is
// shared by every subscriber concurrently and must be treated as read-only.
type Event struct {
	ID         string          `json:"id"`
	Resource   string          `json:"resource"`
	Action     Action          `json:"action"`
	Payload    json.RawMessage `json:"payload"`
	Actor      string          `json:"actor,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Topic returns the event's topic key.
func (e *Event) Topic() TopicKey {
	return TopicKey{Resource: e.Resource, Action: e.Action}
}

// NATSSubject maps the event's topic to the mirrored NATS subject.
// Returns "" for resources the server does not mirror.
func (e *Event) NATSSubject() string {
	if e.Resource != "notes" {
		return ""
	}
	switch e.Action {
	case ActionCreated:
		return TopicNoteCreated
	case ActionUpdated:
		return TopicNoteUpdated
	case ActionDeleted:
		return TopicNoteDeleted
	}
	return ""
}

// Topics returns every topic key the server emits, one per supported
// (resource, action) combination. Streaming sessions register one bus
// listener per entry.
func Topics() []TopicKey {
	return []TopicKey{
		{Resource: "notes", Action: ActionCreated},
		{Resource: "notes", Action: ActionUpdated},
		{Resource: "notes", Action: ActionDeleted},
	}
}

// Publisher is the interface for mirroring events to an external broker.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
