package events

import (
	"log/slog"
	"sync"
)

// Listener is invoked by the bus for every event published on a topic the
// listener registered for. Listeners run on the publisher's goroutine and
// must return quickly; slow work belongs on the listener's own goroutine.
type Listener func(*Event)

// Subscription is a handle returned by Subscribe, used to remove the
// listener later. The zero value is never a live registration.
type Subscription struct {
	topic TopicKey
	id    uint64
}

type listenerEntry struct {
	id uint64
	fn Listener
}

// Bus is an in-process publish/subscribe registry keyed by topic.
// Producers call Publish after completing a mutation; streaming sessions
// register listeners per topic. A Bus is safe for concurrent use.
//
// The bus is constructed explicitly and passed to whoever needs it; there is
// no package-level instance, so tests can run independent buses side by side.
type Bus struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[TopicKey][]listenerEntry
	logger    *slog.Logger
}

// NewBus returns an empty bus. A nil logger defaults to slog.Default().
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		listeners: make(map[TopicKey][]listenerEntry),
		logger:    logger,
	}
}

// Subscribe registers fn for every future Publish on topic and returns a
// handle for removal. Registration always succeeds; listeners for the same
// topic are invoked in registration order.
func (b *Bus) Subscribe(topic TopicKey, fn Listener) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.listeners[topic] = append(b.listeners[topic], listenerEntry{id: id, fn: fn})
	return Subscription{topic: topic, id: id}
}

// Unsubscribe removes the listener registered under sub. Removing a handle
// twice, or one that was never registered, is a no-op.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.listeners[sub.topic]
	for i, e := range entries {
		if e.id == sub.id {
			// Copy-on-remove so a snapshot taken by an in-flight Publish
			// keeps seeing the old slice.
			replacement := make([]listenerEntry, 0, len(entries)-1)
			replacement = append(replacement, entries[:i]...)
			replacement = append(replacement, entries[i+1:]...)
			if len(replacement) == 0 {
				delete(b.listeners, sub.topic)
			} else {
				b.listeners[sub.topic] = replacement
			}
			return
		}
	}
}

// Publish delivers evt to every listener currently registered for the
// event's topic, in registration order. Listeners added or removed while a
// publish is in flight do not affect that publish: the listener set is
// snapshotted before dispatch. A panicking listener is logged and skipped;
// it never aborts delivery to the remaining listeners or the publisher.
func (b *Bus) Publish(evt *Event) {
	topic := evt.Topic()

	b.mu.RLock()
	snapshot := b.listeners[topic]
	b.mu.RUnlock()

	for _, entry := range snapshot {
		b.dispatch(topic, entry, evt)
	}
}

func (b *Bus) dispatch(topic TopicKey, entry listenerEntry, evt *Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event listener panicked",
				"topic", topic.String(),
				"event_id", evt.ID,
				"panic", r,
			)
		}
	}()
	entry.fn(evt)
}

// ListenerCount returns the number of listeners registered for topic.
func (b *Bus) ListenerCount(topic TopicKey) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[topic])
}
