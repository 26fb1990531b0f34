package events

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func testEvent(action Action, n int) *Event {
	payload, _ := json.Marshal(map[string]int{"n": n})
	return &Event{
		ID:         "ev-test",
		Resource:   "notes",
		Action:     action,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

func TestBus_PublishDeliversToSubscribedTopic(t *testing.T) {
	bus := NewBus(nil)
	topic := TopicKey{Resource: "notes", Action: ActionCreated}

	var got []*Event
	sub := bus.Subscribe(topic, func(e *Event) {
		got = append(got, e)
	})
	defer bus.Unsubscribe(sub)

	bus.Publish(testEvent(ActionCreated, 1))
	bus.Publish(testEvent(ActionUpdated, 2)) // different topic, must not arrive
	bus.Publish(testEvent(ActionCreated, 3))

	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
}

func TestBus_DeliveryInPublishOrder(t *testing.T) {
	bus := NewBus(nil)
	topic := TopicKey{Resource: "notes", Action: ActionCreated}

	var order []int
	bus.Subscribe(topic, func(e *Event) {
		var p struct {
			N int `json:"n"`
		}
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		order = append(order, p.N)
	})

	for i := range 5 {
		bus.Publish(testEvent(ActionCreated, i))
	}

	for i, n := range order {
		if n != i {
			t.Fatalf("expected publish order [0 1 2 3 4], got %v", order)
		}
	}
}

func TestBus_NoEventsAfterUnsubscribe(t *testing.T) {
	bus := NewBus(nil)
	topic := TopicKey{Resource: "notes", Action: ActionDeleted}

	count := 0
	sub := bus.Subscribe(topic, func(*Event) { count++ })

	bus.Publish(testEvent(ActionDeleted, 1))
	bus.Unsubscribe(sub)
	bus.Publish(testEvent(ActionDeleted, 2))

	if count != 1 {
		t.Fatalf("expected 1 event before unsubscribe, got %d", count)
	}
}

func TestBus_UnsubscribeIdempotent(t *testing.T) {
	bus := NewBus(nil)
	topic := TopicKey{Resource: "notes", Action: ActionCreated}

	count := 0
	keep := bus.Subscribe(topic, func(*Event) { count++ })
	sub := bus.Subscribe(topic, func(*Event) {})

	bus.Unsubscribe(sub)
	bus.Unsubscribe(sub)                // second removal is a no-op
	bus.Unsubscribe(Subscription{})     // never registered
	bus.Unsubscribe(Subscription{topic: topic, id: 9999})

	bus.Publish(testEvent(ActionCreated, 1))
	if count != 1 {
		t.Fatalf("surviving subscription should still receive events, got %d", count)
	}
	_ = keep
}

func TestBus_PanickingListenerDoesNotAbortDispatch(t *testing.T) {
	bus := NewBus(nil)
	topic := TopicKey{Resource: "notes", Action: ActionCreated}

	bus.Subscribe(topic, func(*Event) { panic("listener boom") })
	delivered := false
	bus.Subscribe(topic, func(*Event) { delivered = true })

	bus.Publish(testEvent(ActionCreated, 1))

	if !delivered {
		t.Fatal("listener registered after the panicking one was not invoked")
	}
}

func TestBus_PublishWithNoListenersIsNoop(t *testing.T) {
	bus := NewBus(nil)
	// Must not panic or block.
	bus.Publish(testEvent(ActionUpdated, 1))
}

func TestBus_SubscribeDuringPublishDoesNotAffectInFlightDispatch(t *testing.T) {
	bus := NewBus(nil)
	topic := TopicKey{Resource: "notes", Action: ActionCreated}

	lateCount := 0
	bus.Subscribe(topic, func(*Event) {
		// Registering from inside a dispatch must not deliver the
		// in-flight event to the new listener.
		bus.Subscribe(topic, func(*Event) { lateCount++ })
	})

	bus.Publish(testEvent(ActionCreated, 1))
	if lateCount != 0 {
		t.Fatalf("listener added during publish received the in-flight event")
	}

	bus.Publish(testEvent(ActionCreated, 2))
	if lateCount != 1 {
		t.Fatalf("expected late listener to receive the next publish, got %d", lateCount)
	}
}

func TestBus_UnsubscribeDuringPublishDoesNotAffectInFlightDispatch(t *testing.T) {
	bus := NewBus(nil)
	topic := TopicKey{Resource: "notes", Action: ActionCreated}

	var secondSub Subscription
	secondCount := 0
	bus.Subscribe(topic, func(*Event) {
		bus.Unsubscribe(secondSub)
	})
	secondSub = bus.Subscribe(topic, func(*Event) { secondCount++ })

	bus.Publish(testEvent(ActionCreated, 1))
	if secondCount != 1 {
		t.Fatalf("listener removed during publish should still see the in-flight event, got %d", secondCount)
	}

	bus.Publish(testEvent(ActionCreated, 2))
	if secondCount != 1 {
		t.Fatalf("removed listener received a later publish")
	}
}

func TestBus_ConcurrentPublishAndSubscribe(t *testing.T) {
	bus := NewBus(nil)
	topic := TopicKey{Resource: "notes", Action: ActionCreated}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				bus.Publish(testEvent(ActionCreated, i))
			}
		}()
	}
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				sub := bus.Subscribe(topic, func(*Event) {})
				bus.Unsubscribe(sub)
			}
		}()
	}
	wg.Wait()

	if n := bus.ListenerCount(topic); n != 0 {
		t.Fatalf("expected empty registry after all unsubscribes, got %d", n)
	}
}

func TestBus_ListenerCount(t *testing.T) {
	bus := NewBus(nil)
	topic := TopicKey{Resource: "notes", Action: ActionCreated}

	if n := bus.ListenerCount(topic); n != 0 {
		t.Fatalf("expected 0 listeners, got %d", n)
	}
	a := bus.Subscribe(topic, func(*Event) {})
	b := bus.Subscribe(topic, func(*Event) {})
	if n := bus.ListenerCount(topic); n != 2 {
		t.Fatalf("expected 2 listeners, got %d", n)
	}
	bus.Unsubscribe(a)
	bus.Unsubscribe(b)
	if n := bus.ListenerCount(topic); n != 0 {
		t.Fatalf("expected 0 listeners after unsubscribe, got %d", n)
	}
}

func TestTopicKey_String(t *testing.T) {
	k := TopicKey{Resource: "notes", Action: ActionCreated}
	if k.String() != "notes:created" {
		t.Fatalf("expected %q, got %q", "notes:created", k.String())
	}
}

func TestTopics_CoversAllActions(t *testing.T) {
	topics := Topics()
	if len(topics) != 3 {
		t.Fatalf("expected 3 topics, got %d", len(topics))
	}
	seen := make(map[TopicKey]bool)
	for _, k := range topics {
		if k.Resource != "notes" {
			t.Fatalf("unexpected resource %q", k.Resource)
		}
		if !k.Action.IsValid() {
			t.Fatalf("invalid action %q", k.Action)
		}
		seen[k] = true
	}
	if len(seen) != 3 {
		t.Fatal("duplicate topics")
	}
}
