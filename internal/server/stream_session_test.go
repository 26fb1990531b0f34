package server

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/groblegark/knotes/internal/authz"
	"github.com/groblegark/knotes/internal/events"
	"github.com/groblegark/knotes/internal/model"
)

// streamBuffer is a concurrency-safe io.Writer + http.Flusher for driving a
// session without a real connection.
type streamBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer

	failWrites bool
}

func (b *streamBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failWrites {
		return 0, errors.New("write on closed connection")
	}
	return b.buf.Write(p)
}

func (b *streamBuffer) Flush() {}

func (b *streamBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newSessionForTest(caller model.Identity, bus *events.Bus, filter authz.Filter, buf *streamBuffer) *streamSession {
	return newStreamSession(caller, bus, filter, buf, buf, time.Hour, slog.Default())
}

func TestStreamSession_StateTransitions(t *testing.T) {
	bus := events.NewBus(nil)
	buf := &streamBuffer{}
	sess := newSessionForTest(testAlice, bus, authz.OwnerPolicy{}, buf)

	if got := sess.State(); got != stateConnecting {
		t.Fatalf("expected connecting before Run, got %s", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sess.Run(ctx)
		close(done)
	}()

	waitFor(t, time.Second, func() bool { return sess.State() == stateActive }, "session active")
	if !strings.Contains(buf.String(), `data: {"type":"connected"}`) {
		t.Error("handshake frame not written before active")
	}

	cancel()
	<-done

	if got := sess.State(); got != stateClosed {
		t.Fatalf("expected closed after Run returns, got %s", got)
	}
	for _, topic := range events.Topics() {
		if n := bus.ListenerCount(topic); n != 0 {
			t.Errorf("listener for %s survived teardown", topic)
		}
	}
}

func TestStreamSession_TeardownIdempotent(t *testing.T) {
	bus := events.NewBus(nil)
	buf := &streamBuffer{}
	sess := newSessionForTest(testAlice, bus, authz.OwnerPolicy{}, buf)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sess.Run(ctx)
		close(done)
	}()
	waitFor(t, time.Second, func() bool { return sess.State() == stateActive }, "session active")

	cancel()
	<-done

	// A second teardown (e.g. racing write-error path) must be a no-op.
	sess.teardown()
	if got := sess.State(); got != stateClosed {
		t.Fatalf("expected closed, got %s", got)
	}
}

func TestStreamSession_LateDispatchAfterCloseIgnored(t *testing.T) {
	bus := events.NewBus(nil)
	buf := &streamBuffer{}
	sess := newSessionForTest(testAlice, bus, authz.OwnerPolicy{}, buf)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sess.Run(ctx)
		close(done)
	}()
	waitFor(t, time.Second, func() bool { return sess.State() == stateActive }, "session active")
	cancel()
	<-done

	before := buf.String()
	// Simulates a publish racing with teardown: must not panic or write.
	sess.enqueue(&events.Event{ID: "ev-late", Resource: "notes", Action: events.ActionCreated})
	if buf.String() != before {
		t.Error("late dispatch produced a write on a closed session")
	}
}

// flakyFilter errors on the first decision, then delegates.
type flakyFilter struct {
	mu     sync.Mutex
	failed bool
}

func (f *flakyFilter) CanReceive(id model.Identity, evt *events.Event) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.failed {
		f.failed = true
		return false, errors.New("policy backend hiccup")
	}
	return authz.OwnerPolicy{}.CanReceive(id, evt)
}

func TestStreamSession_FilterErrorDropsEventKeepsSession(t *testing.T) {
	bus := events.NewBus(nil)
	buf := &streamBuffer{}
	sess := newSessionForTest(testAlice, bus, &flakyFilter{}, buf)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		sess.Run(ctx)
		close(done)
	}()
	waitFor(t, time.Second, func() bool { return sess.State() == stateActive }, "session active")

	payload := []byte(`{"id":"nt-1","created_by":"alice"}`)
	bus.Publish(&events.Event{ID: "ev-1", Resource: "notes", Action: events.ActionCreated, Payload: payload})
	bus.Publish(&events.Event{ID: "ev-2", Resource: "notes", Action: events.ActionCreated, Payload: payload})

	// First event is dropped by the filter error; the second still arrives.
	waitFor(t, time.Second, func() bool {
		return strings.Contains(buf.String(), `"id":"ev-2"`)
	}, "second event delivered")
	if strings.Contains(buf.String(), `"id":"ev-1"`) {
		t.Error("event with failed authorization check was delivered")
	}
	if sess.State() != stateActive {
		t.Errorf("session not active after filter error, state=%s", sess.State())
	}
}

func TestStreamSession_WriteFailureTriggersTeardown(t *testing.T) {
	bus := events.NewBus(nil)
	buf := &streamBuffer{}
	sess := newSessionForTest(testAlice, bus, authz.OwnerPolicy{}, buf)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		sess.Run(ctx)
		close(done)
	}()
	waitFor(t, time.Second, func() bool { return sess.State() == stateActive }, "session active")

	buf.mu.Lock()
	buf.failWrites = true
	buf.mu.Unlock()

	bus.Publish(&events.Event{
		ID:       "ev-1",
		Resource: "notes",
		Action:   events.ActionCreated,
		Payload:  []byte(`{"id":"nt-1","created_by":"alice"}`),
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("session did not tear down after write failure")
	}
	if sess.State() != stateClosed {
		t.Fatalf("expected closed, got %s", sess.State())
	}
	for _, topic := range events.Topics() {
		if n := bus.ListenerCount(topic); n != 0 {
			t.Errorf("listener for %s survived write-failure teardown", topic)
		}
	}
}
