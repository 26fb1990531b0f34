package server

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/groblegark/knotes/internal/events"
	"github.com/groblegark/knotes/internal/identity"
	"github.com/groblegark/knotes/internal/model"
	"github.com/groblegark/knotes/internal/store"
)

// fakeStore is an in-memory store.Store for handler tests.
type fakeStore struct {
	mu    sync.Mutex
	notes map[string]*model.Note

	failNext error // next call returns this error once
}

var _ store.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{notes: make(map[string]*model.Note)}
}

func (f *fakeStore) takeErr() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeStore) CreateNote(_ context.Context, note *model.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return err
	}
	cp := *note
	f.notes[note.ID] = &cp
	return nil
}

func (f *fakeStore) GetNote(_ context.Context, id string) (*model.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return nil, err
	}
	n, ok := f.notes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *n
	return &cp, nil
}

func (f *fakeStore) ListNotes(_ context.Context, filter model.NoteFilter) ([]*model.Note, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return nil, 0, err
	}
	var out []*model.Note
	for _, n := range f.notes {
		if filter.CreatedBy != "" && n.CreatedBy != filter.CreatedBy {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (f *fakeStore) UpdateNote(_ context.Context, note *model.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return err
	}
	if _, ok := f.notes[note.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *note
	f.notes[note.ID] = &cp
	return nil
}

func (f *fakeStore) DeleteNote(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return err
	}
	if _, ok := f.notes[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.notes, id)
	return nil
}

func (f *fakeStore) Close() error { return nil }

// Standing test identities; the token table below is shared by all tests.
var (
	testAdmin = model.Identity{ID: "root", Role: model.RoleAdmin}
	testAlice = model.Identity{ID: "alice", Role: model.RoleMember}
	testBob   = model.Identity{ID: "bob", Role: model.RoleMember}
)

func testAuthenticator() identity.Authenticator {
	return identity.NewStaticAuthenticator(map[string]model.Identity{
		"root-token":  testAdmin,
		"alice-token": testAlice,
		"bob-token":   testBob,
	})
}

// newTestServer builds a NotesServer on a fake store with a fast heartbeat.
func newTestServer(t *testing.T) (*NotesServer, *fakeStore) {
	t.Helper()
	st := newFakeStore()
	bus := events.NewBus(slog.Default())
	srv := NewNotesServer(st, &events.NoopPublisher{}, bus, testAuthenticator())
	srv.SetHeartbeatInterval(50 * time.Millisecond)
	return srv, st
}

// waitFor polls cond until it returns true or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}
