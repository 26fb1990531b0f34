package sync

import (
	"context"
	"database/sql"
	"sort"

	"github.com/groblegark/knotes/internal/model"
)

// mockStore is a minimal in-memory store for sync tests.
type mockStore struct {
	notes map[string]*model.Note
}

func newMockStore() *mockStore {
	return &mockStore{notes: make(map[string]*model.Note)}
}

func (m *mockStore) CreateNote(_ context.Context, note *model.Note) error {
	m.notes[note.ID] = note
	return nil
}

func (m *mockStore) GetNote(_ context.Context, id string) (*model.Note, error) {
	n, ok := m.notes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return n, nil
}

func (m *mockStore) ListNotes(_ context.Context, _ model.NoteFilter) ([]*model.Note, int, error) {
	var result []*model.Note
	for _, n := range m.notes {
		result = append(result, n)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, len(result), nil
}

func (m *mockStore) UpdateNote(_ context.Context, note *model.Note) error {
	m.notes[note.ID] = note
	return nil
}

func (m *mockStore) DeleteNote(_ context.Context, id string) error {
	delete(m.notes, id)
	return nil
}

func (m *mockStore) Close() error {
	return nil
}
