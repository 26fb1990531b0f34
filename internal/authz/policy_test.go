package authz

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/groblegark/knotes/internal/events"
	"github.com/groblegark/knotes/internal/model"
)

func noteEvent(t *testing.T, resource, createdBy string) *events.Event {
	t.Helper()
	payload, err := json.Marshal(map[string]string{
		"id":         "nt-1",
		"title":      "hello",
		"created_by": createdBy,
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return &events.Event{
		ID:         "ev-1",
		Resource:   resource,
		Action:     events.ActionCreated,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

func TestOwnerPolicy_AdminReceivesAllWellFormedEvents(t *testing.T) {
	admin := model.Identity{ID: "root", Role: model.RoleAdmin}
	policy := OwnerPolicy{}

	for _, createdBy := range []string{"alice", "bob", "root"} {
		ok, err := policy.CanReceive(admin, noteEvent(t, "notes", createdBy))
		if err != nil {
			t.Fatalf("CanReceive(admin, created_by=%q): %v", createdBy, err)
		}
		if !ok {
			t.Errorf("admin denied event with created_by=%q", createdBy)
		}
	}
}

func TestOwnerPolicy_OwnerReceivesOwnEvents(t *testing.T) {
	alice := model.Identity{ID: "alice", Role: model.RoleMember}
	policy := OwnerPolicy{}

	ok, err := policy.CanReceive(alice, noteEvent(t, "notes", "alice"))
	if err != nil {
		t.Fatalf("CanReceive: %v", err)
	}
	if !ok {
		t.Error("owner denied their own event")
	}

	ok, err = policy.CanReceive(alice, noteEvent(t, "notes", "bob"))
	if err != nil {
		t.Fatalf("CanReceive: %v", err)
	}
	if ok {
		t.Error("non-owner received another user's event")
	}
}

func TestOwnerPolicy_UnknownResourceFailsClosedForAllIdentities(t *testing.T) {
	policy := OwnerPolicy{}
	for _, caller := range []model.Identity{
		{ID: "alice", Role: model.RoleMember},
		{ID: "root", Role: model.RoleAdmin},
	} {
		ok, err := policy.CanReceive(caller, noteEvent(t, "widgets", "alice"))
		if err != nil {
			t.Fatalf("CanReceive(%s): %v", caller.ID, err)
		}
		if ok {
			t.Errorf("unknown resource must not be receivable, but %s (%s) received it", caller.ID, caller.Role)
		}
	}
}

func TestOwnerPolicy_MissingOwnershipFailsClosedForAllIdentities(t *testing.T) {
	evt := &events.Event{
		ID:       "ev-2",
		Resource: "notes",
		Action:   events.ActionDeleted,
		Payload:  json.RawMessage(`{"id":"nt-1"}`),
	}
	policy := OwnerPolicy{}
	for _, caller := range []model.Identity{
		{ID: "alice", Role: model.RoleMember},
		{ID: "root", Role: model.RoleAdmin},
	} {
		ok, err := policy.CanReceive(caller, evt)
		if err != nil {
			t.Fatalf("CanReceive(%s): %v", caller.ID, err)
		}
		if ok {
			t.Errorf("payload without created_by must not be receivable, but %s (%s) received it", caller.ID, caller.Role)
		}
	}
}

func TestOwnerPolicy_MalformedPayloadReturnsError(t *testing.T) {
	alice := model.Identity{ID: "alice", Role: model.RoleMember}
	evt := &events.Event{
		ID:       "ev-3",
		Resource: "notes",
		Action:   events.ActionCreated,
		Payload:  json.RawMessage(`{not json`),
	}
	ok, err := OwnerPolicy{}.CanReceive(alice, evt)
	if err == nil {
		t.Fatal("expected error for malformed payload")
	}
	if ok {
		t.Error("errored decision must not grant access")
	}
}
