// Package authz decides whether a subscriber may observe a given event.
package authz

import (
	"encoding/json"
	"fmt"

	"github.com/groblegark/knotes/internal/events"
	"github.com/groblegark/knotes/internal/model"
)

// Filter decides whether a subscriber may observe an event. Implementations
// may perform their own lookups and may fail; a returned error means the
// decision could not be made, and callers must treat the event as not
// receivable (fail closed) while continuing to serve subsequent events.
type Filter interface {
	CanReceive(identity model.Identity, evt *events.Event) (bool, error)
}

// OwnerPolicy is the default filter: admins receive every well-formed event,
// everyone else receives only events whose payload they own. Unknown resources
// and payloads without an ownership attribute are not receivable by anyone,
// admins included.
type OwnerPolicy struct{}

var _ Filter = OwnerPolicy{}

// CanReceive implements Filter.
func (OwnerPolicy) CanReceive(identity model.Identity, evt *events.Event) (bool, error) {
	// Only resources the policy knows about are receivable, for any identity.
	if evt.Resource != "notes" {
		return false, nil
	}

	var owned struct {
		CreatedBy string `json:"created_by"`
	}
	if err := json.Unmarshal(evt.Payload, &owned); err != nil {
		return false, fmt.Errorf("decoding event payload: %w", err)
	}
	if owned.CreatedBy == "" {
		return false, nil
	}

	if identity.IsAdmin() {
		return true, nil
	}
	return owned.CreatedBy == identity.ID, nil
}
