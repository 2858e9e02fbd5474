package activity

import (
	"encoding/json"
	"time"
)

// Record is one entity-change event on the audit trail.
type Record struct {
	ID         string    `json:"id"`
	Entity     string    `json:"entity"` // "note", "person", "tag"
	EntityID   string    `json:"entity_id"`
	Action     string    `json:"action"` // "created", "updated", "deleted"
	Actor      string    `json:"actor,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (r *Record) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// GetPartitionKey routes all events for one entity record to the same
// partition so consumers observe them in order.
func (r *Record) GetPartitionKey() string {
	return r.Entity + ":" + r.EntityID
}

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)
