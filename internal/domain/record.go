package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Record is the unit of persisted data (a brief, a feature, or a PRD). The same
// shape is held by the local cache and the remote store; ID is the only join key.
type Record struct {
	ID        string     `json:"id"`
	ParentID  string     `json:"parent_id"`
	Kind      RecordKind `json:"kind,omitempty"`
	Payload   Payload    `json:"payload"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewRecord creates a record with a fresh client-generated ID.
func NewRecord(parentID string, kind RecordKind, payload Payload) *Record {
	now := time.Now().UTC()
	return &Record{
		ID:        uuid.New().String(),
		ParentID:  parentID,
		Kind:      kind,
		Payload:   payload,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the fields every store requires: id, parent and payload.
func (r *Record) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: record is nil", ErrValidation)
	}
	if r.ID == "" {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	if r.ParentID == "" {
		return fmt.Errorf("%w: parent id is required", ErrValidation)
	}
	if r.Payload == nil {
		return fmt.Errorf("%w: payload is required", ErrValidation)
	}
	return nil
}

// Clone returns a copy whose payload map is independent of r's.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Payload = r.Payload.Clone()
	return &c
}

// DisplayID returns the first 8 characters of the ID for display.
func (r *Record) DisplayID() string {
	if len(r.ID) >= 8 {
		return r.ID[:8]
	}
	return r.ID
}
