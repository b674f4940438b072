package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/prdsmith/internal/domain"
)

// storedTimeLayout is fixed-width so ORDER BY on the text column is
// chronological. Parsing accepts any RFC 3339 value.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// recordColumns is the column order every scanRecord caller must select.
const recordColumns = `id, parent_id, kind, payload, created_at, updated_at`

// scanRecord reads one record in recordColumns order.
func scanRecord(s rowScanner) (*domain.Record, error) {
	var r domain.Record
	var kind, payload, createdAt, updatedAt string
	if err := s.Scan(&r.ID, &r.ParentID, &kind, &payload, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	r.Kind = domain.RecordKind(kind)

	if err := json.Unmarshal([]byte(payload), &r.Payload); err != nil {
		return nil, fmt.Errorf("decoding payload of %s: %w", r.ID, err)
	}

	var parseErr error
	r.CreatedAt, parseErr = time.Parse(time.RFC3339Nano, createdAt)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at of %s: %w", r.ID, parseErr)
	}
	r.UpdatedAt, parseErr = time.Parse(time.RFC3339Nano, updatedAt)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at of %s: %w", r.ID, parseErr)
	}
	return &r, nil
}

// encodePayload serializes a payload for the payload TEXT column.
func encodePayload(p domain.Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("serializing payload: %w", err)
	}
	return string(data), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}
