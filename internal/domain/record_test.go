package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord_AssignsIDAndTimestamps(t *testing.T) {
	r := NewRecord("brief-1", KindFeature, Payload{"name": "Login"})

	assert.Len(t, r.ID, 36)
	assert.Equal(t, "brief-1", r.ParentID)
	assert.False(t, r.CreatedAt.IsZero())
	assert.Equal(t, r.CreatedAt, r.UpdatedAt)
	require.NoError(t, r.Validate())
}

func TestRecordValidate_MissingFields(t *testing.T) {
	cases := []struct {
		name   string
		record *Record
		msg    string
	}{
		{"nil", nil, "record is nil"},
		{"no id", &Record{ParentID: "p", Payload: Payload{}}, "id is required"},
		{"no parent", &Record{ID: "x", Payload: Payload{}}, "parent id is required"},
		{"no payload", &Record{ID: "x", ParentID: "p"}, "payload is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.record.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestRecordValidate_EmptyPayloadIsAllowed(t *testing.T) {
	r := &Record{ID: "x", ParentID: "p", Payload: Payload{}}
	assert.NoError(t, r.Validate())
}

func TestRecordValidate_KindIsNotChecked(t *testing.T) {
	for _, kind := range []RecordKind{"", KindFeature, "epic"} {
		r := &Record{ID: "x", ParentID: "p", Kind: kind, Payload: Payload{}}
		assert.NoError(t, r.Validate(), "kind %q", kind)
	}
}

func TestRecordClone_IndependentPayload(t *testing.T) {
	r := &Record{ID: "x", ParentID: "p", Payload: Payload{"name": "A"}}
	c := r.Clone()
	c.Payload["name"] = "B"

	assert.Equal(t, "A", r.Payload["name"])
	assert.Equal(t, "B", c.Payload["name"])
}

func TestRecordDisplayID(t *testing.T) {
	assert.Equal(t, "abcdef12", (&Record{ID: "abcdef12-3456"}).DisplayID())
	assert.Equal(t, "f1", (&Record{ID: "f1"}).DisplayID())
}
