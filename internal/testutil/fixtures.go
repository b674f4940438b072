package testutil

import (
	"time"

	"github.com/alexanderramin/prdsmith/internal/domain"
	"github.com/google/uuid"
)

// Record options
type RecordOption func(*domain.Record)

func WithID(id string) RecordOption {
	return func(r *domain.Record) {
		r.ID = id
	}
}

func WithKind(k domain.RecordKind) RecordOption {
	return func(r *domain.Record) {
		r.Kind = k
	}
}

func WithPayload(p domain.Payload) RecordOption {
	return func(r *domain.Record) {
		r.Payload = p
	}
}

func WithField(key string, value any) RecordOption {
	return func(r *domain.Record) {
		if r.Payload == nil {
			r.Payload = domain.Payload{}
		}
		r.Payload[key] = value
	}
}

func WithTimestamps(created, updated time.Time) RecordOption {
	return func(r *domain.Record) {
		r.CreatedAt = created
		r.UpdatedAt = updated
	}
}

func NewTestRecord(parentID string, opts ...RecordOption) *domain.Record {
	now := time.Now().UTC()
	r := &domain.Record{
		ID:        uuid.New().String(),
		ParentID:  parentID,
		Kind:      domain.KindFeature,
		Payload:   domain.Payload{"name": "Test feature"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func NewTestBrief(opts ...RecordOption) *domain.Record {
	base := []RecordOption{
		WithKind(domain.KindBrief),
		WithPayload(domain.Payload{
			"title":       "Habit tracker",
			"description": "A mobile app that helps people build daily habits.",
		}),
	}
	return NewTestRecord("workspace", append(base, opts...)...)
}

// Clock is a manually advanced time source.
type Clock struct {
	t time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{t: start.UTC()}
}

func (c *Clock) Now() time.Time { return c.t }

func (c *Clock) Advance(d time.Duration) time.Time {
	c.t = c.t.Add(d)
	return c.t
}
