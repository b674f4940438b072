package service

import (
	"context"

	"github.com/alexanderramin/prdsmith/internal/domain"
)

// RecordService is the single entry point for reading and writing records
// across the local cache and the remote store. Remote failures never escape
// it: reads fall back to the cache and writes return the cached value.
type RecordService interface {
	// ListByParent returns the remote records for parentID followed by
	// local-only ones in cache insertion order. No ID appears twice.
	ListByParent(ctx context.Context, parentID string) []*domain.Record
	// GetByID prefers the remote copy and refreshes the cache with it.
	GetByID(ctx context.Context, id string) (*domain.Record, bool)
	// RequireByID is GetByID for callers that need the record to exist;
	// absence in both stores returns domain.ErrNotFound.
	RequireByID(ctx context.Context, id string) (*domain.Record, error)
	// Save upserts locally first, then creates or updates remotely.
	Save(ctx context.Context, r *domain.Record) (*domain.Record, error)
	// Update shallow-merges changes into the record's payload.
	Update(ctx context.Context, id string, changes domain.Payload) (*domain.Record, error)
	// Delete reports whether the record was removed from at least one store.
	Delete(ctx context.Context, id string) bool
}
