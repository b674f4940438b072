package repository

import (
	"context"

	"github.com/alexanderramin/prdsmith/internal/domain"
)

// RecordCache is the process-local durable copy of every record this client
// has seen. It never fails: storage errors are logged and degrade to no-ops,
// and an unreadable cache reads as empty.
type RecordCache interface {
	// ListAll returns every cached record in insertion order.
	ListAll(ctx context.Context) []*domain.Record
	Get(ctx context.Context, id string) (*domain.Record, bool)
	// Upsert inserts or replaces by ID and returns the stored value.
	Upsert(ctx context.Context, r *domain.Record) *domain.Record
	// Delete reports whether a record was removed.
	Delete(ctx context.Context, id string) bool
}

// RecordRepo is the authoritative, owner-scoped record table behind the
// reference backend.
type RecordRepo interface {
	Create(ctx context.Context, ownerID string, r *domain.Record) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.Record, error)
	ListByParent(ctx context.Context, ownerID, parentID string) ([]*domain.Record, error)
	Update(ctx context.Context, ownerID string, r *domain.Record) error
	Delete(ctx context.Context, ownerID, id string) error
}
