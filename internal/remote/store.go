package remote

import (
	"context"
	"fmt"

	"github.com/alexanderramin/prdsmith/internal/domain"
)

// Store is the authoritative, possibly unavailable record store. Every method
// may fail with ErrNetwork, ErrAuth or ErrTimeout; Get, Update and Delete also
// fail with ErrNotFound for a missing ID.
type Store interface {
	Create(ctx context.Context, r *domain.Record) (*domain.Record, error)
	Get(ctx context.Context, id string) (*domain.Record, error)
	// Exists answers the create-vs-update question without error-driven branching.
	Exists(ctx context.Context, id string) (bool, error)
	// QueryByParent returns records in no guaranteed order.
	QueryByParent(ctx context.Context, parentID string) ([]*domain.Record, error)
	// Update shallow-merges changes into the stored payload server-side.
	Update(ctx context.Context, id string, changes domain.Payload) (*domain.Record, error)
	// Put saves an existing record: parent and kind are replaced and the
	// payload is shallow-merged like Update.
	Put(ctx context.Context, r *domain.Record) (*domain.Record, error)
	Delete(ctx context.Context, id string) error
}

// Offline is a Store with no backend configured. Every call fails with
// ErrNetwork, so the coordinator serves everything from the cache.
type Offline struct{}

var _ Store = Offline{}

var errOffline = fmt.Errorf("%w: no remote store configured", ErrNetwork)

func (Offline) Create(context.Context, *domain.Record) (*domain.Record, error) {
	return nil, errOffline
}

func (Offline) Get(context.Context, string) (*domain.Record, error) { return nil, errOffline }

func (Offline) Exists(context.Context, string) (bool, error) { return false, errOffline }

func (Offline) QueryByParent(context.Context, string) ([]*domain.Record, error) {
	return nil, errOffline
}

func (Offline) Update(context.Context, string, domain.Payload) (*domain.Record, error) {
	return nil, errOffline
}

func (Offline) Put(context.Context, *domain.Record) (*domain.Record, error) {
	return nil, errOffline
}

func (Offline) Delete(context.Context, string) error { return errOffline }
