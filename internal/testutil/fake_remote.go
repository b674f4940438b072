package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/alexanderramin/prdsmith/internal/domain"
	"github.com/alexanderramin/prdsmith/internal/remote"
)

// Remote operation names for FakeRemote.FailOn.
const (
	OpCreate = "create"
	OpGet    = "get"
	OpExists = "exists"
	OpQuery  = "query"
	OpUpdate = "update"
	OpDelete = "delete"
)

// FakeRemote is an in-memory remote.Store with scriptable failures. Records
// are cloned on the way in and out so callers cannot alias stored state.
type FakeRemote struct {
	mu       sync.Mutex
	records  map[string]*domain.Record
	failures map[string]error
	down     error
	calls    map[string]int

	// Now stamps UpdatedAt on remote-side merges.
	Now func() time.Time
}

var _ remote.Store = (*FakeRemote)(nil)

func NewFakeRemote() *FakeRemote {
	return &FakeRemote{
		records:  make(map[string]*domain.Record),
		failures: make(map[string]error),
		calls:    make(map[string]int),
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// FailOn makes every call of op return err until cleared with a nil err.
func (f *FakeRemote) FailOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, op)
		return
	}
	f.failures[op] = err
}

// GoDown makes every operation fail with remote.ErrNetwork.
func (f *FakeRemote) GoDown() { f.SetDown(fmt.Errorf("%w: connection refused", remote.ErrNetwork)) }

// SetDown makes every operation fail with err; nil restores service.
func (f *FakeRemote) SetDown(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = err
}

func (f *FakeRemote) Recover() { f.SetDown(nil) }

// Seed stores r directly, bypassing failure injection.
func (f *FakeRemote) Seed(records ...*domain.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range records {
		f.records[r.ID] = r.Clone()
	}
}

// Stored returns the record held under id, bypassing failure injection.
func (f *FakeRemote) Stored(id string) (*domain.Record, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	return r.Clone(), ok
}

// Calls reports how many times op was invoked, failed or not.
func (f *FakeRemote) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *FakeRemote) enter(op string) error {
	f.calls[op]++
	if f.down != nil {
		return f.down
	}
	return f.failures[op]
}

func (f *FakeRemote) Create(_ context.Context, r *domain.Record) (*domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(OpCreate); err != nil {
		return nil, err
	}
	if _, ok := f.records[r.ID]; ok {
		return nil, fmt.Errorf("%w: record %s exists", remote.ErrRejected, r.ID)
	}
	f.records[r.ID] = r.Clone()
	return r.Clone(), nil
}

func (f *FakeRemote) Get(_ context.Context, id string) (*domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(OpGet); err != nil {
		return nil, err
	}
	r, ok := f.records[id]
	if !ok {
		return nil, fmt.Errorf("record %s: %w", id, remote.ErrNotFound)
	}
	return r.Clone(), nil
}

func (f *FakeRemote) Exists(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(OpExists); err != nil {
		return false, err
	}
	_, ok := f.records[id]
	return ok, nil
}

// QueryByParent returns matches in reverse ID order so callers cannot depend
// on any particular ordering.
func (f *FakeRemote) QueryByParent(_ context.Context, parentID string) ([]*domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(OpQuery); err != nil {
		return nil, err
	}
	out := []*domain.Record{}
	for _, r := range f.records {
		if r.ParentID == parentID {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *FakeRemote) Update(_ context.Context, id string, changes domain.Payload) (*domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(OpUpdate); err != nil {
		return nil, err
	}
	r, ok := f.records[id]
	if !ok {
		return nil, fmt.Errorf("record %s: %w", id, remote.ErrNotFound)
	}
	r.Payload = r.Payload.Merge(changes)
	r.UpdatedAt = f.Now()
	return r.Clone(), nil
}

// Put counts and fails as OpUpdate.
func (f *FakeRemote) Put(_ context.Context, rec *domain.Record) (*domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(OpUpdate); err != nil {
		return nil, err
	}
	r, ok := f.records[rec.ID]
	if !ok {
		return nil, fmt.Errorf("record %s: %w", rec.ID, remote.ErrNotFound)
	}
	r.ParentID = rec.ParentID
	r.Kind = rec.Kind
	r.Payload = r.Payload.Merge(rec.Payload)
	r.UpdatedAt = f.Now()
	return r.Clone(), nil
}

func (f *FakeRemote) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(OpDelete); err != nil {
		return err
	}
	if _, ok := f.records[id]; !ok {
		return fmt.Errorf("record %s: %w", id, remote.ErrNotFound)
	}
	delete(f.records, id)
	return nil
}
