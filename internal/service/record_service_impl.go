package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/prdsmith/internal/domain"
	"github.com/alexanderramin/prdsmith/internal/remote"
	"github.com/alexanderramin/prdsmith/internal/repository"
)

type recordService struct {
	local    repository.RecordCache
	remote   remote.Store
	logger   *slog.Logger
	now      func() time.Time
	observer UseCaseObserver
}

// RecordServiceOption customises NewRecordService.
type RecordServiceOption func(*recordService)

func WithLogger(l *slog.Logger) RecordServiceOption {
	return func(s *recordService) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) RecordServiceOption {
	return func(s *recordService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithObservers(observers ...UseCaseObserver) RecordServiceOption {
	return func(s *recordService) {
		s.observer = useCaseObserverOrNoop(observers)
	}
}

// NewRecordService builds the coordinator. A nil store behaves as a remote
// that is permanently unreachable.
func NewRecordService(local repository.RecordCache, store remote.Store, opts ...RecordServiceOption) RecordService {
	if store == nil {
		store = remote.Offline{}
	}
	s := &recordService{
		local:    local,
		remote:   store,
		logger:   slog.New(slog.DiscardHandler),
		now:      func() time.Time { return time.Now().UTC() },
		observer: NoopUseCaseObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *recordService) ListByParent(ctx context.Context, parentID string) []*domain.Record {
	ev := s.begin("list-by-parent", map[string]any{"parent_id": parentID})

	remoteRecs, err := s.remote.QueryByParent(ctx, parentID)
	if err != nil {
		s.degrade(ctx, ev, "query_by_parent", parentID, err)
		remoteRecs = nil
	}

	seen := make(map[string]bool, len(remoteRecs))
	merged := make([]*domain.Record, 0, len(remoteRecs))
	for _, r := range remoteRecs {
		if r == nil || seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		merged = append(merged, r)
	}

	localOnly := 0
	for _, l := range s.local.ListAll(ctx) {
		if l.ParentID != parentID || seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		merged = append(merged, l)
		localOnly++
	}

	ev.fields["remote_count"] = len(merged) - localOnly
	ev.fields["local_only_count"] = localOnly
	s.finish(ctx, ev, nil)
	return merged
}

func (s *recordService) GetByID(ctx context.Context, id string) (*domain.Record, bool) {
	ev := s.begin("get-by-id", map[string]any{"id": id})
	r, ok := s.getByID(ctx, ev, id)
	ev.fields["found"] = ok
	s.finish(ctx, ev, nil)
	return r, ok
}

func (s *recordService) RequireByID(ctx context.Context, id string) (rec *domain.Record, err error) {
	ev := s.begin("require-by-id", map[string]any{"id": id})
	defer func() { s.finish(ctx, ev, err) }()

	r, ok := s.getByID(ctx, ev, id)
	if !ok {
		return nil, fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
	}
	return r, nil
}

func (s *recordService) getByID(ctx context.Context, ev *useCase, id string) (*domain.Record, bool) {
	cached, cachedOK := s.local.Get(ctx, id)

	r, err := s.remote.Get(ctx, id)
	if err == nil {
		ev.fields["source"] = "remote"
		return s.local.Upsert(ctx, r), true
	}
	if !errors.Is(err, remote.ErrNotFound) {
		s.degrade(ctx, ev, "get", id, err)
	}

	if !cachedOK {
		return nil, false
	}
	ev.fields["source"] = "local"
	return cached, true
}

func (s *recordService) Save(ctx context.Context, r *domain.Record) (saved *domain.Record, err error) {
	ev := s.begin("save", nil)
	defer func() { s.finish(ctx, ev, err) }()

	if err := r.Validate(); err != nil {
		return nil, err
	}
	ev.fields["id"] = r.ID

	rec := r.Clone()
	now := s.now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	local := s.local.Upsert(ctx, rec)

	exists, err := s.remote.Exists(ctx, rec.ID)
	if err != nil {
		s.degrade(ctx, ev, "exists", rec.ID, err)
		return local, nil
	}

	var remoteRec *domain.Record
	if exists {
		ev.fields["remote_op"] = "update"
		remoteRec, err = s.remote.Put(ctx, rec)
	} else {
		ev.fields["remote_op"] = "create"
		remoteRec, err = s.remote.Create(ctx, rec)
	}
	if err != nil {
		s.degrade(ctx, ev, "save", rec.ID, err)
		return local, nil
	}
	return s.local.Upsert(ctx, remoteRec), nil
}

func (s *recordService) Update(ctx context.Context, id string, changes domain.Payload) (updated *domain.Record, err error) {
	ev := s.begin("update", map[string]any{"id": id, "keys": len(changes)})
	defer func() { s.finish(ctx, ev, err) }()

	var local *domain.Record
	if cached, ok := s.local.Get(ctx, id); ok {
		cached.Payload = cached.Payload.Merge(changes)
		cached.UpdatedAt = s.now()
		local = s.local.Upsert(ctx, cached)
	}

	r, err := s.remote.Update(ctx, id, changes)
	if err == nil {
		return s.local.Upsert(ctx, r), nil
	}
	if !errors.Is(err, remote.ErrNotFound) {
		s.degrade(ctx, ev, "update", id, err)
	}
	if local == nil {
		return nil, fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
	}
	return local, nil
}

func (s *recordService) Delete(ctx context.Context, id string) bool {
	ev := s.begin("delete", map[string]any{"id": id})

	localExisted := s.local.Delete(ctx, id)

	remoteDeleted := false
	if err := s.remote.Delete(ctx, id); err == nil {
		remoteDeleted = true
	} else if !errors.Is(err, remote.ErrNotFound) {
		s.degrade(ctx, ev, "delete", id, err)
	}

	ev.fields["local_existed"] = localExisted
	ev.fields["remote_deleted"] = remoteDeleted
	s.finish(ctx, ev, nil)
	return localExisted || remoteDeleted
}

type useCase struct {
	name      string
	startedAt time.Time
	fields    map[string]any
}

func (s *recordService) begin(name string, fields map[string]any) *useCase {
	if fields == nil {
		fields = map[string]any{}
	}
	return &useCase{name: name, startedAt: time.Now(), fields: fields}
}

func (s *recordService) finish(ctx context.Context, ev *useCase, err error) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      ev.name,
		StartedAt: ev.startedAt,
		Duration:  time.Since(ev.startedAt),
		Success:   err == nil,
		Err:       err,
		Fields:    ev.fields,
	})
}

// degrade logs a remote failure the caller will not see.
func (s *recordService) degrade(ctx context.Context, ev *useCase, op, id string, err error) {
	ev.fields["degraded"] = true
	s.logger.WarnContext(ctx, "remote_store_fallback", "op", op, "id", id, "error", err)
}
