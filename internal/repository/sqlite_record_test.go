package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/prdsmith/internal/domain"
	"github.com/alexanderramin/prdsmith/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRepo_CreateAndGetByID(t *testing.T) {
	repo := NewSQLiteRecordRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	rec := testutil.NewTestRecord("b1", testutil.WithKind(domain.KindPRD), testutil.WithField("title", "Spec"))
	require.NoError(t, repo.Create(ctx, "alice", rec))

	fetched, err := repo.GetByID(ctx, "alice", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, fetched.ID)
	assert.Equal(t, domain.KindPRD, fetched.Kind)
	assert.Equal(t, "Spec", fetched.Payload.String("title"))
}

func TestRecordRepo_OwnerScoping(t *testing.T) {
	repo := NewSQLiteRecordRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	rec := testutil.NewTestRecord("b1")
	require.NoError(t, repo.Create(ctx, "alice", rec))

	_, err := repo.GetByID(ctx, "bob", rec.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := repo.ListByParent(ctx, "bob", "b1")
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, repo.Delete(ctx, "bob", rec.ID), domain.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, "bob", rec), domain.ErrNotFound)
}

func TestRecordRepo_CreateDuplicateConflicts(t *testing.T) {
	repo := NewSQLiteRecordRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	rec := testutil.NewTestRecord("b1")
	require.NoError(t, repo.Create(ctx, "alice", rec))
	assert.ErrorIs(t, repo.Create(ctx, "alice", rec), ErrConflict)
}

func TestRecordRepo_ListByParent_OrderedByCreation(t *testing.T) {
	repo := NewSQLiteRecordRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	second := testutil.NewTestRecord("b1", testutil.WithID("second"), testutil.WithTimestamps(base.Add(time.Minute), base.Add(time.Minute)))
	first := testutil.NewTestRecord("b1", testutil.WithID("first"), testutil.WithTimestamps(base, base))
	other := testutil.NewTestRecord("b2", testutil.WithID("other"))
	for _, r := range []*domain.Record{second, first, other} {
		require.NoError(t, repo.Create(ctx, "alice", r))
	}

	list, err := repo.ListByParent(ctx, "alice", "b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, ids(list))
}

func TestRecordRepo_UpdateAndDelete(t *testing.T) {
	repo := NewSQLiteRecordRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	rec := testutil.NewTestRecord("b1")
	require.NoError(t, repo.Create(ctx, "alice", rec))

	rec.Payload = rec.Payload.Merge(domain.Payload{"priority": "must"})
	rec.UpdatedAt = rec.UpdatedAt.Add(time.Hour)
	require.NoError(t, repo.Update(ctx, "alice", rec))

	fetched, err := repo.GetByID(ctx, "alice", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "must", fetched.Payload.String("priority"))
	assert.Equal(t, "Test feature", fetched.Payload.String("name"))
	assert.True(t, rec.UpdatedAt.Equal(fetched.UpdatedAt))

	require.NoError(t, repo.Delete(ctx, "alice", rec.ID))
	assert.ErrorIs(t, repo.Delete(ctx, "alice", rec.ID), domain.ErrNotFound)
}
