package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alexanderramin/prdsmith/internal/db"
	"github.com/alexanderramin/prdsmith/internal/domain"
)

// ErrQuotaExceeded indicates an upsert would grow the cache past its byte quota.
var ErrQuotaExceeded = errors.New("local cache quota exceeded")

// SQLiteRecordCache implements RecordCache on the cached_records table.
type SQLiteRecordCache struct {
	db         db.DBTX
	logger     *slog.Logger
	quotaBytes int64
}

// NewSQLiteRecordCache creates a cache over conn. quotaBytes bounds the total
// serialized payload size; zero means unbounded. A nil logger discards warnings.
func NewSQLiteRecordCache(conn db.DBTX, logger *slog.Logger, quotaBytes int64) *SQLiteRecordCache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteRecordCache{db: conn, logger: logger, quotaBytes: quotaBytes}
}

func (c *SQLiteRecordCache) ListAll(ctx context.Context) []*domain.Record {
	rows, err := c.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM cached_records ORDER BY seq`)
	if err != nil {
		c.warn(ctx, "list", "", err)
		return []*domain.Record{}
	}
	defer rows.Close()

	records := []*domain.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			// A corrupt row is skipped rather than poisoning the whole cache.
			c.warn(ctx, "list", "", err)
			continue
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		c.warn(ctx, "list", "", err)
		return []*domain.Record{}
	}
	return records
}

func (c *SQLiteRecordCache) Get(ctx context.Context, id string) (*domain.Record, bool) {
	row := c.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM cached_records WHERE id = ?`, id)
	r, err := scanRecord(row)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.warn(ctx, "get", id, err)
		}
		return nil, false
	}
	return r, true
}

func (c *SQLiteRecordCache) Upsert(ctx context.Context, r *domain.Record) *domain.Record {
	stored := r.Clone()
	if err := c.upsert(ctx, stored); err != nil {
		c.warn(ctx, "upsert", r.ID, err)
	}
	return stored
}

func (c *SQLiteRecordCache) upsert(ctx context.Context, r *domain.Record) error {
	payload, err := encodePayload(r.Payload)
	if err != nil {
		return err
	}

	if c.quotaBytes > 0 {
		var used int64
		err := c.db.QueryRowContext(ctx,
			`SELECT COALESCE(SUM(LENGTH(CAST(payload AS BLOB))), 0) FROM cached_records WHERE id != ?`, r.ID,
		).Scan(&used)
		if err != nil {
			return fmt.Errorf("measuring cache usage: %w", err)
		}
		if need := used + int64(len(payload)); need > c.quotaBytes {
			return fmt.Errorf("%w: need %d of %d bytes", ErrQuotaExceeded, need, c.quotaBytes)
		}
	}

	// ON CONFLICT keeps the original seq, so a replaced record holds its position.
	query := `INSERT INTO cached_records (id, parent_id, kind, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			parent_id = excluded.parent_id,
			kind = excluded.kind,
			payload = excluded.payload,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`
	_, err = c.db.ExecContext(ctx, query,
		r.ID,
		r.ParentID,
		string(r.Kind),
		payload,
		formatTime(r.CreatedAt),
		formatTime(r.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting cached record: %w", err)
	}
	return nil
}

func (c *SQLiteRecordCache) Delete(ctx context.Context, id string) bool {
	res, err := c.db.ExecContext(ctx, `DELETE FROM cached_records WHERE id = ?`, id)
	if err != nil {
		c.warn(ctx, "delete", id, err)
		return false
	}
	n, err := res.RowsAffected()
	if err != nil {
		c.warn(ctx, "delete", id, err)
		return false
	}
	return n > 0
}

func (c *SQLiteRecordCache) warn(ctx context.Context, op, id string, err error) {
	c.logger.WarnContext(ctx, "local_cache_degraded", "op", op, "id", id, "error", err.Error())
}
