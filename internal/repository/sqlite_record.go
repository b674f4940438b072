package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/prdsmith/internal/db"
	"github.com/alexanderramin/prdsmith/internal/domain"
)

// ErrConflict indicates a create for an ID that is already taken.
var ErrConflict = errors.New("record already exists")

// SQLiteRecordRepo implements RecordRepo on the records table. Every query is
// scoped by owner, so one owner can never observe another's records.
type SQLiteRecordRepo struct {
	db db.DBTX
}

func NewSQLiteRecordRepo(conn db.DBTX) *SQLiteRecordRepo {
	return &SQLiteRecordRepo{db: conn}
}

func (r *SQLiteRecordRepo) Create(ctx context.Context, ownerID string, rec *domain.Record) error {
	payload, err := encodePayload(rec.Payload)
	if err != nil {
		return err
	}
	query := `INSERT INTO records (id, owner_id, parent_id, kind, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		rec.ID,
		ownerID,
		rec.ParentID,
		string(rec.Kind),
		payload,
		formatTime(rec.CreatedAt),
		formatTime(rec.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("record %s: %w", rec.ID, ErrConflict)
		}
		return fmt.Errorf("inserting record: %w", err)
	}
	return nil
}

func (r *SQLiteRecordRepo) GetByID(ctx context.Context, ownerID, id string) (*domain.Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE owner_id = ? AND id = ?`, ownerID, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning record: %w", err)
	}
	return rec, nil
}

func (r *SQLiteRecordRepo) ListByParent(ctx context.Context, ownerID, parentID string) ([]*domain.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE owner_id = ? AND parent_id = ? ORDER BY created_at`,
		ownerID, parentID)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	records := []*domain.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return records, nil
}

func (r *SQLiteRecordRepo) Update(ctx context.Context, ownerID string, rec *domain.Record) error {
	payload, err := encodePayload(rec.Payload)
	if err != nil {
		return err
	}
	query := `UPDATE records SET parent_id = ?, kind = ?, payload = ?, updated_at = ?
		WHERE owner_id = ? AND id = ?`
	res, err := r.db.ExecContext(ctx, query,
		rec.ParentID,
		string(rec.Kind),
		payload,
		formatTime(rec.UpdatedAt),
		ownerID,
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("updating record: %w", err)
	}
	return requireAffected(res, rec.ID)
}

func (r *SQLiteRecordRepo) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	return requireAffected(res, id)
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
