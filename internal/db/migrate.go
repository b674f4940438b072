package db

import (
	"database/sql"
	"fmt"
)

// Migrate runs all schema migrations. Every statement is re-run on each open,
// so statements must be idempotent.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	// Local cache: one row per record, seq preserves first-insertion order.
	`CREATE TABLE IF NOT EXISTS cached_records (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		id         TEXT NOT NULL UNIQUE,
		parent_id  TEXT NOT NULL,
		kind       TEXT NOT NULL DEFAULT '',
		payload    TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_cached_records_parent ON cached_records(parent_id)`,

	// Authoritative store served by the reference backend, scoped per owner.
	`CREATE TABLE IF NOT EXISTS records (
		id         TEXT PRIMARY KEY,
		owner_id   TEXT NOT NULL,
		parent_id  TEXT NOT NULL,
		kind       TEXT NOT NULL DEFAULT '',
		payload    TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_records_owner_parent ON records(owner_id, parent_id)`,
}
