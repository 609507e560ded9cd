package db

import (
	"context"
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		sql: `
CREATE TABLE IF NOT EXISTS app_config (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS kv_store (
  key TEXT PRIMARY KEY,
  value BLOB NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
	},
	{
		version: 2,
		name:    "estimate_audit",
		sql: `
CREATE TABLE IF NOT EXISTS estimate_audit (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  input_kind TEXT NOT NULL CHECK(input_kind IN ('text', 'image')),
  outcome TEXT NOT NULL,
  calories INTEGER NOT NULL DEFAULT 0 CHECK(calories >= 0),
  requested_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_estimate_audit_requested_at ON estimate_audit(requested_at);
`,
	},
}

// defaultConfig is seeded once; later edits through app_config win.
var defaultConfig = map[string]string{
	"utc_offset_hours":   "3",
	"estimator_provider": "gemini",
}

const schemaMigrationsDDL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// ApplyMigrations brings the schema up to date and seeds defaultConfig.
func ApplyMigrations(db *sql.DB) error {
	_, err := Migrate(context.Background(), db)
	return err
}

// Migrate applies pending migrations in version order and returns the
// versions it applied.
func Migrate(ctx context.Context, db *sql.DB) ([]int, error) {
	if _, err := db.ExecContext(ctx, schemaMigrationsDDL); err != nil {
		return nil, fmt.Errorf("ensure schema_migrations table: %w", err)
	}
	var applied []int
	for _, m := range migrations {
		ok, err := applyMigration(ctx, db, m)
		if err != nil {
			return applied, err
		}
		if ok {
			applied = append(applied, m.version)
		}
	}
	for key, value := range defaultConfig {
		if _, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO app_config(key, value) VALUES(?, ?)`, key, value); err != nil {
			return applied, fmt.Errorf("seed default config %s: %w", key, err)
		}
	}
	return applied, nil
}

// applyMigration runs m inside one transaction unless it is already recorded.
func applyMigration(ctx context.Context, db *sql.DB, m migration) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin migration %d: %w", m.version, err)
	}
	defer func() { _ = tx.Rollback() }()

	var done int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM schema_migrations WHERE version = ?`, m.version).Scan(&done)
	if err != nil {
		return false, fmt.Errorf("check migration %d: %w", m.version, err)
	}
	if done > 0 {
		return false, nil
	}
	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return false, fmt.Errorf("apply migration %d (%s): %w", m.version, m.name, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version, name) VALUES(?, ?)`, m.version, m.name); err != nil {
		return false, fmt.Errorf("record migration %d: %w", m.version, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit migration %d: %w", m.version, err)
	}
	return true, nil
}
