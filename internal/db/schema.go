package db

import (
	"database/sql"
	"fmt"
	"strconv"
)

const currentSchemaVersion = 1

// schemaDDL contains the CREATE TABLE statements for the ledger schema.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT
);

CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	repository  TEXT NOT NULL,
	ok          INTEGER NOT NULL,
	error       TEXT,
	records     INTEGER NOT NULL DEFAULT 0,
	unmapped    INTEGER NOT NULL DEFAULT 0,
	output_path TEXT,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_repository ON runs(repository);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// Initialize creates all tables if they don't exist and sets the schema
// version. A database written by a different schema version is rejected
// rather than silently reused.
func Initialize(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(schemaDDL); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	// Set schema version only if not already set.
	_, err = tx.Exec(
		`INSERT OR IGNORE INTO meta (key, value) VALUES ('schema_version', ?)`,
		strconv.Itoa(currentSchemaVersion),
	)
	if err != nil {
		return fmt.Errorf("setting schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	v, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	if v != currentSchemaVersion {
		return fmt.Errorf("unsupported ledger schema version %d: expected %d", v, currentSchemaVersion)
	}
	return nil
}

// SchemaVersion returns the current schema version from the meta table.
func SchemaVersion(db *sql.DB) (int, error) {
	var val string
	err := db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&val)
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}

	v, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("parsing schema version %q: %w", val, err)
	}

	return v, nil
}
