package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/model"
)

// execer abstracts *sql.DB and *sql.Tx for executing statements.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// RecordRun inserts one repository outcome into the ledger.
func RecordRun(ex execer, run *model.Run) error {
	ok := 0
	if run.OK {
		ok = 1
	}
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := ex.Exec(
		`INSERT INTO runs (repository, ok, error, records, unmapped, output_path, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Repository, ok, run.Error, run.Records, run.Unmapped, run.OutputPath,
		run.Duration.Milliseconds(), createdAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// ListRuns retrieves ledger entries ordered by most recent first. An empty
// repo matches all repositories; limit <= 0 means no limit.
func ListRuns(db *sql.DB, repo string, limit int) ([]model.Run, error) {
	query := `SELECT id, repository, ok, error, records, unmapped, output_path, duration_ms, created_at
	          FROM runs`
	var args []any

	if repo != "" {
		query += ` WHERE repository = ?`
		args = append(args, repo)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var ok int
		var errMsg, outputPath sql.NullString
		var durationMS int64
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Repository, &ok, &errMsg, &r.Records, &r.Unmapped, &outputPath, &durationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		r.OK = ok == 1
		r.Error = errMsg.String
		r.OutputPath = outputPath.String
		r.Duration = time.Duration(durationMS) * time.Millisecond

		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing run timestamp %q: %w", createdAt, err)
		}
		r.CreatedAt = t

		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}
