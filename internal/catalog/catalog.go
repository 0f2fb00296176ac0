// Package catalog keeps a SQLite journal of processing runs so earlier work
// on a corpus can be reviewed from the command line. Catalog trouble is never
// allowed to block processing; callers log and move on.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"tierkit/internal/config"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    kind       TEXT NOT NULL,
    transcript TEXT NOT NULL,
    output_dir TEXT NOT NULL,
    segments   INTEGER NOT NULL DEFAULT 0,
    outputs    INTEGER NOT NULL DEFAULT 0,
    status     TEXT NOT NULL,
    error      TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// Run is one journal entry.
type Run struct {
	ID         int64
	Kind       string
	Transcript string
	OutputDir  string
	Segments   int
	Outputs    int
	Status     string
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Store manages the run journal backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database at the configured
// path.
func Open(cfg *config.Config) (*Store, error) {
	dbPath := cfg.Catalog.Path
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init catalog schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Begin records the start of a run and returns its ID.
func (s *Store) Begin(ctx context.Context, kind, transcript, outputDir string) (int64, error) {
	now := timestamp()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (kind, transcript, output_dir, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		kind, transcript, outputDir, StatusRunning, now, now)
	if err != nil {
		return 0, fmt.Errorf("record run start: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record run start: %w", err)
	}
	return id, nil
}

// Complete marks a run as finished, with the number of redaction segments it
// processed and the number of files it produced.
func (s *Store) Complete(ctx context.Context, id int64, segments, outputs int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, segments = ?, outputs = ?, updated_at = ? WHERE id = ?`,
		StatusCompleted, segments, outputs, timestamp(), id)
	if err != nil {
		return fmt.Errorf("record run completion: %w", err)
	}
	return nil
}

// Fail marks a run as failed with its error message.
func (s *Store) Fail(ctx context.Context, id int64, message string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		StatusFailed, message, timestamp(), id)
	if err != nil {
		return fmt.Errorf("record run failure: %w", err)
	}
	return nil
}

// Recent returns the most recent runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, transcript, output_dir, segments, outputs, status, error, created_at, updated_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var created, updated string
		if err := rows.Scan(&run.ID, &run.Kind, &run.Transcript, &run.OutputDir,
			&run.Segments, &run.Outputs, &run.Status, &run.Error, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.CreatedAt, _ = time.Parse(time.RFC3339, created)
		run.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
