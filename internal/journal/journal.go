// Package journal records reconcile runs and the URL changes they made in SQLite.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	started_at   INTEGER NOT NULL,
	finished_at  INTEGER NOT NULL,
	dry_run      INTEGER NOT NULL,
	checked      INTEGER NOT NULL,
	dead         INTEGER NOT NULL,
	fixed        INTEGER NOT NULL,
	upgraded     INTEGER NOT NULL,
	still_broken INTEGER NOT NULL,
	skipped      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS changes (
	run_id   TEXT NOT NULL REFERENCES runs(id),
	seq      INTEGER NOT NULL,
	entry_id TEXT NOT NULL,
	title    TEXT NOT NULL,
	old_url  TEXT NOT NULL,
	new_url  TEXT NOT NULL,
	kind     TEXT NOT NULL,
	reason   TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
);
CREATE INDEX IF NOT EXISTS runs_started ON runs(started_at);
`

type Run struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	DryRun      bool
	Checked     int
	Dead        int
	Fixed       int
	Upgraded    int
	StillBroken int
	Skipped     int
	Changes     []Change
}

type Change struct {
	EntryID string
	Title   string
	OldURL  string
	NewURL  string
	Kind    string
	Reason  string
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("journal open: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal open: %w", err)
	}
	// Single connection; concurrent writers would hit SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRun stores run and its changes in one transaction.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("journal record: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, dry_run, checked, dead, fixed, upgraded, still_broken, skipped)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC().UnixMilli(), run.FinishedAt.UTC().UnixMilli(), boolInt(run.DryRun),
		run.Checked, run.Dead, run.Fixed, run.Upgraded, run.StillBroken, run.Skipped)
	if err != nil {
		return fmt.Errorf("journal record run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO changes (run_id, seq, entry_id, title, old_url, new_url, kind, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("journal record changes: %w", err)
	}
	defer stmt.Close()
	for i, c := range run.Changes {
		if _, err := stmt.ExecContext(ctx, run.ID, i, c.EntryID, c.Title, c.OldURL, c.NewURL, c.Kind, c.Reason); err != nil {
			return fmt.Errorf("journal record change %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// RecentRuns returns up to limit runs, newest first. Changes are not loaded.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, dry_run, checked, dead, fixed, upgraded, still_broken, skipped
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started, finished int64
		var dry int
		if err := rows.Scan(&r.ID, &started, &finished, &dry, &r.Checked, &r.Dead, &r.Fixed, &r.Upgraded, &r.StillBroken, &r.Skipped); err != nil {
			return nil, fmt.Errorf("journal runs scan: %w", err)
		}
		r.StartedAt = time.UnixMilli(started).UTC()
		r.FinishedAt = time.UnixMilli(finished).UTC()
		r.DryRun = dry != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// Changes returns the changes recorded for runID in the order they were made.
func (s *Store) Changes(ctx context.Context, runID string) ([]Change, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entry_id, title, old_url, new_url, kind, reason FROM changes WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("journal changes: %w", err)
	}
	defer rows.Close()

	var out []Change
	for rows.Next() {
		var c Change
		if err := rows.Scan(&c.EntryID, &c.Title, &c.OldURL, &c.NewURL, &c.Kind, &c.Reason); err != nil {
			return nil, fmt.Errorf("journal changes scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
