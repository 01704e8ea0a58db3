// Package store handles SQLite persistence of run history.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Run is one recorded invocation of a computation.
type Run struct {
	ID        string
	Kind      string // cright, cthin, threshold, optimize, horizontals
	CreatedAt time.Time
	Params    json.RawMessage
	Results   json.RawMessage
	MarginPct sql.NullFloat64
	LogT0     sql.NullFloat64
	Status    string
}

// Store wraps SQLite access for run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			created_at TEXT NOT NULL,
			params_json TEXT NOT NULL,
			results_json TEXT NOT NULL,
			margin_pct REAL,
			log_t0 REAL,
			status TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_kind_created_at ON runs(kind, created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores one completed run.
func (s *Store) InsertRun(ctx context.Context, run Run) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, created_at, params_json, results_json, margin_pct, log_t0, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Kind,
		run.CreatedAt.Format(time.RFC3339Nano),
		string(run.Params),
		string(run.Results),
		run.MarginPct,
		run.LogT0,
		run.Status,
	)
	return err
}

// ListRuns returns the most recent runs, newest first. An empty kind
// matches every kind.
func (s *Store) ListRuns(ctx context.Context, kind string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, created_at, params_json, results_json, margin_pct, log_t0, status
		 FROM runs
		 WHERE (? = '' OR kind = ?)
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		kind, kind, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []Run
	for rows.Next() {
		var (
			run     Run
			created string
			params  string
			results string
		)
		if err := rows.Scan(&run.ID, &run.Kind, &created, &params, &results,
			&run.MarginPct, &run.LogT0, &run.Status); err != nil {
			return nil, err
		}
		run.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, err
		}
		run.Params = json.RawMessage(params)
		run.Results = json.RawMessage(results)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// BestRun returns the feasible run with the lowest certified log T0
// for a kind, or sql.ErrNoRows when none qualifies.
func (s *Store) BestRun(ctx context.Context, kind string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, created_at, params_json, results_json, margin_pct, log_t0, status
		 FROM runs
		 WHERE kind = ? AND status = 'PASS' AND log_t0 IS NOT NULL
		 ORDER BY log_t0 ASC, created_at DESC
		 LIMIT 1`,
		kind)

	var (
		run     Run
		created string
		params  string
		results string
	)
	err := row.Scan(&run.ID, &run.Kind, &created, &params, &results,
		&run.MarginPct, &run.LogT0, &run.Status)
	if err != nil {
		return Run{}, err
	}
	run.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Run{}, err
	}
	run.Params = json.RawMessage(params)
	run.Results = json.RawMessage(results)
	return run, nil
}
