// Package history keeps an SQLite record of validation runs and the raw
// values each run could not attribute to a country, for manual review.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/coo-registry/pkg/resolve"
)

// RunInfo describes where a batch came from.
type RunInfo struct {
	Input         string
	Column        string
	Mode          string
	BundleID      string
	BundleVersion string
}

// Run is a row from the runs table.
type Run struct {
	RunID         string
	Input         string
	Column        string
	Mode          string
	BundleID      string
	BundleVersion string
	Total         int
	Matched       int
	Unknown       int
	MethodCounts  map[string]int
	CreatedAt     time.Time
}

// UnmatchedValue is a raw value that resolved to Unknown.
type UnmatchedValue struct {
	RawValue *string
	Method   string
}

// Store manages the runs and unmatched tables.
type Store struct {
	db *sql.DB
}

const ddl = `
CREATE TABLE IF NOT EXISTS runs (
	run_id         TEXT PRIMARY KEY,
	input          TEXT NOT NULL,
	column_name    TEXT NOT NULL,
	mode           TEXT NOT NULL,
	bundle_id      TEXT NOT NULL,
	bundle_version TEXT NOT NULL DEFAULT '',
	total          INTEGER NOT NULL,
	matched        INTEGER NOT NULL,
	unknown        INTEGER NOT NULL,
	method_counts  TEXT NOT NULL,
	created_at     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS unmatched (
	run_id    TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	raw_value TEXT,
	method    TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);
CREATE INDEX IF NOT EXISTS runs_created_at ON runs(created_at);`

// Open opens (or creates) the SQLite database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history tables: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun stores a finished batch and its Unknown rows in one transaction
// and returns the new run ID.
func (s *Store) RecordRun(ctx context.Context, info RunInfo, res *resolve.BatchResult) (string, error) {
	counts := make(map[string]int, len(res.Summary.MethodCounts))
	for m, n := range res.Summary.MethodCounts {
		counts[m.String()] = n
	}
	countsJSON, err := json.Marshal(counts)
	if err != nil {
		return "", fmt.Errorf("marshal method counts: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	runID := uuid.NewString()
	_, err = tx.ExecContext(ctx, `INSERT INTO runs
		(run_id, input, column_name, mode, bundle_id, bundle_version, total, matched, unknown, method_counts, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, info.Input, info.Column, info.Mode, info.BundleID, info.BundleVersion,
		res.Summary.Total, res.Summary.Matched, res.Summary.Unknown, string(countsJSON), time.Now().Unix())
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO unmatched (run_id, position, raw_value, method) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare unmatched: %w", err)
	}
	defer stmt.Close()

	pos := 0
	for _, rec := range res.Records {
		if !res.IsUnknown(rec) {
			continue
		}
		if _, err := stmt.ExecContext(ctx, runID, pos, rec.Raw.Ptr(), rec.Method.String()); err != nil {
			return "", fmt.Errorf("insert unmatched: %w", err)
		}
		pos++
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}
	return runID, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, input, column_name, mode, bundle_id, bundle_version,
		total, matched, unknown, method_counts, created_at
		FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			counts  string
			created int64
		)
		if err := rows.Scan(&r.RunID, &r.Input, &r.Column, &r.Mode, &r.BundleID, &r.BundleVersion,
			&r.Total, &r.Matched, &r.Unknown, &counts, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(counts), &r.MethodCounts); err != nil {
			return nil, fmt.Errorf("decode method counts of %s: %w", r.RunID, err)
		}
		r.CreatedAt = time.Unix(created, 0)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Unmatched returns the Unknown rows of a run in output order.
func (s *Store) Unmatched(ctx context.Context, runID string) ([]UnmatchedValue, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT raw_value, method FROM unmatched WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("list unmatched for %s: %w", runID, err)
	}
	defer rows.Close()

	var out []UnmatchedValue
	for rows.Next() {
		var u UnmatchedValue
		if err := rows.Scan(&u.RawValue, &u.Method); err != nil {
			return nil, fmt.Errorf("scan unmatched: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
