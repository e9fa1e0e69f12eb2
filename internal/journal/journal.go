// Package journal provides SQLite-backed storage for submission runs, so a
// release can find the accession a run was assigned without re-reading the
// archived response text.
package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/seqops/virsam/internal/errors"
)

// timeLayout is fixed-width, unlike RFC3339Nano, so the TEXT timestamp
// columns sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DB wraps the SQL database connection
type DB struct {
	*sql.DB
	path string
}

// Initialize creates and configures the database connection
func Initialize(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_timeout=5000&_sync=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The journal is a small single-writer ledger; WAL keeps readers
	// (the review API) from blocking a submission in progress.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &DB{
		DB:   db,
		path: path,
	}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		alias TEXT NOT NULL,
		accession TEXT NOT NULL DEFAULT '',
		phase TEXT NOT NULL,
		target TEXT NOT NULL,
		checklist TEXT NOT NULL DEFAULT '',
		sources JSON,
		run_dir TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_submissions_run_dir ON submissions(run_dir);
	CREATE INDEX IF NOT EXISTS idx_submissions_accession ON submissions(accession);
	CREATE INDEX IF NOT EXISTS idx_submissions_kind ON submissions(kind);
	CREATE INDEX IF NOT EXISTS idx_submissions_created ON submissions(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// Record inserts a submission run. A missing ID is assigned and zero
// timestamps are filled in; the entry is updated in place so the caller
// sees what was stored.
func (db *DB) Record(entry *Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = entry.CreatedAt
	}

	sources, err := json.Marshal(entry.Sources)
	if err != nil {
		return fmt.Errorf("failed to encode sources: %w", err)
	}

	query := `
		INSERT INTO submissions (
			id, kind, alias, accession, phase, target,
			checklist, sources, run_dir, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = db.Exec(query,
		entry.ID, entry.Kind, entry.Alias, entry.Accession, entry.Phase,
		entry.Target, entry.Checklist, string(sources), entry.RunDir,
		entry.CreatedAt.UTC().Format(timeLayout),
		entry.UpdatedAt.UTC().Format(timeLayout))
	return err
}

// Get retrieves a submission run by its identifier.
// Returns an error if the submission is not found.
func (db *DB) Get(id string) (*Entry, error) {
	row := db.QueryRow(selectColumns+` FROM submissions WHERE id = ?`, id)

	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("submission not found: %s", id)
	}
	return entry, err
}

// FindByRunDir retrieves the most recent submission recorded for a run
// directory. Returns an error if nothing was recorded for it.
func (db *DB) FindByRunDir(runDir string) (*Entry, error) {
	row := db.QueryRow(selectColumns+`
		FROM submissions
		WHERE run_dir = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, runDir)

	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no submission recorded for run directory: %s", runDir)
	}
	return entry, err
}

// Advance moves a submission to a new phase. A non-empty accession replaces
// the stored one; an empty accession keeps it.
func (db *DB) Advance(id, phase, accession string) error {
	now := time.Now().UTC().Format(timeLayout)
	res, err := db.Exec(`
		UPDATE submissions
		SET phase = ?,
			accession = CASE WHEN ? != '' THEN ? ELSE accession END,
			updated_at = ?
		WHERE id = ?
	`, phase, accession, accession, now, id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("submission not found: %s", id)
	}
	return nil
}

// History returns the most recent submission runs, newest first.
func (db *DB) History(limit int) ([]Entry, error) {
	rows, err := db.Query(selectColumns+`
		FROM submissions
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

// ListByKind returns the most recent runs of one kind, newest first.
func (db *DB) ListByKind(kind string, limit int) ([]Entry, error) {
	rows, err := db.Query(selectColumns+`
		FROM submissions
		WHERE kind = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

// Search returns runs whose alias, accession, or checklist matches the term.
func (db *DB) Search(term string, limit int) ([]Entry, error) {
	pattern := "%" + term + "%"
	rows, err := db.Query(selectColumns+`
		FROM submissions
		WHERE alias LIKE ? OR accession LIKE ? OR checklist LIKE ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

// GetStats returns live counts over the journal.
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{}

	if err := db.QueryRow("SELECT COUNT(*) FROM submissions").Scan(&stats.TotalRuns); err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}
	counts := []struct {
		kind string
		dst  *int
	}{
		{KindSample, &stats.Samples},
		{KindStudy, &stats.Studies},
		{KindUmbrella, &stats.Umbrellas},
	}
	for _, c := range counts {
		if err := db.QueryRow("SELECT COUNT(*) FROM submissions WHERE kind = ?", c.kind).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("failed to count %s submissions: %w", c.kind, err)
		}
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM submissions WHERE phase = ?", PhaseReleased).Scan(&stats.Released); err != nil {
		return nil, fmt.Errorf("failed to count released submissions: %w", err)
	}

	stats.LastUpdate = time.Now()

	return stats, nil
}

// Ping verifies database connection
func (db *DB) Ping() error {
	return db.DB.Ping()
}

const selectColumns = `
	SELECT id, kind, alias, accession, phase, target,
		   checklist, COALESCE(sources, '[]'), run_dir, created_at, updated_at`

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(s scanner) (*Entry, error) {
	entry := &Entry{}
	var sources, createdAt, updatedAt string

	err := s.Scan(
		&entry.ID, &entry.Kind, &entry.Alias, &entry.Accession, &entry.Phase,
		&entry.Target, &entry.Checklist, &sources, &entry.RunDir,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if sources != "" && sources != "null" {
		if err := json.Unmarshal([]byte(sources), &entry.Sources); err != nil {
			return nil, fmt.Errorf("failed to decode sources for %s: %w", entry.ID, err)
		}
	}
	if entry.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at for %s: %w", entry.ID, err)
	}
	if entry.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at for %s: %w", entry.ID, err)
	}

	return entry, nil
}

// collectEntries drains a listing query. A row that no longer decodes is
// skipped with a warning rather than hiding the rest of the history;
// single-row lookups still fail hard.
func collectEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			errors.LogAndContinue("scanning submission row", err)
			continue
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}
