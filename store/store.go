// Package store persists fitted spectra in SQLite.
//
// Spectra are stored under a slash separated path,
//
//	<source>/FitParticle/<centrality>/<cut>/<leaf>/<spectra name>
//
// as JSON snapshots. Every write is stamped with the run id of the Store.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/benjaminaudurier/anna/spectra"

	_ "modernc.org/sqlite" // SQLite driver.
)

var ErrNotFound = errors.New("store: no such entry")

// Path joins the components of a spectra path.
func Path(source, centrality, cut, leaf, name string) string {
	return strings.Join([]string{source, "FitParticle", centrality, cut, leaf, name}, "/")
}

// Store wraps SQLite access for fitted spectra.
type Store struct {
	db    *sql.DB
	runID string
}

// Entry is a stored spectra with its bookkeeping.
type Entry struct {
	Path      string
	RunID     string
	UpdatedAt time.Time
	Spectra   *spectra.Spectra
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, runID: uuid.NewString()}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: could not migrate %q: %w", path, err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// RunID identifies the writes of this Store.
func (s *Store) RunID() string { return s.runID }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS spectra (
			path TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			payload TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_spectra_run_id ON spectra(run_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Put stores sp under path, replacing any previous entry. It reports
// whether an entry was replaced.
func (s *Store) Put(ctx context.Context, path string, sp *spectra.Spectra) (replaced bool, err error) {
	snap, err := spectra.Encode(sp)
	if err != nil {
		return false, err
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return false, fmt.Errorf("store: could not marshal %q: %w", path, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var n int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM spectra WHERE path = ?`, path).Scan(&n)
	if err != nil {
		return false, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO spectra (path, run_id, updated_at, payload) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET run_id = excluded.run_id, updated_at = excluded.updated_at, payload = excluded.payload`,
		path, s.runID, time.Now().UTC().Format(time.RFC3339Nano), string(payload),
	)
	if err != nil {
		return false, fmt.Errorf("store: could not write %q: %w", path, err)
	}
	if err = tx.Commit(); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Get returns the entry stored under path.
func (s *Store) Get(ctx context.Context, path string) (Entry, error) {
	var (
		e         = Entry{Path: path}
		updatedAt string
		payload   string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, updated_at, payload FROM spectra WHERE path = ?`, path,
	).Scan(&e.RunID, &updatedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %q", ErrNotFound, path)
	}
	if err != nil {
		return Entry{}, err
	}

	e.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("store: invalid timestamp for %q: %w", path, err)
	}

	var snap spectra.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return Entry{}, fmt.Errorf("store: could not unmarshal %q: %w", path, err)
	}
	e.Spectra, err = spectra.Decode(snap)
	if err != nil {
		return Entry{}, fmt.Errorf("store: could not decode %q: %w", path, err)
	}
	return e, nil
}

// Keys returns the sorted paths starting with prefix.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path FROM spectra WHERE substr(path, 1, length(?)) = ? ORDER BY path`,
		prefix, prefix,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Delete removes the entry under path. It reports whether one existed.
func (s *Store) Delete(ctx context.Context, path string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM spectra WHERE path = ?`, path)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
