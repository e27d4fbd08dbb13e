// Package store persists lightweight session state: which entities the
// user focus-pinned and when. The history feeds the "recently visited"
// view and survives restarts via a small SQLite database in the XDG state
// directory.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Visit is one recorded focus event.
type Visit struct {
	EntityID string
	Count    int
	LastSeen time.Time
}

// Store wraps the state database. Safe for use from a single goroutine;
// the UI calls it only from the event loop.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS visits (
	entity_id TEXT PRIMARY KEY,
	count     INTEGER NOT NULL DEFAULT 0,
	last_seen TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Open creates or opens the state database at path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open state database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing state schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordVisit increments the visit count for an entity and stamps it.
func (s *Store) RecordVisit(entityID string) error {
	_, err := s.db.Exec(`
		INSERT INTO visits (entity_id, count, last_seen) VALUES (?, 1, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			count = count + 1,
			last_seen = excluded.last_seen`,
		entityID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recording visit for %s: %w", entityID, err)
	}
	return nil
}

// Recent returns the most recently visited entities, newest first.
func (s *Store) Recent(limit int) ([]Visit, error) {
	rows, err := s.db.Query(`
		SELECT entity_id, count, last_seen FROM visits
		ORDER BY last_seen DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying visits: %w", err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var v Visit
		if err := rows.Scan(&v.EntityID, &v.Count, &v.LastSeen); err != nil {
			return nil, fmt.Errorf("scanning visit row: %w", err)
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating visits: %w", err)
	}
	return visits, nil
}

// Set stores an arbitrary string value under key, replacing any previous
// value. Used for small session leftovers like the last pinned entity.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("storing %s: %w", key, err)
	}
	return nil
}

// Get returns the value stored under key, or "" when the key is absent.
func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// VisitCount returns how many times an entity was focus-pinned.
func (s *Store) VisitCount(entityID string) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT count FROM visits WHERE entity_id = ?`, entityID).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}
