// Package store keeps the upload cache and publish history in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/gubarz/postmd/internal/publish"
)

// timeLayout is fixed width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store wraps the SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and runs migrations.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS uploads (
    hash TEXT NOT NULL,
    uploader TEXT NOT NULL,
    path TEXT NOT NULL,
    url TEXT NOT NULL,
    uploaded_at TEXT NOT NULL,
    PRIMARY KEY (hash, uploader)
);
CREATE TABLE IF NOT EXISTS publishes (
    id TEXT PRIMARY KEY,
    run_id TEXT NOT NULL,
    file TEXT NOT NULL,
    slug TEXT NOT NULL,
    content_type TEXT NOT NULL,
    action TEXT NOT NULL,
    remote_id TEXT NOT NULL DEFAULT '',
    url TEXT NOT NULL DEFAULT '',
    message TEXT NOT NULL DEFAULT '',
    at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS publishes_at ON publishes(at);
`)
	return err
}

// ============================================================================
// Upload cache
// ============================================================================

// LookupUpload returns the URL previously recorded for a content hash.
func (s *Store) LookupUpload(ctx context.Context, hash, uploader string) (string, bool, error) {
	var url string
	err := s.db.QueryRowContext(ctx,
		`SELECT url FROM uploads WHERE hash = ? AND uploader = ?`, hash, uploader).Scan(&url)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup upload: %w", err)
	}
	return url, true, nil
}

// SaveUpload records the URL an image was uploaded to.
func (s *Store) SaveUpload(ctx context.Context, hash, uploader, path, url string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO uploads (hash, uploader, path, url, uploaded_at) VALUES (?, ?, ?, ?, ?)`,
		hash, uploader, path, url, s.now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("save upload: %w", err)
	}
	return nil
}

// ============================================================================
// Publish history
// ============================================================================

// HistoryEntry is one recorded publish outcome.
type HistoryEntry struct {
	RunID   string    `json:"run_id" yaml:"run_id"`
	File    string    `json:"file" yaml:"file"`
	Slug    string    `json:"slug" yaml:"slug"`
	Type    string    `json:"type" yaml:"type"`
	Action  string    `json:"action" yaml:"action"`
	URL     string    `json:"url,omitempty" yaml:"url,omitempty"`
	Message string    `json:"message,omitempty" yaml:"message,omitempty"`
	At      time.Time `json:"at" yaml:"at"`
}

// RecordPublish implements publish.Recorder.
func (s *Store) RecordPublish(ctx context.Context, runID string, o publish.Outcome) error {
	var remoteID, url string
	if o.Remote != nil {
		remoteID, url = o.Remote.ID, o.Remote.URL
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO publishes (id, run_id, file, slug, content_type, action, remote_id, url, message, at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), runID, o.File, o.Slug, o.Type, string(o.Action), remoteID, url, o.Message,
		s.now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("record publish: %w", err)
	}
	return nil
}

// History returns the most recent outcomes, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, file, slug, content_type, action, url, message, at
		 FROM publishes ORDER BY at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var at string
		if err := rows.Scan(&e.RunID, &e.File, &e.Slug, &e.Type, &e.Action, &e.URL, &e.Message, &at); err != nil {
			return nil, err
		}
		e.At, _ = time.Parse(timeLayout, at)
		out = append(out, e)
	}
	return out, rows.Err()
}

var _ publish.Recorder = (*Store)(nil)
