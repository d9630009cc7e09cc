package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store owns the SQLite handle and hands out repositories.
type Store struct {
	db  *sql.DB
	seq *sequenceCounter
}

// Open connects to the SQLite database at dsn, applies pragmas and
// creates missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas below are per connection.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, seq: seq}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// JournalRepo returns the action journal.
func (s *Store) JournalRepo() JournalRepo {
	return &journalRepo{db: s.db, seq: s.seq}
}

// SnapshotRepo returns the session snapshot repository.
func (s *Store) SnapshotRepo() SnapshotRepo {
	return &snapshotRepo{db: s.db}
}

// ReportRepo returns the review report repository.
func (s *Store) ReportRepo() ReportRepo {
	return &reportRepo{db: s.db}
}

// LLMEventRepo returns the LLM request log.
func (s *Store) LLMEventRepo() LLMEventRepo {
	return &llmEventRepo{db: s.db, seq: s.seq}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS journal (
		sequence   INTEGER PRIMARY KEY,
		session_id TEXT    NOT NULL,
		kind       TEXT    NOT NULL,
		actor      TEXT    NOT NULL,
		origin     TEXT    NOT NULL,
		args       TEXT,
		at         INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS journal_session ON journal (session_id, sequence)`,
	`CREATE TABLE IF NOT EXISTS snapshots (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT    NOT NULL,
		sequence   INTEGER NOT NULL,
		taken_at   INTEGER NOT NULL,
		data       TEXT    NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS snapshots_session ON snapshots (session_id, taken_at)`,
	`CREATE TABLE IF NOT EXISTS reports (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id    TEXT    NOT NULL,
		article_title TEXT    NOT NULL,
		quiz_correct  INTEGER NOT NULL,
		quiz_total    INTEGER NOT NULL,
		created_at    INTEGER NOT NULL,
		data          TEXT    NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS llm_events (
		sequence      INTEGER PRIMARY KEY,
		provider      TEXT    NOT NULL,
		model         TEXT    NOT NULL,
		purpose       TEXT    NOT NULL,
		input_tokens  INTEGER NOT NULL,
		output_tokens INTEGER NOT NULL,
		latency_ms    INTEGER NOT NULL,
		success       BOOLEAN NOT NULL,
		error_message TEXT    NOT NULL DEFAULT '',
		request_body  TEXT    NOT NULL DEFAULT '',
		response_body TEXT    NOT NULL DEFAULT '',
		cost_usd      REAL    NOT NULL DEFAULT 0,
		created_at    INTEGER NOT NULL
	)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// applyPragmas configures SQLite for a single local writer.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. JARVIS_DB environment variable
// 2. $XDG_DATA_HOME/jarvis/jarvis.db
// 3. ~/.local/share/jarvis/jarvis.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("JARVIS_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "jarvis", "jarvis.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
