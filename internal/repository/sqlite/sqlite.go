// Package sqlite implements the repository interfaces on an embedded SQLite
// database (modernc.org/sqlite, pure Go, no CGo).
//
// SQLite has no array or document columns, so list fields (techstack,
// questions, category scores, strengths) are stored as JSON text and decoded
// on read.
//
// One *DB owns the connection pool; the per-table stores returned by Users(),
// Sessions(), Interviews() and Feedback() share it:
//
//	db, err := sqlite.New("data/interview-coach.db")
//	if err != nil { ... }
//	defer db.Close()
//	users := db.Users()
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/interview-coach.db" → file-based database (persistent)
//   - ":memory:"                → in-memory database (tests)
//
// Every new connection to ":memory:" is a separate empty database, so the
// pool is pinned to one connection in that case.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	// sql.Open does not connect. Ping surfaces a bad path or permissions now
	// instead of on the first request.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	// Foreign keys are off by default in SQLite.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}
	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable. Used by /healthz.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Users returns the user store.
func (db *DB) Users() *UserDB { return &UserDB{conn: db.conn} }

// Sessions returns the session store.
func (db *DB) Sessions() *SessionDB { return &SessionDB{conn: db.conn} }

// Interviews returns the interview store.
func (db *DB) Interviews() *InterviewDB { return &InterviewDB{conn: db.conn} }

// Feedback returns the feedback store.
func (db *DB) Feedback() *FeedbackDB { return &FeedbackDB{conn: db.conn} }

// migrate creates the schema. CREATE ... IF NOT EXISTS makes it safe to run
// on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL,
			expires_at DATETIME NOT NULL,
			revoked_at DATETIME
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating sessions table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS interviews (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL,
			role        TEXT NOT NULL,
			type        TEXT NOT NULL DEFAULT '',
			level       TEXT NOT NULL DEFAULT '',
			techstack   TEXT NOT NULL DEFAULT '[]',
			questions   TEXT NOT NULL DEFAULT '[]',
			cover_image TEXT NOT NULL DEFAULT '',
			finalized   INTEGER NOT NULL DEFAULT 0,
			created_at  DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_interviews_user_created ON interviews(user_id, created_at);
		CREATE INDEX IF NOT EXISTS idx_interviews_finalized_created ON interviews(finalized, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating interviews table: %w", err)
	}

	// No UNIQUE on (interview_id, user_id): the lookup takes the newest row.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS feedback (
			id                    TEXT PRIMARY KEY,
			interview_id          TEXT NOT NULL,
			user_id               TEXT NOT NULL,
			total_score           INTEGER NOT NULL,
			category_scores       TEXT NOT NULL DEFAULT '[]',
			strengths             TEXT NOT NULL DEFAULT '[]',
			areas_for_improvement TEXT NOT NULL DEFAULT '[]',
			final_assessment      TEXT NOT NULL DEFAULT '',
			created_at            DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_feedback_interview_user ON feedback(interview_id, user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating feedback table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY
// constraint failure on the given "table.column".
func isUniqueViolation(err error, column string) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return strings.Contains(sqliteErr.Error(), column)
	}
	return false
}

// encodeJSON marshals a list column. nil slices are stored as "[]".
func encodeJSON[T any](v []T) (string, error) {
	if v == nil {
		v = []T{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeJSON[T any](s string) ([]T, error) {
	out := []T{}
	if s == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}
