package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/interview-coach/internal/apperror"
	"github.com/sakif/interview-coach/internal/model"
	"github.com/sakif/interview-coach/internal/repository"
)

var _ repository.SessionRepository = (*SessionDB)(nil)

// SessionDB stores issued sessions.
type SessionDB struct {
	conn *sql.DB
}

// Create inserts a session. ID, UserID and ExpiresAt must be set.
func (s *SessionDB) Create(ctx context.Context, session *model.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at)
		 VALUES (?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.CreatedAt,
		session.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err, "sessions.id") {
			return apperror.Conflict("session", "id", session.ID)
		}
		return fmt.Errorf("sqlite: inserting session for user %s: %w", session.UserID, err)
	}
	return nil
}

// Get returns the session whether or not it is still active;
// callers check model.Session.Active.
func (s *SessionDB) Get(ctx context.Context, id string) (*model.Session, error) {
	var (
		session   model.Session
		revokedAt sql.NullTime
	)
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, expires_at, revoked_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(
		&session.ID,
		&session.UserID,
		&session.CreatedAt,
		&session.ExpiresAt,
		&revokedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("session", id)
		}
		return nil, fmt.Errorf("sqlite: getting session %s: %w", id, err)
	}
	if revokedAt.Valid {
		t := revokedAt.Time
		session.RevokedAt = &t
	}
	return &session, nil
}

// Revoke marks the session revoked. Revoking an already revoked session
// keeps the first timestamp.
func (s *SessionDB) Revoke(ctx context.Context, id string, at time.Time) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = COALESCE(revoked_at, ?) WHERE id = ?`,
		at, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: revoking session %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("session", id)
	}
	return nil
}

// RevokeAllForUser revokes every live session of the user.
func (s *SessionDB) RevokeAllForUser(ctx context.Context, userID string, at time.Time) error {
	_, err := s.conn.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL`,
		at, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: revoking sessions of user %s: %w", userID, err)
	}
	return nil
}
