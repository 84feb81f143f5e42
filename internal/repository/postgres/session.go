package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sakif/interview-coach/internal/apperror"
	"github.com/sakif/interview-coach/internal/model"
	"github.com/sakif/interview-coach/internal/repository"
)

var _ repository.SessionRepository = (*SessionDB)(nil)

// SessionDB stores issued sessions.
type SessionDB struct {
	pool *pgxpool.Pool
}

func (s *SessionDB) Create(ctx context.Context, session *model.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES ($1, $2, $3, $4)`,
		session.ID, session.UserID, session.CreatedAt, session.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err, "sessions_pkey") {
			return apperror.Conflict("session", "id", session.ID)
		}
		return fmt.Errorf("postgres: inserting session for user %s: %w", session.UserID, err)
	}
	return nil
}

func (s *SessionDB) Get(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, created_at, expires_at, revoked_at FROM sessions WHERE id = $1`, id,
	).Scan(&session.ID, &session.UserID, &session.CreatedAt, &session.ExpiresAt, &session.RevokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("session", id)
		}
		return nil, fmt.Errorf("postgres: getting session %s: %w", id, err)
	}
	return &session, nil
}

// Revoke keeps the first revocation timestamp.
func (s *SessionDB) Revoke(ctx context.Context, id string, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sessions SET revoked_at = COALESCE(revoked_at, $1) WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("postgres: revoking session %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("session", id)
	}
	return nil
}

func (s *SessionDB) RevokeAllForUser(ctx context.Context, userID string, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE sessions SET revoked_at = $1 WHERE user_id = $2 AND revoked_at IS NULL`, at, userID)
	if err != nil {
		return fmt.Errorf("postgres: revoking sessions of user %s: %w", userID, err)
	}
	return nil
}
