package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sakif/interview-coach/internal/apperror"
	"github.com/sakif/interview-coach/internal/model"
	"github.com/sakif/interview-coach/internal/repository"
)

var _ repository.UserRepository = (*UserDB)(nil)

// UserDB stores users.
type UserDB struct {
	pool *pgxpool.Pool
}

// Create inserts a user. The caller supplies the ID.
func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		return apperror.ValidationFailed("id", "user id is required")
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := u.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err, "users_pkey"):
			return apperror.Conflict("user", "id", user.ID)
		case isUniqueViolation(err, "users_email_key"):
			return apperror.Conflict("user", "email", user.Email)
		}
		return fmt.Errorf("postgres: inserting user %s: %w", user.ID, err)
	}
	return nil
}

func (u *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := u.get(ctx, `WHERE id = $1`, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("user", id)
	}
	return user, err
}

func (u *UserDB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := u.get(ctx, `WHERE email = $1`, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("user", email)
	}
	return user, err
}

func (u *UserDB) get(ctx context.Context, where string, arg string) (*model.User, error) {
	var user model.User
	err := u.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users `+where, arg,
	).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("postgres: querying user: %w", err)
	}
	return &user, nil
}
