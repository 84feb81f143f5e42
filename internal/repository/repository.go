// Package repository defines the storage interfaces the services depend on.
//
// Two implementations live in subpackages: sqlite (embedded, the default) and
// postgres. Both translate driver errors into internal/apperror values, so a
// service can check errors.Is(err, apperror.ErrNotFound) without knowing
// which database is underneath.
package repository

import (
	"context"
	"time"

	"github.com/sakif/interview-coach/internal/model"
)

// UserRepository stores user documents.
//
// Create fails with an apperror.Conflict on field "id" when the ID is taken
// and on field "email" when the email is taken.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// SessionRepository stores issued sessions so they can be revoked.
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)
	Revoke(ctx context.Context, id string, at time.Time) error
	RevokeAllForUser(ctx context.Context, userID string, at time.Time) error
}

// InterviewRepository stores interviews.
type InterviewRepository interface {
	Create(ctx context.Context, interview *model.Interview) error
	GetByID(ctx context.Context, id string) (*model.Interview, error)
	// ListByUser returns the user's interviews, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Interview, error)
	// ListLatest returns finalized interviews not owned by excludeUserID,
	// newest first, at most limit of them.
	ListLatest(ctx context.Context, excludeUserID string, limit int) ([]model.Interview, error)
}

// FeedbackRepository stores generated feedback.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *model.Feedback) error
	GetByID(ctx context.Context, id string) (*model.Feedback, error)
	// GetByInterviewAndUser returns the newest feedback for the pair.
	GetByInterviewAndUser(ctx context.Context, interviewID, userID string) (*model.Feedback, error)
	Delete(ctx context.Context, id string) error
}
