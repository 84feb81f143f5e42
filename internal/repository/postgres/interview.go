package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/xid"
	"github.com/sakif/interview-coach/internal/apperror"
	"github.com/sakif/interview-coach/internal/model"
	"github.com/sakif/interview-coach/internal/repository"
)

var _ repository.InterviewRepository = (*InterviewDB)(nil)

// InterviewDB stores interviews.
type InterviewDB struct {
	pool *pgxpool.Pool
}

const interviewColumns = `id, user_id, role, type, level, techstack, questions, cover_image, finalized, created_at`

func (i *InterviewDB) Create(ctx context.Context, interview *model.Interview) error {
	if interview.ID == "" {
		interview.ID = xid.New().String()
	}
	if interview.CreatedAt.IsZero() {
		interview.CreatedAt = time.Now().UTC()
	}
	interview.TechStack = nonNil(interview.TechStack)
	interview.Questions = nonNil(interview.Questions)

	_, err := i.pool.Exec(ctx,
		`INSERT INTO interviews (`+interviewColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		interview.ID,
		interview.UserID,
		interview.Role,
		interview.Type,
		interview.Level,
		interview.TechStack,
		interview.Questions,
		interview.CoverImage,
		interview.Finalized,
		interview.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "interviews_pkey") {
			return apperror.Conflict("interview", "id", interview.ID)
		}
		return fmt.Errorf("postgres: inserting interview: %w", err)
	}
	return nil
}

func (i *InterviewDB) GetByID(ctx context.Context, id string) (*model.Interview, error) {
	rows, err := i.pool.Query(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("postgres: getting interview %s: %w", id, err)
	}
	interview, err := pgx.CollectExactlyOneRow(rows, scanInterview)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("interview", id)
		}
		return nil, fmt.Errorf("postgres: getting interview %s: %w", id, err)
	}
	return &interview, nil
}

func (i *InterviewDB) ListByUser(ctx context.Context, userID string) ([]model.Interview, error) {
	rows, err := i.pool.Query(ctx,
		`SELECT `+interviewColumns+` FROM interviews
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing interviews of user %s: %w", userID, err)
	}
	return collectInterviews(rows)
}

func (i *InterviewDB) ListLatest(ctx context.Context, excludeUserID string, limit int) ([]model.Interview, error) {
	rows, err := i.pool.Query(ctx,
		`SELECT `+interviewColumns+` FROM interviews
		 WHERE finalized AND user_id <> $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		excludeUserID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing latest interviews: %w", err)
	}
	return collectInterviews(rows)
}

func scanInterview(row pgx.CollectableRow) (model.Interview, error) {
	var iv model.Interview
	err := row.Scan(
		&iv.ID,
		&iv.UserID,
		&iv.Role,
		&iv.Type,
		&iv.Level,
		&iv.TechStack,
		&iv.Questions,
		&iv.CoverImage,
		&iv.Finalized,
		&iv.CreatedAt,
	)
	return iv, err
}

func collectInterviews(rows pgx.Rows) ([]model.Interview, error) {
	interviews, err := pgx.CollectRows(rows, scanInterview)
	if err != nil {
		return nil, fmt.Errorf("postgres: scanning interviews: %w", err)
	}
	if interviews == nil {
		interviews = []model.Interview{}
	}
	return interviews, nil
}
