package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/interview-coach/internal/apperror"
	"github.com/sakif/interview-coach/internal/model"
	"github.com/sakif/interview-coach/internal/repository"
)

var _ repository.InterviewRepository = (*InterviewDB)(nil)

// InterviewDB stores interviews.
type InterviewDB struct {
	conn *sql.DB
}

const interviewColumns = `id, user_id, role, type, level, techstack, questions, cover_image, finalized, created_at`

// Create inserts an interview, generating the ID and timestamp when unset.
func (i *InterviewDB) Create(ctx context.Context, interview *model.Interview) error {
	if interview.ID == "" {
		interview.ID = xid.New().String()
	}
	if interview.CreatedAt.IsZero() {
		interview.CreatedAt = time.Now()
	}
	interview.CreatedAt = interview.CreatedAt.UTC()

	techstack, err := encodeJSON(interview.TechStack)
	if err != nil {
		return fmt.Errorf("sqlite: encoding techstack: %w", err)
	}
	questions, err := encodeJSON(interview.Questions)
	if err != nil {
		return fmt.Errorf("sqlite: encoding questions: %w", err)
	}

	_, err = i.conn.ExecContext(ctx,
		`INSERT INTO interviews (`+interviewColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		interview.ID,
		interview.UserID,
		interview.Role,
		interview.Type,
		interview.Level,
		techstack,
		questions,
		interview.CoverImage,
		interview.Finalized,
		interview.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "interviews.id") {
			return apperror.Conflict("interview", "id", interview.ID)
		}
		return fmt.Errorf("sqlite: inserting interview: %w", err)
	}
	return nil
}

// GetByID returns apperror.ErrNotFound if no interview has that ID.
func (i *InterviewDB) GetByID(ctx context.Context, id string) (*model.Interview, error) {
	row := i.conn.QueryRowContext(ctx,
		`SELECT `+interviewColumns+` FROM interviews WHERE id = ?`, id)
	interview, err := scanInterview(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("interview", id)
		}
		return nil, fmt.Errorf("sqlite: getting interview %s: %w", id, err)
	}
	return interview, nil
}

// ListByUser returns the user's interviews, newest first.
func (i *InterviewDB) ListByUser(ctx context.Context, userID string) ([]model.Interview, error) {
	rows, err := i.conn.QueryContext(ctx,
		`SELECT `+interviewColumns+` FROM interviews
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing interviews of user %s: %w", userID, err)
	}
	return collectInterviews(rows)
}

// ListLatest returns finalized interviews of other users, newest first.
func (i *InterviewDB) ListLatest(ctx context.Context, excludeUserID string, limit int) ([]model.Interview, error) {
	rows, err := i.conn.QueryContext(ctx,
		`SELECT `+interviewColumns+` FROM interviews
		 WHERE finalized = 1 AND user_id != ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		excludeUserID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing latest interviews: %w", err)
	}
	return collectInterviews(rows)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanInterview(row rowScanner) (*model.Interview, error) {
	var (
		interview model.Interview
		techstack string
		questions string
	)
	if err := row.Scan(
		&interview.ID,
		&interview.UserID,
		&interview.Role,
		&interview.Type,
		&interview.Level,
		&techstack,
		&questions,
		&interview.CoverImage,
		&interview.Finalized,
		&interview.CreatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if interview.TechStack, err = decodeJSON[string](techstack); err != nil {
		return nil, fmt.Errorf("decoding techstack: %w", err)
	}
	if interview.Questions, err = decodeJSON[string](questions); err != nil {
		return nil, fmt.Errorf("decoding questions: %w", err)
	}
	return &interview, nil
}

// collectInterviews drains and closes rows.
func collectInterviews(rows *sql.Rows) ([]model.Interview, error) {
	defer rows.Close()

	// Start with an empty slice, not nil, so JSON encodes [] instead of null.
	interviews := []model.Interview{}
	for rows.Next() {
		interview, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning interview row: %w", err)
		}
		interviews = append(interviews, *interview)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating interview rows: %w", err)
	}
	return interviews, nil
}
