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

var _ repository.FeedbackRepository = (*FeedbackDB)(nil)

// FeedbackDB stores feedback documents.
type FeedbackDB struct {
	pool *pgxpool.Pool
}

const feedbackColumns = `id, interview_id, user_id, total_score, category_scores, strengths, areas_for_improvement, final_assessment, created_at`

func (f *FeedbackDB) Create(ctx context.Context, feedback *model.Feedback) error {
	if feedback.ID == "" {
		feedback.ID = xid.New().String()
	}
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now().UTC()
	}
	if feedback.CategoryScores == nil {
		feedback.CategoryScores = []model.CategoryScore{}
	}
	feedback.Strengths = nonNil(feedback.Strengths)
	feedback.AreasForImprovement = nonNil(feedback.AreasForImprovement)

	// pgx encodes CategoryScores with encoding/json for the JSONB column.
	_, err := f.pool.Exec(ctx,
		`INSERT INTO feedback (`+feedbackColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		feedback.ID,
		feedback.InterviewID,
		feedback.UserID,
		feedback.TotalScore,
		feedback.CategoryScores,
		feedback.Strengths,
		feedback.AreasForImprovement,
		feedback.FinalAssessment,
		feedback.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "feedback_pkey") {
			return apperror.Conflict("feedback", "id", feedback.ID)
		}
		return fmt.Errorf("postgres: inserting feedback for interview %s: %w", feedback.InterviewID, err)
	}
	return nil
}

func (f *FeedbackDB) GetByID(ctx context.Context, id string) (*model.Feedback, error) {
	rows, err := f.pool.Query(ctx, `SELECT `+feedbackColumns+` FROM feedback WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("postgres: getting feedback %s: %w", id, err)
	}
	feedback, err := pgx.CollectExactlyOneRow(rows, scanFeedback)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("feedback", id)
		}
		return nil, fmt.Errorf("postgres: getting feedback %s: %w", id, err)
	}
	return &feedback, nil
}

func (f *FeedbackDB) GetByInterviewAndUser(ctx context.Context, interviewID, userID string) (*model.Feedback, error) {
	rows, err := f.pool.Query(ctx,
		`SELECT `+feedbackColumns+` FROM feedback
		 WHERE interview_id = $1 AND user_id = $2
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`,
		interviewID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: getting feedback for interview %s: %w", interviewID, err)
	}
	feedback, err := pgx.CollectExactlyOneRow(rows, scanFeedback)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("feedback", interviewID)
		}
		return nil, fmt.Errorf("postgres: getting feedback for interview %s: %w", interviewID, err)
	}
	return &feedback, nil
}

func (f *FeedbackDB) Delete(ctx context.Context, id string) error {
	tag, err := f.pool.Exec(ctx, `DELETE FROM feedback WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: deleting feedback %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("feedback", id)
	}
	return nil
}

func scanFeedback(row pgx.CollectableRow) (model.Feedback, error) {
	var fb model.Feedback
	err := row.Scan(
		&fb.ID,
		&fb.InterviewID,
		&fb.UserID,
		&fb.TotalScore,
		&fb.CategoryScores,
		&fb.Strengths,
		&fb.AreasForImprovement,
		&fb.FinalAssessment,
		&fb.CreatedAt,
	)
	return fb, err
}
