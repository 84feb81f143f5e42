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

var _ repository.FeedbackRepository = (*FeedbackDB)(nil)

// FeedbackDB stores feedback documents.
type FeedbackDB struct {
	conn *sql.DB
}

const feedbackColumns = `id, interview_id, user_id, total_score, category_scores, strengths, areas_for_improvement, final_assessment, created_at`

// Create inserts a feedback document, generating the ID and timestamp when unset.
func (f *FeedbackDB) Create(ctx context.Context, feedback *model.Feedback) error {
	if feedback.ID == "" {
		feedback.ID = xid.New().String()
	}
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now()
	}
	feedback.CreatedAt = feedback.CreatedAt.UTC()

	categories, err := encodeJSON(feedback.CategoryScores)
	if err != nil {
		return fmt.Errorf("sqlite: encoding category scores: %w", err)
	}
	strengths, err := encodeJSON(feedback.Strengths)
	if err != nil {
		return fmt.Errorf("sqlite: encoding strengths: %w", err)
	}
	areas, err := encodeJSON(feedback.AreasForImprovement)
	if err != nil {
		return fmt.Errorf("sqlite: encoding areas for improvement: %w", err)
	}

	_, err = f.conn.ExecContext(ctx,
		`INSERT INTO feedback (`+feedbackColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		feedback.ID,
		feedback.InterviewID,
		feedback.UserID,
		feedback.TotalScore,
		categories,
		strengths,
		areas,
		feedback.FinalAssessment,
		feedback.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "feedback.id") {
			return apperror.Conflict("feedback", "id", feedback.ID)
		}
		return fmt.Errorf("sqlite: inserting feedback for interview %s: %w", feedback.InterviewID, err)
	}
	return nil
}

// GetByID returns apperror.ErrNotFound if no feedback has that ID.
func (f *FeedbackDB) GetByID(ctx context.Context, id string) (*model.Feedback, error) {
	row := f.conn.QueryRowContext(ctx,
		`SELECT `+feedbackColumns+` FROM feedback WHERE id = ?`, id)
	feedback, err := scanFeedback(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("feedback", id)
		}
		return nil, fmt.Errorf("sqlite: getting feedback %s: %w", id, err)
	}
	return feedback, nil
}

// GetByInterviewAndUser returns the newest feedback for the pair, or
// apperror.ErrNotFound.
func (f *FeedbackDB) GetByInterviewAndUser(ctx context.Context, interviewID, userID string) (*model.Feedback, error) {
	row := f.conn.QueryRowContext(ctx,
		`SELECT `+feedbackColumns+` FROM feedback
		 WHERE interview_id = ? AND user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`,
		interviewID, userID,
	)
	feedback, err := scanFeedback(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("feedback", interviewID)
		}
		return nil, fmt.Errorf("sqlite: getting feedback for interview %s: %w", interviewID, err)
	}
	return feedback, nil
}

// Delete removes a feedback document. Ownership is checked by the caller.
func (f *FeedbackDB) Delete(ctx context.Context, id string) error {
	result, err := f.conn.ExecContext(ctx, `DELETE FROM feedback WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting feedback %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("feedback", id)
	}
	return nil
}

func scanFeedback(row rowScanner) (*model.Feedback, error) {
	var (
		feedback   model.Feedback
		categories string
		strengths  string
		areas      string
	)
	if err := row.Scan(
		&feedback.ID,
		&feedback.InterviewID,
		&feedback.UserID,
		&feedback.TotalScore,
		&categories,
		&strengths,
		&areas,
		&feedback.FinalAssessment,
		&feedback.CreatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if feedback.CategoryScores, err = decodeJSON[model.CategoryScore](categories); err != nil {
		return nil, fmt.Errorf("decoding category scores: %w", err)
	}
	if feedback.Strengths, err = decodeJSON[string](strengths); err != nil {
		return nil, fmt.Errorf("decoding strengths: %w", err)
	}
	if feedback.AreasForImprovement, err = decodeJSON[string](areas); err != nil {
		return nil, fmt.Errorf("decoding areas for improvement: %w", err)
	}
	return &feedback, nil
}
