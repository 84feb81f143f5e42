package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/interview-coach/internal/apperror"
	"github.com/sakif/interview-coach/internal/generator"
	"github.com/sakif/interview-coach/internal/model"
	"github.com/sakif/interview-coach/internal/repository"
)

// FeedbackGenerator produces an assessment from a transcript.
// *generator.FeedbackGenerator implements it.
type FeedbackGenerator interface {
	Generate(ctx context.Context, transcript []model.TranscriptTurn) (*generator.Assessment, error)
}

// FeedbackService generates, reads and deletes interview feedback.
type FeedbackService struct {
	repo      repository.FeedbackRepository
	generator FeedbackGenerator
	logger    *slog.Logger
	now       func() time.Time
}

func NewFeedbackService(repo repository.FeedbackRepository, gen FeedbackGenerator, logger *slog.Logger) *FeedbackService {
	return &FeedbackService{repo: repo, generator: gen, logger: logger, now: time.Now}
}

// CreateFeedbackParams identify the attempt and carry its transcript.
type CreateFeedbackParams struct {
	InterviewID string                 `json:"interviewId"`
	UserID      string                 `json:"userId"`
	Transcript  []model.TranscriptTurn `json:"transcript"`
}

// CreateFeedbackResult reports the stored feedback's ID; FeedbackID is nil
// on failure.
type CreateFeedbackResult struct {
	Success    bool    `json:"success"`
	FeedbackID *string `json:"feedbackId"`
}

// CreateFeedback asks the generator to assess the transcript and stores the
// result. Any failure yields {Success: false, FeedbackID: nil}.
func (s *FeedbackService) CreateFeedback(ctx context.Context, p CreateFeedbackParams) CreateFeedbackResult {
	failed := CreateFeedbackResult{Success: false, FeedbackID: nil}
	if p.InterviewID == "" || p.UserID == "" {
		s.logger.Warn("create feedback: missing interview or user id")
		return failed
	}

	assessment, err := s.generator.Generate(ctx, p.Transcript)
	if err != nil {
		s.logger.Error("create feedback: generating",
			slog.String("interviewID", p.InterviewID),
			slog.String("userID", p.UserID),
			slog.Any("error", err),
		)
		return failed
	}

	feedback := &model.Feedback{
		ID:                  xid.New().String(),
		InterviewID:         p.InterviewID,
		UserID:              p.UserID,
		TotalScore:          assessment.TotalScore,
		CategoryScores:      assessment.CategoryScores,
		Strengths:           assessment.Strengths,
		AreasForImprovement: assessment.AreasForImprovement,
		FinalAssessment:     assessment.FinalAssessment,
		CreatedAt:           s.now().UTC(),
	}
	if err := s.repo.Create(ctx, feedback); err != nil {
		s.logger.Error("create feedback: storing",
			slog.String("interviewID", p.InterviewID),
			slog.Any("error", err),
		)
		return failed
	}

	s.logger.Info("feedback created",
		slog.String("feedbackID", feedback.ID),
		slog.String("interviewID", p.InterviewID),
		slog.Int("totalScore", feedback.TotalScore),
	)
	id := feedback.ID
	return CreateFeedbackResult{Success: true, FeedbackID: &id}
}

// GetFeedbackByInterviewID returns the user's newest feedback for the
// interview, or nil.
func (s *FeedbackService) GetFeedbackByInterviewID(ctx context.Context, interviewID, userID string) *model.Feedback {
	if interviewID == "" || userID == "" {
		return nil
	}
	feedback, err := s.repo.GetByInterviewAndUser(ctx, interviewID, userID)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("fetching feedback",
				slog.String("interviewID", interviewID),
				slog.String("userID", userID),
				slog.Any("error", err),
			)
		}
		return nil
	}
	return feedback
}

// DeleteFeedback deletes the feedback if userID owns it.
func (s *FeedbackService) DeleteFeedback(ctx context.Context, feedbackID, userID string) Result {
	if feedbackID == "" {
		return fail(MsgFeedbackMissing)
	}
	feedback, err := s.repo.GetByID(ctx, feedbackID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return fail(MsgFeedbackMissing)
		}
		s.logger.Error("delete feedback: fetching", slog.String("feedbackID", feedbackID), slog.Any("error", err))
		return fail(MsgDeleteFailed)
	}
	if userID == "" || feedback.UserID != userID {
		s.logger.Warn("delete feedback: not the owner",
			slog.String("feedbackID", feedbackID),
			slog.String("userID", userID),
		)
		return fail(MsgNotOwner)
	}

	if err := s.repo.Delete(ctx, feedbackID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return fail(MsgFeedbackMissing)
		}
		s.logger.Error("delete feedback: deleting", slog.String("feedbackID", feedbackID), slog.Any("error", err))
		return fail(MsgDeleteFailed)
	}

	s.logger.Info("feedback deleted", slog.String("feedbackID", feedbackID), slog.String("userID", userID))
	return ok(MsgDeleteOK)
}
