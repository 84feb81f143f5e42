package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sakif/interview-coach/internal/apperror"
	"github.com/sakif/interview-coach/internal/model"
	"github.com/sakif/interview-coach/internal/repository"
)

const (
	DefaultLatestLimit = 20
	MaxLatestLimit     = 100
)

// InterviewService answers interview queries. Errors are logged and turned
// into empty results.
type InterviewService struct {
	repo   repository.InterviewRepository
	logger *slog.Logger
}

func NewInterviewService(repo repository.InterviewRepository, logger *slog.Logger) *InterviewService {
	return &InterviewService{repo: repo, logger: logger}
}

// GetInterviewsByUserID returns the user's interviews, newest first.
func (s *InterviewService) GetInterviewsByUserID(ctx context.Context, userID string) []model.Interview {
	if userID == "" {
		return []model.Interview{}
	}
	interviews, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("fetching interviews", slog.String("userID", userID), slog.Any("error", err))
		return []model.Interview{}
	}
	return interviews
}

// GetLatestInterviews returns finalized interviews by other users, newest
// first. limit <= 0 means DefaultLatestLimit; it is capped at MaxLatestLimit.
func (s *InterviewService) GetLatestInterviews(ctx context.Context, userID string, limit int) []model.Interview {
	if userID == "" {
		return []model.Interview{}
	}
	limit = clampLimit(limit)

	interviews, err := s.repo.ListLatest(ctx, userID, limit)
	if err != nil {
		s.logger.Error("fetching latest interviews", slog.String("userID", userID), slog.Any("error", err))
		return []model.Interview{}
	}
	return interviews
}

// GetInterviewByID returns the interview or nil.
func (s *InterviewService) GetInterviewByID(ctx context.Context, id string) *model.Interview {
	if id == "" {
		return nil
	}
	interview, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("fetching interview", slog.String("interviewID", id), slog.Any("error", err))
		}
		return nil
	}
	return interview
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLatestLimit
	}
	if limit > MaxLatestLimit {
		return MaxLatestLimit
	}
	return limit
}
