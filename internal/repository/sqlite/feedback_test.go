package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/interview-coach/internal/apperror"
	"github.com/sakif/interview-coach/internal/model"
)

func newTestFeedback(interviewID, userID string, total int, createdAt time.Time) *model.Feedback {
	scores := make([]model.CategoryScore, len(model.Categories))
	for n, name := range model.Categories {
		scores[n] = model.CategoryScore{Name: name, Score: total, Comment: "ok"}
	}
	return &model.Feedback{
		InterviewID:         interviewID,
		UserID:              userID,
		TotalScore:          total,
		CategoryScores:      scores,
		Strengths:           []string{"clear answers"},
		AreasForImprovement: []string{"system design depth", "pacing"},
		FinalAssessment:     "Solid attempt.",
		CreatedAt:           createdAt,
	}
}

func TestFeedbackCreateAndGet(t *testing.T) {
	f := newTestDB(t).Feedback()
	created := newTestFeedback("iv1", "u1", 72, base)
	if err := f.Create(context.Background(), created); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == "" {
		t.Fatal("Create() did not set ID")
	}

	got, err := f.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.TotalScore != 72 || got.FinalAssessment != "Solid attempt." {
		t.Errorf("got %+v, fields do not match", got)
	}
	if len(got.CategoryScores) != len(model.Categories) {
		t.Fatalf("len(CategoryScores) = %d, want %d", len(got.CategoryScores), len(model.Categories))
	}
	for n, cs := range got.CategoryScores {
		if cs.Name != model.Categories[n] {
			t.Errorf("CategoryScores[%d].Name = %q, want %q", n, cs.Name, model.Categories[n])
		}
	}
	if !equalStrings(got.AreasForImprovement, created.AreasForImprovement) {
		t.Errorf("AreasForImprovement = %v, want %v", got.AreasForImprovement, created.AreasForImprovement)
	}
}

func TestFeedbackGetByInterviewAndUser_NewestWins(t *testing.T) {
	f := newTestDB(t).Feedback()
	ctx := context.Background()

	older := newTestFeedback("iv1", "u1", 40, base.Add(-time.Hour))
	newer := newTestFeedback("iv1", "u1", 90, base)
	otherUser := newTestFeedback("iv1", "u2", 10, base.Add(time.Hour))
	for _, fb := range []*model.Feedback{older, newer, otherUser} {
		if err := f.Create(ctx, fb); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	got, err := f.GetByInterviewAndUser(ctx, "iv1", "u1")
	if err != nil {
		t.Fatalf("GetByInterviewAndUser() error = %v", err)
	}
	if got.ID != newer.ID {
		t.Errorf("got feedback %s (score %d), want newest %s", got.ID, got.TotalScore, newer.ID)
	}
}

func TestFeedbackGetByInterviewAndUser_NotFound(t *testing.T) {
	f := newTestDB(t).Feedback()

	_, err := f.GetByInterviewAndUser(context.Background(), "iv1", "u1")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByInterviewAndUser() error = %v, want ErrNotFound", err)
	}
}

func TestFeedbackDelete(t *testing.T) {
	f := newTestDB(t).Feedback()
	ctx := context.Background()
	fb := newTestFeedback("iv1", "u1", 50, base)
	if err := f.Create(ctx, fb); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := f.Delete(ctx, fb.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := f.GetByID(ctx, fb.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestFeedbackDelete_NotFound(t *testing.T) {
	f := newTestDB(t).Feedback()

	err := f.Delete(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}
