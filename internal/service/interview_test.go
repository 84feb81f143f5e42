package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/interview-coach/internal/model"
)

func seedInterviews(repo *fakeInterviewRepo) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	add := func(id, userID string, finalized bool, age time.Duration) {
		repo.interviews = append(repo.interviews, model.Interview{
			ID: id, UserID: userID, Role: "role " + id, Finalized: finalized, CreatedAt: base.Add(-age),
		})
	}
	add("mine-old", "me", true, 2*time.Hour)
	add("mine-new", "me", false, 0)
	add("theirs-draft", "them", false, 0)
	add("theirs-1", "them", true, time.Minute)
	add("theirs-2", "other", true, time.Hour)
}

func ids(interviews []model.Interview) []string {
	out := make([]string, len(interviews))
	for i, iv := range interviews {
		out[i] = iv.ID
	}
	return out
}

func TestGetInterviewsByUserID(t *testing.T) {
	repo := &fakeInterviewRepo{}
	seedInterviews(repo)
	svc := NewInterviewService(repo, discardLogger())

	got := svc.GetInterviewsByUserID(context.Background(), "me")
	assert.Equal(t, []string{"mine-new", "mine-old"}, ids(got))
}

func TestGetInterviewsByUserID_EmptyOrFailing(t *testing.T) {
	repo := &fakeInterviewRepo{}
	seedInterviews(repo)
	svc := NewInterviewService(repo, discardLogger())

	got := svc.GetInterviewsByUserID(context.Background(), "")
	assert.NotNil(t, got)
	assert.Empty(t, got)

	repo.err = errors.New("db down")
	got = svc.GetInterviewsByUserID(context.Background(), "me")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetLatestInterviews_ExcludesOwnAndDrafts(t *testing.T) {
	repo := &fakeInterviewRepo{}
	seedInterviews(repo)
	svc := NewInterviewService(repo, discardLogger())

	got := svc.GetLatestInterviews(context.Background(), "me", 0)
	assert.Equal(t, []string{"theirs-1", "theirs-2"}, ids(got))
	for _, iv := range got {
		assert.NotEqual(t, "me", iv.UserID)
		assert.True(t, iv.Finalized)
	}
}

func TestGetLatestInterviews_Limit(t *testing.T) {
	tests := []struct {
		limit, want int
	}{
		{0, DefaultLatestLimit},
		{-5, DefaultLatestLimit},
		{7, 7},
		{MaxLatestLimit, MaxLatestLimit},
		{MaxLatestLimit + 1, MaxLatestLimit},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.limit), func(t *testing.T) {
			repo := &fakeInterviewRepo{}
			svc := NewInterviewService(repo, discardLogger())
			svc.GetLatestInterviews(context.Background(), "me", tt.limit)
			assert.Equal(t, tt.want, repo.lastLimit)
		})
	}
}

func TestGetLatestInterviews_EmptyUserOrFailure(t *testing.T) {
	repo := &fakeInterviewRepo{}
	seedInterviews(repo)
	svc := NewInterviewService(repo, discardLogger())

	assert.Empty(t, svc.GetLatestInterviews(context.Background(), "", 20))
	assert.Zero(t, repo.lastLimit, "repository must not be queried without a user")

	repo.err = errors.New("db down")
	got := svc.GetLatestInterviews(context.Background(), "me", 20)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetInterviewByID(t *testing.T) {
	repo := &fakeInterviewRepo{}
	seedInterviews(repo)
	svc := NewInterviewService(repo, discardLogger())
	ctx := context.Background()

	got := svc.GetInterviewByID(ctx, "theirs-1")
	require.NotNil(t, got)
	assert.Equal(t, "role theirs-1", got.Role)

	assert.Nil(t, svc.GetInterviewByID(ctx, "missing"))
	assert.Nil(t, svc.GetInterviewByID(ctx, ""))

	repo.err = errors.New("db down")
	assert.Nil(t, svc.GetInterviewByID(ctx, "theirs-1"))
}
