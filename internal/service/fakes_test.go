package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sakif/interview-coach/internal/apperror"
	"github.com/sakif/interview-coach/internal/generator"
	"github.com/sakif/interview-coach/internal/model"
)

// In-memory fakes of the repository interfaces. Using fakes (not a mock
// framework) keeps each test's behaviour visible in one place. Set the *Err
// fields to simulate a database failure.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUserRepo struct {
	mu        sync.Mutex
	byID      map[string]*model.User
	getErr    error
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byID[user.ID]; ok {
		return apperror.Conflict("user", "id", user.ID)
	}
	for _, u := range f.byID {
		if u.Email == user.Email {
			return apperror.Conflict("user", "email", user.Email)
		}
	}
	copied := *user
	f.byID[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

type fakeSessionRepo struct {
	mu           sync.Mutex
	byID         map[string]*model.Session
	createErr    error
	revokeAllErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{byID: make(map[string]*model.Session)}
}

func (f *fakeSessionRepo) Create(_ context.Context, s *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	copied := *s
	f.byID[s.ID] = &copied
	return nil
}

func (f *fakeSessionRepo) Get(_ context.Context, id string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("session", id)
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessionRepo) Revoke(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[id]
	if !ok {
		return apperror.NotFound("session", id)
	}
	if s.RevokedAt == nil {
		s.RevokedAt = &at
	}
	return nil
}

func (f *fakeSessionRepo) RevokeAllForUser(_ context.Context, userID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revokeAllErr != nil {
		return f.revokeAllErr
	}
	for _, s := range f.byID {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &at
		}
	}
	return nil
}

type fakeInterviewRepo struct {
	interviews []model.Interview
	err        error
	lastLimit  int
}

func (f *fakeInterviewRepo) Create(_ context.Context, iv *model.Interview) error {
	f.interviews = append(f.interviews, *iv)
	return nil
}

func (f *fakeInterviewRepo) GetByID(_ context.Context, id string) (*model.Interview, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, iv := range f.interviews {
		if iv.ID == id {
			copied := iv
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("interview", id)
}

func (f *fakeInterviewRepo) ListByUser(_ context.Context, userID string) ([]model.Interview, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []model.Interview{}
	for _, iv := range f.sorted() {
		if iv.UserID == userID {
			out = append(out, iv)
		}
	}
	return out, nil
}

func (f *fakeInterviewRepo) ListLatest(_ context.Context, excludeUserID string, limit int) ([]model.Interview, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	out := []model.Interview{}
	for _, iv := range f.sorted() {
		if iv.Finalized && iv.UserID != excludeUserID && len(out) < limit {
			out = append(out, iv)
		}
	}
	return out, nil
}

func (f *fakeInterviewRepo) sorted() []model.Interview {
	out := append([]model.Interview(nil), f.interviews...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

type fakeFeedbackRepo struct {
	byID      map[string]*model.Feedback
	createErr error
	getErr    error
	deleteErr error
	deletes   int
}

func newFakeFeedbackRepo() *fakeFeedbackRepo {
	return &fakeFeedbackRepo{byID: make(map[string]*model.Feedback)}
}

func (f *fakeFeedbackRepo) Create(_ context.Context, fb *model.Feedback) error {
	if f.createErr != nil {
		return f.createErr
	}
	copied := *fb
	f.byID[fb.ID] = &copied
	return nil
}

func (f *fakeFeedbackRepo) GetByID(_ context.Context, id string) (*model.Feedback, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	fb, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("feedback", id)
	}
	copied := *fb
	return &copied, nil
}

func (f *fakeFeedbackRepo) GetByInterviewAndUser(_ context.Context, interviewID, userID string) (*model.Feedback, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	var newest *model.Feedback
	for _, fb := range f.byID {
		if fb.InterviewID == interviewID && fb.UserID == userID {
			if newest == nil || fb.CreatedAt.After(newest.CreatedAt) {
				newest = fb
			}
		}
	}
	if newest == nil {
		return nil, apperror.NotFound("feedback", interviewID)
	}
	copied := *newest
	return &copied, nil
}

func (f *fakeFeedbackRepo) Delete(_ context.Context, id string) error {
	f.deletes++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return apperror.NotFound("feedback", id)
	}
	delete(f.byID, id)
	return nil
}

// fakeGenerator returns a fixed assessment or error.
type fakeGenerator struct {
	assessment *generator.Assessment
	err        error
	calls      int
}

func (f *fakeGenerator) Generate(_ context.Context, transcript []model.TranscriptTurn) (*generator.Assessment, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(transcript) == 0 {
		return nil, generator.ErrEmptyTranscript
	}
	return f.assessment, nil
}
