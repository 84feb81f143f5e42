package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/interview-coach/internal/apperror"
	"github.com/sakif/interview-coach/internal/model"
)

// InterviewService is the part of service.InterviewService the handlers use.
type InterviewService interface {
	GetInterviewsByUserID(ctx context.Context, userID string) []model.Interview
	GetLatestInterviews(ctx context.Context, userID string, limit int) []model.Interview
	GetInterviewByID(ctx context.Context, id string) *model.Interview
}

// InterviewHandler serves the interview read endpoints. All of them run
// behind auth.RequireAuth.
type InterviewHandler struct {
	interviews InterviewService
	logger     *slog.Logger
}

func NewInterviewHandler(interviews InterviewService, logger *slog.Logger) *InterviewHandler {
	return &InterviewHandler{interviews: interviews, logger: logger}
}

// HandleList returns the signed-in user's interviews, newest first.
//
// HTTP: GET /api/interviews
func (h *InterviewHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, apperror.Unauthorized("valid session required"))
		return
	}
	writeJSON(w, http.StatusOK, h.interviews.GetInterviewsByUserID(r.Context(), user.ID))
}

// HandleLatest returns finalized interviews taken by other users.
//
// HTTP: GET /api/interviews/latest?limit=20
func (h *InterviewHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, apperror.Unauthorized("valid session required"))
		return
	}

	// 0 lets the service pick its default.
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, apperror.ValidationFailed("limit", "limit must be an integer"))
			return
		}
		limit = n
	}

	writeJSON(w, http.StatusOK, h.interviews.GetLatestInterviews(r.Context(), user.ID, limit))
}

// HandleGetByID returns one interview.
//
// HTTP: GET /api/interviews/{id}
func (h *InterviewHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	interview := h.interviews.GetInterviewByID(r.Context(), id)
	if interview == nil {
		writeError(w, apperror.NotFound("interview", id))
		return
	}
	writeJSON(w, http.StatusOK, interview)
}
