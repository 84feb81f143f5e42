package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/interview-coach/internal/apperror"
	"github.com/sakif/interview-coach/internal/model"
	"github.com/sakif/interview-coach/internal/service"
)

// FeedbackService is the part of service.FeedbackService the handlers use.
type FeedbackService interface {
	CreateFeedback(ctx context.Context, p service.CreateFeedbackParams) service.CreateFeedbackResult
	GetFeedbackByInterviewID(ctx context.Context, interviewID, userID string) *model.Feedback
	DeleteFeedback(ctx context.Context, feedbackID, userID string) service.Result
}

// FeedbackHandler serves feedback generation, lookup and deletion.
//
// The owner is always the signed-in user. A userId in a request body is
// never trusted.
type FeedbackHandler struct {
	feedback   FeedbackService
	interviews InterviewService
	logger     *slog.Logger
}

func NewFeedbackHandler(feedback FeedbackService, interviews InterviewService, logger *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback, interviews: interviews, logger: logger}
}

type createFeedbackRequest struct {
	Transcript []model.TranscriptTurn `json:"transcript"`
}

// HandleCreate generates and stores feedback for a finished interview.
//
// HTTP: POST /api/interviews/{id}/feedback  {"transcript": [{"role", "content"}]}
//
// Responds 201 with {"success": true, "feedbackId": "..."}, or 500 with
// {"success": false, "feedbackId": null} when generation or storage fails.
func (h *FeedbackHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, apperror.Unauthorized("valid session required"))
		return
	}
	interviewID := chi.URLParam(r, "id")

	var req createFeedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.Transcript) == 0 {
		writeError(w, apperror.ValidationFailed("transcript", "transcript is required"))
		return
	}

	// Checked before generating so a typo'd ID does not cost a model call.
	if h.interviews.GetInterviewByID(r.Context(), interviewID) == nil {
		writeError(w, apperror.NotFound("interview", interviewID))
		return
	}

	res := h.feedback.CreateFeedback(r.Context(), service.CreateFeedbackParams{
		InterviewID: interviewID,
		UserID:      user.ID,
		Transcript:  req.Transcript,
	})
	if !res.Success {
		writeJSON(w, http.StatusInternalServerError, res)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// HandleGet returns the signed-in user's feedback for an interview.
//
// HTTP: GET /api/interviews/{id}/feedback
func (h *FeedbackHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, apperror.Unauthorized("valid session required"))
		return
	}
	interviewID := chi.URLParam(r, "id")

	fb := h.feedback.GetFeedbackByInterviewID(r.Context(), interviewID, user.ID)
	if fb == nil {
		writeError(w, apperror.NotFound("feedback for interview", interviewID))
		return
	}
	writeJSON(w, http.StatusOK, fb)
}

// HandleDelete deletes feedback owned by the signed-in user.
//
// HTTP: DELETE /api/feedback/{id}
func (h *FeedbackHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, apperror.Unauthorized("valid session required"))
		return
	}

	res := h.feedback.DeleteFeedback(r.Context(), chi.URLParam(r, "id"), user.ID)
	status := http.StatusOK
	switch {
	case res.Success:
	case res.Message == service.MsgFeedbackMissing:
		status = http.StatusNotFound
	case res.Message == service.MsgNotOwner:
		status = http.StatusForbidden
	default:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, res)
}
