package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sakif/interview-coach/internal/auth"
	"github.com/sakif/interview-coach/internal/generator"
	"github.com/sakif/interview-coach/internal/handler"
	"github.com/sakif/interview-coach/internal/model"
	"github.com/sakif/interview-coach/internal/repository/sqlite"
	"github.com/sakif/interview-coach/internal/service"
)

const testPassword = "correct horse"

// MockGenerator returns a fixed assessment and records the transcript.
type MockGenerator struct {
	CapturedTranscript []model.TranscriptTurn
	ReturnAssessment   *generator.Assessment
	ReturnErr          error
	Calls              int
}

func (m *MockGenerator) Generate(_ context.Context, transcript []model.TranscriptTurn) (*generator.Assessment, error) {
	m.Calls++
	m.CapturedTranscript = transcript
	if m.ReturnErr != nil {
		return nil, m.ReturnErr
	}
	return m.ReturnAssessment, nil
}

// MockGitHub stands in for the GitHub OAuth provider.
type MockGitHub struct {
	CapturedCode string
	ReturnUser   *auth.GitHubUser
	ReturnErr    error
}

func (m *MockGitHub) AuthURL(state string) string {
	return "https://github.example/login/oauth/authorize?state=" + state
}

func (m *MockGitHub) Exchange(_ context.Context, code string) (*auth.GitHubUser, error) {
	m.CapturedCode = code
	if m.ReturnErr != nil {
		return nil, m.ReturnErr
	}
	return m.ReturnUser, nil
}

// testEnv holds real services over an in-memory SQLite database, routed the
// same way the server routes them.
type testEnv struct {
	db        *sqlite.DB
	generator *MockGenerator
	github    *MockGitHub
	router    http.Handler
}

func testAssessment() *generator.Assessment {
	scores := make([]model.CategoryScore, len(model.Categories))
	for i, name := range model.Categories {
		scores[i] = model.CategoryScore{Name: name, Score: 70 + i, Comment: "solid"}
	}
	return &generator.Assessment{
		TotalScore:          72,
		CategoryScores:      scores,
		Strengths:           []string{"clear answers"},
		AreasForImprovement: []string{"system design depth"},
		FinalAssessment:     "Ready for a real interview.",
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("handler-test-secret-0123456789", time.Hour)
	require.NoError(t, err)

	authSvc := service.NewAuthService(db.Users(), db.Sessions(), tokens, auth.NewPasswordService(4), 0, logger)
	interviewSvc := service.NewInterviewService(db.Interviews(), logger)
	gen := &MockGenerator{ReturnAssessment: testAssessment()}
	feedbackSvc := service.NewFeedbackService(db.Feedback(), gen, logger)
	gh := &MockGitHub{}

	authHandler := handler.NewAuthHandler(authSvc, gh, false, logger)
	interviewHandler := handler.NewInterviewHandler(interviewSvc, logger)
	feedbackHandler := handler.NewFeedbackHandler(feedbackSvc, interviewSvc, logger)

	r := chi.NewRouter()
	r.Get("/auth/github/login", authHandler.HandleGitHubLogin)
	r.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/sign-up", authHandler.HandleSignUp)
		r.Post("/auth/token", authHandler.HandleToken)
		r.Post("/auth/sign-in", authHandler.HandleSignIn)
		r.Post("/auth/sign-out", authHandler.HandleSignOut)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(authSvc))
			r.Get("/auth/me", authHandler.HandleMe)
			r.Post("/auth/sign-out-all", authHandler.HandleSignOutAll)
			r.Get("/interviews", interviewHandler.HandleList)
			r.Get("/interviews/latest", interviewHandler.HandleLatest)
			r.Get("/interviews/{id}", interviewHandler.HandleGetByID)
			r.Get("/interviews/{id}/feedback", feedbackHandler.HandleGet)
			r.Post("/interviews/{id}/feedback", feedbackHandler.HandleCreate)
			r.Delete("/feedback/{id}", feedbackHandler.HandleDelete)
		})
	})

	return &testEnv{db: db, generator: gen, github: gh, router: r}
}

// do sends a request through the router. body is JSON-encoded unless it is
// already a string; a non-empty session is sent as the session cookie.
func (e *testEnv) do(t *testing.T, method, path string, body any, session string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: session})
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// signUpAndIn registers a user, runs the token and sign-in exchange, and
// returns the session cookie value.
func (e *testEnv) signUpAndIn(t *testing.T, uid, email string) string {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/auth/sign-up", map[string]string{
		"uid": uid, "name": "Ada", "email": email, "password": testPassword,
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = e.do(t, http.MethodPost, "/api/auth/token", map[string]string{
		"email": email, "password": testPassword,
	}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var tok struct {
		IDToken string `json:"idToken"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&tok))

	rr = e.do(t, http.MethodPost, "/api/auth/sign-in", map[string]string{
		"email": email, "idToken": tok.IDToken,
	}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	cookie := findCookie(rr, auth.SessionCookieName)
	require.NotNil(t, cookie)
	return cookie.Value
}

func (e *testEnv) createInterview(t *testing.T, iv model.Interview) model.Interview {
	t.Helper()
	require.NoError(t, e.db.Interviews().Create(context.Background(), &iv))
	return iv
}

func findCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}
