package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/interview-coach/internal/apperror"
	"github.com/sakif/interview-coach/internal/auth"
	"github.com/sakif/interview-coach/internal/model"
	"github.com/sakif/interview-coach/internal/service"
)

const oauthStateCookie = "oauth_state"

// AuthService is the part of service.AuthService the handlers use.
type AuthService interface {
	SignUp(ctx context.Context, p service.SignUpParams) service.Result
	IssueIDToken(ctx context.Context, email, password string) service.TokenResult
	SignIn(ctx context.Context, email, idToken string) service.SignInResult
	SignOut(ctx context.Context, sessionToken string) service.Result
	SignOutAll(ctx context.Context, userID string) service.Result
	LoginWithGitHub(ctx context.Context, ghUser *auth.GitHubUser) service.SignInResult
	SessionDuration() time.Duration
}

// GitHubProvider performs the OAuth redirect and code exchange.
// *auth.GitHubProvider implements it.
type GitHubProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GitHubUser, error)
}

// AuthHandler serves sign-up, sign-in, sign-out and the GitHub OAuth flow.
//
// HANDLER RESPONSIBILITIES:
//   - HandleSignUp         → create the user document
//   - HandleToken          → check credentials, return a short-lived ID token
//   - HandleSignIn         → exchange the ID token for the session cookie
//   - HandleSignOut        → revoke the session and clear the cookie
//   - HandleSignOutAll     → revoke every session of the user
//   - HandleMe             → return the signed-in user
//   - HandleGitHubLogin    → redirect to GitHub's authorization page
//   - HandleGitHubCallback → finish the OAuth flow and set the session cookie
type AuthHandler struct {
	auth          AuthService
	github        GitHubProvider // nil when GitHub sign-in is not configured
	secureCookies bool
	logger        *slog.Logger
}

// NewAuthHandler creates an AuthHandler. secureCookies marks cookies Secure
// (production, HTTPS only).
func NewAuthHandler(authService AuthService, github GitHubProvider, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:          authService,
		github:        github,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// HandleSignUp creates an account.
//
// HTTP: POST /api/auth/sign-up  {"uid", "name", "email", "password"}
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req service.SignUpParams
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res := h.auth.SignUp(r.Context(), req)
	status := http.StatusCreated
	switch {
	case res.Success:
	case res.Message == service.MsgUserExists, res.Message == service.MsgEmailInUse:
		status = http.StatusConflict
	default:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, res)
}

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleToken checks email and password and returns an ID token.
//
// HTTP: POST /api/auth/token  {"email", "password"}
func (h *AuthHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res := h.auth.IssueIDToken(r.Context(), req.Email, req.Password)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnauthorized
	}
	writeJSON(w, status, res)
}

type signInRequest struct {
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
}

// HandleSignIn exchanges an ID token for the session cookie.
//
// HTTP: POST /api/auth/sign-in  {"email", "idToken"}
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res := h.auth.SignIn(r.Context(), req.Email, req.IDToken)
	if !res.Success {
		status := http.StatusUnauthorized
		if res.Message == service.MsgUserNotFound {
			status = http.StatusNotFound
		}
		writeJSON(w, status, res)
		return
	}

	http.SetCookie(w, auth.SessionCookie(res.SessionToken, h.auth.SessionDuration(), h.secureCookies))
	writeJSON(w, http.StatusOK, res)
}

// HandleSignOut revokes the session and clears the cookie.
//
// HTTP: POST /api/auth/sign-out
//
// POST, not GET: sign-out changes state, and browsers pre-fetch GET links.
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	res := h.auth.SignOut(r.Context(), auth.SessionTokenFromRequest(r))
	http.SetCookie(w, auth.ClearSessionCookie(h.secureCookies))
	writeJSON(w, http.StatusOK, res)
}

// HandleSignOutAll revokes every session of the signed-in user, including
// the current one, and clears the cookie.
//
// HTTP: POST /api/auth/sign-out-all  (behind auth.RequireAuth)
func (h *AuthHandler) HandleSignOutAll(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, apperror.Unauthorized("valid session required"))
		return
	}

	res := h.auth.SignOutAll(r.Context(), user.ID)
	if !res.Success {
		writeJSON(w, http.StatusInternalServerError, res)
		return
	}
	http.SetCookie(w, auth.ClearSessionCookie(h.secureCookies))
	writeJSON(w, http.StatusOK, res)
}

// HandleMe returns the signed-in user.
//
// HTTP: GET /api/auth/me  (behind auth.RequireAuth)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, apperror.Unauthorized("valid session required"))
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleGitHubLogin redirects the user to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// CSRF PROTECTION VIA STATE:
// A random state value goes into a short-lived cookie and the authorization
// URL; the callback rejects any request where the two differ.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		writeError(w, apperror.NotFound("route", r.URL.Path))
		return
	}

	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes to approve
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth flow.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter (CSRF check)
//  2. Exchange the code for a GitHub profile
//  3. Sign the user in (creating the user document on first login)
//  4. Set the session cookie and redirect to the app
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		writeError(w, apperror.NotFound("route", r.URL.Path))
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, "/sign-in?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusBadGateway)
		return
	}

	res := h.auth.LoginWithGitHub(r.Context(), ghUser)
	if !res.Success {
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, auth.SessionCookie(res.SessionToken, h.auth.SessionDuration(), h.secureCookies))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// currentUser returns the user auth.RequireAuth stored in the context.
func currentUser(r *http.Request) (*model.User, bool) {
	return auth.UserFromContext(r.Context())
}
