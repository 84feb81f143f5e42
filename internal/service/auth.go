// Package service holds the business rules between the HTTP handlers and
// the repositories:
//
//	AuthHandler (HTTP) → AuthService (business rules) → User/SessionRepository (DB)
//	                   ↘ TokenService (JWT), PasswordService (bcrypt)
//
// Service operations that the UI calls directly report failures as data
// (Result, nil, empty slices) and log the underlying error; they never return
// an error to the caller. This keeps storage and provider details out of the
// HTTP layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/interview-coach/internal/apperror"
	"github.com/sakif/interview-coach/internal/auth"
	"github.com/sakif/interview-coach/internal/model"
	"github.com/sakif/interview-coach/internal/repository"
)

const (
	// DefaultSessionDuration is the session lifetime when none is configured.
	DefaultSessionDuration = 7 * 24 * time.Hour
	// MaxIDTokenAge is how old an ID token may be when exchanged for a session.
	MaxIDTokenAge = 5 * time.Minute
)

var (
	errStaleIDToken = errors.New("service/auth: ID token issued too long ago")
	// errIDTokenRejected wraps every reason CreateSession refuses an ID
	// token, as opposed to a failure to store the session.
	errIDTokenRejected = errors.New("service/auth: ID token rejected")
)

// AuthService handles sign-up, sign-in and session verification.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users      repository.UserRepository     → user documents
//   - sessions   repository.SessionRepository  → issued sessions (revocation)
//   - tokens     *auth.TokenService            → sign/verify ID and session tokens
//   - passwords  *auth.PasswordService         → bcrypt hashing
//   - logger     *slog.Logger                  → structured logging
type AuthService struct {
	users           repository.UserRepository
	sessions        repository.SessionRepository
	tokens          *auth.TokenService
	passwords       *auth.PasswordService
	sessionDuration time.Duration
	logger          *slog.Logger
	now             func() time.Time
}

// NewAuthService creates an AuthService. A sessionDuration <= 0 falls back
// to DefaultSessionDuration.
func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	sessionDuration time.Duration,
	logger *slog.Logger,
) *AuthService {
	if sessionDuration <= 0 {
		sessionDuration = DefaultSessionDuration
	}
	return &AuthService{
		users:           users,
		sessions:        sessions,
		tokens:          tokens,
		passwords:       passwords,
		sessionDuration: sessionDuration,
		logger:          logger,
		now:             time.Now,
	}
}

// SessionDuration is the lifetime of issued sessions; the cookie max-age
// uses the same value.
func (s *AuthService) SessionDuration() time.Duration {
	return s.sessionDuration
}

// SignUpParams are the fields of the sign-up form. UID is the identity
// provider's user id; an empty UID gets a generated one.
type SignUpParams struct {
	UID      string `json:"uid"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp creates the user document.
func (s *AuthService) SignUp(ctx context.Context, p SignUpParams) Result {
	uid := strings.TrimSpace(p.UID)
	if uid != "" {
		_, err := s.users.GetByID(ctx, uid)
		switch {
		case err == nil:
			return fail(MsgUserExists)
		case !errors.Is(err, apperror.ErrNotFound):
			s.logger.Error("sign-up: looking up user", slog.String("uid", uid), slog.Any("error", err))
			return fail(MsgSignUpFailed)
		}
	} else {
		uid = xid.New().String()
	}

	email := strings.TrimSpace(p.Email)
	name := strings.TrimSpace(p.Name)
	if email == "" || name == "" {
		s.logger.Warn("sign-up: missing name or email", slog.String("uid", uid))
		return fail(MsgSignUpFailed)
	}

	hash, err := s.passwords.Hash(p.Password)
	if err != nil {
		s.logger.Warn("sign-up: hashing password", slog.String("uid", uid), slog.Any("error", err))
		return fail(MsgSignUpFailed)
	}

	user := &model.User{ID: uid, Name: name, Email: email, PasswordHash: hash, CreatedAt: s.now().UTC()}
	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case apperror.IsConflictOn(err, "id"):
			return fail(MsgUserExists)
		case apperror.IsConflictOn(err, "email"):
			return fail(MsgEmailInUse)
		}
		s.logger.Error("sign-up: creating user", slog.String("uid", uid), slog.Any("error", err))
		return fail(MsgSignUpFailed)
	}

	s.logger.Info("user signed up", slog.String("userID", user.ID))
	return ok(MsgSignUpOK)
}

// TokenResult carries an ID token from IssueIDToken.
type TokenResult struct {
	Result
	IDToken string `json:"idToken,omitempty"`
}

// IssueIDToken checks email and password and returns a short-lived ID token
// that SignIn exchanges for a session. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) IssueIDToken(ctx context.Context, email, password string) TokenResult {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("token: looking up user", slog.Any("error", err))
			return TokenResult{Result: fail(MsgSignInFailed)}
		}
		return TokenResult{Result: fail(MsgBadCredentials)}
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.logger.Info("token: wrong password", slog.String("userID", user.ID))
		return TokenResult{Result: fail(MsgBadCredentials)}
	}

	token, err := s.tokens.IssueIDToken(user.ID)
	if err != nil {
		s.logger.Error("token: issuing ID token", slog.String("userID", user.ID), slog.Any("error", err))
		return TokenResult{Result: fail(MsgSignInFailed)}
	}
	return TokenResult{Result: ok(MsgTokenIssued), IDToken: token}
}

// SignInResult carries the session token the handler stores in the cookie.
type SignInResult struct {
	Result
	User         *model.User `json:"user,omitempty"`
	SessionToken string      `json:"-"`
}

// SignIn exchanges a recent ID token for a session. The token must belong
// to the user registered under email.
func (s *AuthService) SignIn(ctx context.Context, email, idToken string) SignInResult {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return SignInResult{Result: fail(MsgUserNotFound)}
		}
		s.logger.Error("sign-in: looking up user", slog.Any("error", err))
		return SignInResult{Result: fail(MsgSignInFailed)}
	}

	token, err := s.CreateSession(ctx, idToken, user.ID)
	if errors.Is(err, errIDTokenRejected) {
		s.logger.Info("sign-in: rejected ID token", slog.String("userID", user.ID), slog.Any("error", err))
		return SignInResult{Result: fail(MsgSignInFailed)}
	}
	if err != nil {
		s.logger.Error("sign-in: starting session", slog.String("userID", user.ID), slog.Any("error", err))
		return SignInResult{Result: fail(MsgSignInFailed)}
	}

	s.logger.Info("user signed in", slog.String("userID", user.ID))
	return SignInResult{Result: ok(MsgSignInOK), User: user, SessionToken: token}
}

// CreateSession verifies a recent ID token issued to userID and returns a
// new session token for that user. A token that is invalid, stale or issued
// to someone else is refused with an error wrapping errIDTokenRejected.
func (s *AuthService) CreateSession(ctx context.Context, idToken, userID string) (string, error) {
	claims, err := s.verifyRecentIDToken(idToken)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errIDTokenRejected, err)
	}
	if claims.UserID != userID {
		return "", fmt.Errorf("%w: issued to %q, not %q", errIDTokenRejected, claims.UserID, userID)
	}
	return s.startSession(ctx, userID)
}

func (s *AuthService) verifyRecentIDToken(idToken string) (*auth.IDClaims, error) {
	claims, err := s.tokens.VerifyIDToken(idToken)
	if err != nil {
		return nil, err
	}
	if s.now().Sub(claims.IssuedAt) > MaxIDTokenAge {
		return nil, errStaleIDToken
	}
	return claims, nil
}

// startSession records a session row and signs a token whose jti is its ID.
func (s *AuthService) startSession(ctx context.Context, userID string) (string, error) {
	now := s.now().UTC()
	session := &model.Session{
		ID:        xid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", err
	}
	return s.tokens.IssueSessionToken(userID, session.ID, s.sessionDuration)
}

// GetCurrentUser resolves a session token to its user. Any problem (no
// token, bad signature, expired, revoked, user gone) yields nil.
func (s *AuthService) GetCurrentUser(ctx context.Context, sessionToken string) *model.User {
	if sessionToken == "" {
		return nil
	}
	claims, err := s.tokens.VerifySessionToken(sessionToken)
	if err != nil {
		s.logger.Debug("session: invalid token", slog.Any("error", err))
		return nil
	}

	session, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("session: looking up session", slog.String("sessionID", claims.SessionID), slog.Any("error", err))
		}
		return nil
	}
	if session.UserID != claims.UserID || !session.Active(s.now()) {
		return nil
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("session: looking up user", slog.String("userID", claims.UserID), slog.Any("error", err))
		}
		return nil
	}
	return user
}

// IsAuthenticated reports whether the session token resolves to a user.
func (s *AuthService) IsAuthenticated(ctx context.Context, sessionToken string) bool {
	return s.GetCurrentUser(ctx, sessionToken) != nil
}

// SignOut revokes the session behind the token. It reports success even when
// the token was already invalid; the cookie is cleared either way.
func (s *AuthService) SignOut(ctx context.Context, sessionToken string) Result {
	if sessionToken == "" {
		return ok(MsgSignedOut)
	}
	claims, err := s.tokens.VerifySessionToken(sessionToken)
	if err != nil {
		return ok(MsgSignedOut)
	}
	if err := s.sessions.Revoke(ctx, claims.SessionID, s.now().UTC()); err != nil && !errors.Is(err, apperror.ErrNotFound) {
		s.logger.Error("sign-out: revoking session", slog.String("sessionID", claims.SessionID), slog.Any("error", err))
	}
	s.logger.Info("user signed out", slog.String("userID", claims.UserID))
	return ok(MsgSignedOut)
}

// SignOutAll revokes every live session of the user, on every device.
func (s *AuthService) SignOutAll(ctx context.Context, userID string) Result {
	if userID == "" {
		return fail(MsgSignOutFailed)
	}
	if err := s.sessions.RevokeAllForUser(ctx, userID, s.now().UTC()); err != nil {
		s.logger.Error("sign-out: revoking all sessions", slog.String("userID", userID), slog.Any("error", err))
		return fail(MsgSignOutFailed)
	}
	s.logger.Info("user signed out everywhere", slog.String("userID", userID))
	return ok(MsgSignedOut)
}

// LoginWithGitHub signs in a GitHub user, creating the user document keyed
// by email on first login. GitHub users have no password.
func (s *AuthService) LoginWithGitHub(ctx context.Context, ghUser *auth.GitHubUser) SignInResult {
	if ghUser == nil || ghUser.Email == "" {
		return SignInResult{Result: fail(MsgSignInFailed)}
	}

	user, err := s.users.GetByEmail(ctx, ghUser.Email)
	if errors.Is(err, apperror.ErrNotFound) {
		user = &model.User{
			ID:        xid.New().String(),
			Name:      ghUser.DisplayName(),
			Email:     ghUser.Email,
			CreatedAt: s.now().UTC(),
		}
		err = s.users.Create(ctx, user)
		if apperror.IsConflictOn(err, "email") {
			// A concurrent first login created it.
			user, err = s.users.GetByEmail(ctx, ghUser.Email)
		} else if err == nil {
			s.logger.Info("user signed up via GitHub", slog.String("userID", user.ID), slog.String("login", ghUser.Login))
		}
	}
	if err != nil {
		s.logger.Error("github: resolving user", slog.String("login", ghUser.Login), slog.Any("error", err))
		return SignInResult{Result: fail(MsgSignInFailed)}
	}

	token, err := s.startSession(ctx, user.ID)
	if err != nil {
		s.logger.Error("github: starting session", slog.String("userID", user.ID), slog.Any("error", err))
		return SignInResult{Result: fail(MsgSignInFailed)}
	}

	s.logger.Info("user signed in via GitHub", slog.String("userID", user.ID))
	return SignInResult{Result: ok(MsgSignInOK), User: user, SessionToken: token}
}
