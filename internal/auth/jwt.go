// Package auth is the in-process identity provider: password hashing,
// signed ID and session tokens, the session cookie, GitHub OAuth, and the
// middleware that resolves the current user.
//
// TWO TOKEN KINDS:
// Sign-in happens in two steps, the same way a hosted identity provider
// does it:
//
//  1. The client proves its credentials and receives a short-lived ID token
//     (audience "id", default lifetime 1 hour).
//  2. The client exchanges a recently issued ID token for a long-lived
//     session token (audience "session", default lifetime 7 days) that is
//     stored in the HttpOnly "session" cookie.
//
// Both are HS256 JWTs signed with the same secret. The audience claim keeps
// one from being accepted in place of the other. Session tokens also carry
// a "jti" claim naming the session row, which is what makes revocation
// possible. The signature alone cannot be revoked.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer          = "interview-coach"
	audienceID      = "id"
	audienceSession = "session"
)

// DefaultIDTokenTTL is the ID token lifetime when none is configured.
const DefaultIDTokenTTL = time.Hour

// ErrTokenExpired is returned (wrapped) for tokens past their expiry.
var ErrTokenExpired = errors.New("auth: token expired")

// TokenService signs and verifies ID and session tokens.
//
// now is the clock used both for issuing and for validating. Tests replace
// it to produce tokens in the past without sleeping.
type TokenService struct {
	secret     []byte
	idTokenTTL time.Duration
	now        func() time.Time
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: SESSION_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string, idTokenTTL time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: token secret must be at least 16 characters")
	}
	if idTokenTTL <= 0 {
		idTokenTTL = DefaultIDTokenTTL
	}
	return &TokenService{secret: []byte(secret), idTokenTTL: idTokenTTL, now: time.Now}, nil
}

// IDClaims is what a verified ID token says about its bearer.
type IDClaims struct {
	UserID   string
	IssuedAt time.Time
}

// SessionClaims is what a verified session token says about its bearer.
type SessionClaims struct {
	UserID    string
	SessionID string
	ExpiresAt time.Time
}

// IssueIDToken signs a short-lived ID token for userID.
func (s *TokenService) IssueIDToken(userID string) (string, error) {
	return s.sign(userID, audienceID, "", s.idTokenTTL)
}

// IssueSessionToken signs a session token for userID that names sessionID
// in its jti claim and expires after d.
func (s *TokenService) IssueSessionToken(userID, sessionID string, d time.Duration) (string, error) {
	if sessionID == "" {
		return "", errors.New("auth: session token needs a session id")
	}
	return s.sign(userID, audienceSession, sessionID, d)
}

// VerifyIDToken checks signature, expiry, issuer and audience of an ID token.
func (s *TokenService) VerifyIDToken(tokenStr string) (*IDClaims, error) {
	c, err := s.parse(tokenStr, audienceID)
	if err != nil {
		return nil, err
	}
	if c.IssuedAt == nil {
		return nil, errors.New("auth: ID token has no issue time")
	}
	return &IDClaims{UserID: c.Subject, IssuedAt: c.IssuedAt.Time}, nil
}

// VerifySessionToken checks a session token the same way and returns the
// session it names. It does NOT check revocation; that needs the session
// store (see service.AuthService.GetCurrentUser).
func (s *TokenService) VerifySessionToken(tokenStr string) (*SessionClaims, error) {
	c, err := s.parse(tokenStr, audienceSession)
	if err != nil {
		return nil, err
	}
	if c.ID == "" {
		return nil, errors.New("auth: session token has no session id")
	}
	return &SessionClaims{UserID: c.Subject, SessionID: c.ID, ExpiresAt: c.ExpiresAt.Time}, nil
}

func (s *TokenService) sign(subject, audience, jti string, d time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("auth: token subject must not be empty")
	}
	now := s.now()

	c := jwt.RegisteredClaims{
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(d)),
		Issuer:    issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// parse verifies a token for the given audience.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid and the algorithm is HS256 (no "none" confusion)
//   - ExpiresAt is present and in the future, measured by s.now
//   - Issuer and audience match
func (s *TokenService) parse(tokenStr, audience string) (*jwt.RegisteredClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return nil, errors.New("auth: invalid token claims")
	}
	if c.Subject == "" {
		return nil, errors.New("auth: token has no subject")
	}
	return c, nil
}
