// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data. They are like classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered account.
//
// The ID is either supplied by the caller at sign-up (an identity-provider uid)
// or generated as an xid. Email is UNIQUE in storage, which is what lets us
// tell "account already exists" apart from "email already in use".
//
// PasswordHash is tagged json:"-" so a User can be written straight into an
// API response without ever leaking the bcrypt hash. GitHub sign-ins have no
// password, so the hash is empty for them.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session is one issued session credential. The session token carries the
// session ID as its "jti" claim; verification looks the row up so a session
// can be revoked (sign-out) before its expiry.
type Session struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"` // nil while the session is live
}

// Active reports whether the session is neither revoked nor expired at now.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
