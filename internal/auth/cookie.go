package auth

import (
	"net/http"
	"time"
)

// SessionCookieName is the cookie holding the session token.
const SessionCookieName = "session"

// SessionCookie builds the cookie that stores a session token.
//
//   - HttpOnly: JavaScript cannot read it (XSS protection)
//   - Secure: only in production, so local development works over plain HTTP
//   - SameSite=Lax: sent on top-level navigations, not on cross-site POSTs
func SessionCookie(token string, maxAge time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearSessionCookie builds a cookie that makes the browser drop the session.
func ClearSessionCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SessionTokenFromRequest returns the session cookie value, or "" when the
// request carries none.
func SessionTokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
