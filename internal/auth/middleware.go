package auth

import (
	"context"
	"net/http"

	"github.com/sakif/interview-coach/internal/model"
)

// contextKey is an unexported type used for context keys in this package.
// Only this package can create a key of this type, so no other package can
// read or shadow the user stored in the context.
type contextKey string

const userKey contextKey = "user"

// UserResolver turns a session token into the signed-in user, or nil.
// service.AuthService implements it; resolving includes the revocation check
// that the token signature alone cannot provide.
type UserResolver interface {
	GetCurrentUser(ctx context.Context, sessionToken string) *model.User
}

// RequireAuth is a middleware that enforces a valid session on protected routes.
//
// It reads the "session" cookie, resolves it to a user, and stores the user
// in the request context. A missing, invalid, expired or revoked session
// gets 401 and stops the chain.
//
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
func RequireAuth(users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := users.GetCurrentUser(r.Context(), SessionTokenFromRequest(r))
			if user == nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","message":"valid session required"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the signed-in user stored by RequireAuth.
//
// Usage in handlers:
//
//	user, ok := auth.UserFromContext(r.Context())
//	if !ok {
//	    // route is not behind RequireAuth
//	}
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}
