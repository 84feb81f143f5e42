package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sakif/interview-coach/internal/model"
)

type stubResolver map[string]*model.User

func (s stubResolver) GetCurrentUser(_ context.Context, token string) *model.User {
	return s[token]
}

func TestRequireAuth(t *testing.T) {
	ada := &model.User{ID: "u1", Email: "ada@example.com"}
	resolver := stubResolver{"good": ada}

	var seen *model.User
	protected := RequireAuth(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		cookie     string
		wantStatus int
		wantUser   *model.User
	}{
		{"valid session", "good", http.StatusNoContent, ada},
		{"unknown session", "bad", http.StatusUnauthorized, nil},
		{"no cookie", "", http.StatusUnauthorized, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			r := httptest.NewRequest(http.MethodGet, "/api/interviews", nil)
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.cookie})
			}
			rr := httptest.NewRecorder()
			protected.ServeHTTP(rr, r)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if seen != tt.wantUser {
				t.Errorf("user in context = %v, want %v", seen, tt.wantUser)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
					t.Errorf("Content-Type = %q, want application/json", ct)
				}
			}
		})
	}
}

func TestUserFromContext_Empty(t *testing.T) {
	if user, ok := UserFromContext(context.Background()); ok || user != nil {
		t.Errorf("UserFromContext(empty) = %v, %v; want nil, false", user, ok)
	}
}
