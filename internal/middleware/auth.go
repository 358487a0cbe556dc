package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/messagely/messagely-be/internal/auth"
	"github.com/messagely/messagely-be/internal/http/respond"
)

type contextKey string

const usernameKey contextKey = "username"

// RequireAuth rejects requests lacking a valid bearer token and stores the
// token's username in the request context for handlers.
func RequireAuth(tokens *auth.TokenManager, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			respond.Error(w, http.StatusUnauthorized, "missing or malformed authorization header")
			return
		}
		username, err := tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), usernameKey, username)))
	}
}

// Username returns the authenticated username stored by RequireAuth, or ""
// if the request never passed through it.
func Username(ctx context.Context) string {
	username, _ := ctx.Value(usernameKey).(string)
	return username
}
