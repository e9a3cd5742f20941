// Package middleware provides the HTTP middleware chain.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nabil/meshbari/internal/model"
)

// SessionCookieName is the HTTP-only cookie carrying the session ID.
const SessionCookieName = "session_id"

// contextKey is a type-safe key for context values.
type contextKey string

// authContextKey stores the resolved Auth in the request context.
var authContextKey = contextKey("auth")

// Auth is the authenticated identity resolved from the session cookie.
type Auth struct {
	UserID string
	Role   model.Role
}

// SessionFinder is the session lookup interface, a subset of
// repository.SessionRepository.
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// UserFinder is the user lookup interface, a subset of
// repository.UserRepository.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// NewSessionLoaderMiddleware reads the session cookie, resolves the session
// and its user, and injects an Auth into the request context. Requests
// without a valid session pass through unauthenticated; rejecting or
// redirecting them is the access gate's job, so that public and protected
// routes can share one chain. Banned users are treated as unauthenticated.
func NewSessionLoaderMiddleware(sessions SessionFinder, users UserFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := sessions.FindByID(r.Context(), cookie.Value)
			if err != nil {
				slog.Error("failed to find session",
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}
			if session == nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.FindByID(r.Context(), session.UserID)
			if err != nil {
				slog.Error("failed to find session user",
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}
			if user == nil || user.Banned {
				next.ServeHTTP(w, r)
				return
			}

			ctx := ContextWithAuth(r.Context(), Auth{UserID: user.ID, Role: user.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthFromContext returns the authenticated identity from the request
// context. Only valid after the session loader middleware has run and
// resolved a session.
func AuthFromContext(ctx context.Context) (Auth, error) {
	auth, ok := ctx.Value(authContextKey).(Auth)
	if !ok || auth.UserID == "" {
		return Auth{}, fmt.Errorf("auth not found in context")
	}
	return auth, nil
}

// ContextWithAuth injects an Auth into the context. Used by tests and
// non-middleware context construction.
func ContextWithAuth(ctx context.Context, auth Auth) context.Context {
	return context.WithValue(ctx, authContextKey, auth)
}
