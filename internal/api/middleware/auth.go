package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/lexgraph/lexgraph/internal/api"
	"github.com/lexgraph/lexgraph/internal/domain"
)

type contextKey string

const UserKey contextKey = "user"

// TokenValidator verifies an access token and resolves its account
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*domain.User, error)
}

// JWTAuth rejects requests without a valid bearer token and puts the
// authenticated user on the request context.
func JWTAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.Error(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				api.Error(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")

			user, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				api.Error(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser returns the authenticated user from context, or nil.
func GetUser(ctx context.Context) *domain.User {
	user, _ := ctx.Value(UserKey).(*domain.User)
	return user
}

// GetUserID returns the authenticated user's ID from context.
func GetUserID(ctx context.Context) string {
	if user := GetUser(ctx); user != nil {
		return user.ID
	}
	return ""
}
