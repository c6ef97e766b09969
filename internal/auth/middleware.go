package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is an unexported type to avoid context key collisions.
type contextKey string

const claimsKey contextKey = "auth_claims"

// RequireAuth validates the Bearer JWT in the Authorization header and
// injects the parsed claims into the request context. Responds 401 JSON on
// missing or invalid tokens.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := extractBearerToken(r)
		if tokenStr == "" {
			WriteError(w, http.StatusUnauthorized, "missing_token", "Authorization header required")
			return
		}

		claims, err := s.ValidateToken(tokenStr)
		if err != nil {
			WriteError(w, http.StatusUnauthorized, "invalid_token", "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromContext extracts JWT claims from the request context.
// Returns nil if RequireAuth was not applied.
func ClaimsFromContext(ctx context.Context) *Claims {
	if c, ok := ctx.Value(claimsKey).(*Claims); ok {
		return c
	}
	return nil
}

// UserIDFromContext extracts the authenticated user id from context.
// Returns empty string if not authenticated.
func UserIDFromContext(ctx context.Context) string {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return ""
	}
	return claims.Subject
}

// extractBearerToken pulls the token from "Authorization: Bearer <token>".
func extractBearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
