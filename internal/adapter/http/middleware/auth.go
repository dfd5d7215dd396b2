package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/iho/cambiodesk/internal/domain"
	"github.com/iho/cambiodesk/internal/infrastructure/auth"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// OperatorContextKey is the context key for the authenticated
	// operator
	OperatorContextKey ContextKey = "operator"
)

// AuthMiddleware creates an authentication middleware
func AuthMiddleware(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := jwtManager.Verify(parts[1])
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			op := &domain.Operator{
				ID:   claims.OperatorID,
				Name: claims.Name,
				Role: claims.Role,
			}

			ctx := context.WithValue(r.Context(), OperatorContextKey, op)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole creates a middleware that checks for a specific role
func RequireRole(minRole domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			op, ok := r.Context().Value(OperatorContextKey).(*domain.Operator)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if minRole == domain.RoleAdmin && op.Role != domain.RoleAdmin {
				http.Error(w, "insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetOperatorFromContext extracts the authenticated operator from
// context
func GetOperatorFromContext(ctx context.Context) (*domain.Operator, bool) {
	op, ok := ctx.Value(OperatorContextKey).(*domain.Operator)
	return op, ok
}
