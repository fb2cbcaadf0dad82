package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"coreteller/pkg/requestcontext"
)

// AgentClaims represents the claims we expect from the token validator.
type AgentClaims struct {
	AgentID string
	Branch  string
}

// TokenValidator validates agent bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*AgentClaims, error)
}

// RequireAgentAuth guards the /api/agent routes. Every teller operation runs
// under an authenticated agent identity for the audit trail.
func RequireAgentAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			claims, err := validator.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				logger.Warn("rejected agent token", "err", err)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			ctx := requestcontext.WithAgentID(r.Context(), claims.AgentID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
