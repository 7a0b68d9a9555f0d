package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/V4T54L/rentwise/internal/adapter/auth"
	"github.com/V4T54L/rentwise/internal/domain"
)

const bearerPrefix = "Bearer "

// RequireRole is a middleware factory that admits requests carrying a valid
// bearer token whose role is one of roles. The caller's principal is stored
// in the request context.
func RequireRole(verifier auth.TokenVerifier, logger *slog.Logger, roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) || strings.TrimSpace(header[len(bearerPrefix):]) == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "bearer token required")
				return
			}
			token := strings.TrimSpace(header[len(bearerPrefix):])

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logger.Warn("token rejected", "remote_addr", r.RemoteAddr, "error", err)
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}

			principal, err := auth.PrincipalFromClaims(*claims)
			if err != nil {
				if !errors.Is(err, domain.ErrUnauthorized) {
					logger.Error("failed to read token claims", "error", err)
				}
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}

			if !slices.Contains(roles, principal.Role) {
				logger.Warn("role not allowed", "user_id", principal.ID, "role", principal.Role, "path", r.URL.Path)
				writeError(w, http.StatusForbidden, "forbidden", "access denied")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}
