package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/comus-party/justeprix/internal/api/apierr"
)

// OwnerAuth guards the management endpoints with the shared owner key.
// The key itself is never stored; only its bcrypt hash is configured.
// An empty hash disables the check, for local development only.
func OwnerAuth(keyHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	if keyHash == "" {
		logger.Warn("owner key hash not configured - management endpoints are unauthenticated")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if keyHash == "" {
				next.ServeHTTP(w, r)
				return
			}

			key := extractBearer(r)
			if key == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)); err != nil {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractBearer extracts the bearer credential from the request
func extractBearer(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
