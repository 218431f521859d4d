package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-api/internal/api/shared"
)

// UserIDHeader carries the pre-authenticated user identity. Authentication
// itself happens upstream of this service; requests arriving here are
// trusted to have passed it.
const UserIDHeader = "X-User-ID"

// IdentityMiddleware extracts the user ID from the identity header and
// installs it into the request context. Requests without a valid UUID in the
// header are rejected with 401.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(UserIDHeader)
		if raw == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "User identity required")
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil || userID == uuid.Nil {
			slog.Debug("invalid user ID header",
				slog.String("path", r.URL.Path))
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid user identity")
			return
		}

		ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
