package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/inkwell-labs/inkwell/internal/api"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// RequireUser reads the caller identity from the X-User-ID header and puts
// it on the request context. Requests without an identity are rejected.
// Authentication itself happens upstream; this service only scopes data.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
		if userID == "" {
			api.Error(w, http.StatusUnauthorized, "missing user identity")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID returns the user ID from context.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}
