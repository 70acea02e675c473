package middleware

import (
	"net/http"

	"github.com/saps-platform/case-management/internal/auth"
	"github.com/saps-platform/case-management/pkg/logger"
)

// UserContext enriches the log context with the authenticated officer's
// identity. Must run after the auth middleware has populated the context.
func UserContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := auth.UserFromContext(r.Context()); ok && user != nil {
			ctx := logger.With(r.Context(),
				"userID", user.ID,
				"role", string(user.Role))
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}
