package middleware

import (
	"log/slog"
	"net/http"

	"github.com/saps-platform/case-management/internal/auth"
	"github.com/saps-platform/case-management/internal/rbac"
)

// RequireCapability creates a middleware that rejects users whose role does
// not grant the given capability. Finer-grained checks, such as which status
// transitions a role may perform, stay in the service layer.
func RequireCapability(policy *rbac.Policy, capability rbac.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !policy.Can(user.Role, capability) {
				slog.Warn("Access denied: role lacks capability",
					"user_id", user.ID,
					"role", user.Role,
					"capability", capability)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
