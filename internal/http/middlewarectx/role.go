package middlewarectx

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/render"

	"github.com/thermopolio/thermopolio/internal/http/response"
)

// RequireRole returns a middleware that passes only requests whose
// authenticated user holds one of the allowed roles. It must run after
// SessionMiddleware.
func RequireRole(log *slog.Logger, allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := CurrentUser(r.Context())
			if !ok {
				log.Error("user missing from context, session middleware not mounted")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication required"))
				return
			}

			if !slices.Contains(allowedRoles, user.Role) {
				log.Info("role not allowed",
					slog.String("role", user.Role),
					slog.Any("allowed", allowedRoles))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("insufficient permissions"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoleIfAuthenticated gates the request on the allowed roles
// only when a session user is present; anonymous requests pass. Meant
// for routes behind OptionalSessionMiddleware.
func RequireRoleIfAuthenticated(log *slog.Logger, allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := CurrentUser(r.Context())
			if ok && !slices.Contains(allowedRoles, user.Role) {
				log.Info("role not allowed",
					slog.String("role", user.Role),
					slog.Any("allowed", allowedRoles))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("insufficient permissions"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
