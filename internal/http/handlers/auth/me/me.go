// Package me implements the HTTP handler returning the authenticated
// user's own record. It must be mounted behind the session middleware.
package me

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/thermopolio/thermopolio/internal/http/middlewarectx"
	"github.com/thermopolio/thermopolio/internal/http/response"
)

// Handler handles HTTP requests for the current user's profile.
type Handler struct {
	log *slog.Logger
}

// New creates a me Handler with the given logger.
func New(log *slog.Logger) *Handler {
	return &Handler{
		log: log,
	}
}

// ServeHTTP godoc
// @Summary Current user
// @Description Returns the public profile of the authenticated user.
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]any "Current user"
// @Failure 401 {object} response.ErrorResponse "No active session"
// @Router /auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.CurrentUser(r.Context())
	if !ok {
		log.Error("user missing from context, session middleware not mounted")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"user":          user.Public(),
		"dashboardType": user.DashboardType(),
	}))
}
