// Package logout implements the HTTP handler destroying the current
// session. It must be mounted behind the session middleware.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/thermopolio/thermopolio/internal/config"
	"github.com/thermopolio/thermopolio/internal/http/middlewarectx"
	"github.com/thermopolio/thermopolio/internal/http/response"
	"github.com/thermopolio/thermopolio/internal/lib/sl"
)

// SessionStore destroys sessions.
type SessionStore interface {
	Destroy(ctx context.Context, token string) error
}

// Handler handles HTTP logout requests.
type Handler struct {
	log      *slog.Logger
	sessions SessionStore
	cfg      config.SessionConfig
}

// New creates a logout Handler with the given logger and session store.
func New(log *slog.Logger, sessions SessionStore, cfg config.SessionConfig) *Handler {
	return &Handler{
		log:      log,
		sessions: sessions,
		cfg:      cfg,
	}
}

// ServeHTTP godoc
// @Summary User logout
// @Description Destroys the current session and clears the session cookie.
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]any "Logged out"
// @Failure 401 {object} response.ErrorResponse "No active session"
// @Router /auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token, ok := middlewarectx.SessionToken(r.Context())
	if !ok {
		log.Error("session token missing from context, session middleware not mounted")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}

	if err := h.sessions.Destroy(r.Context(), token); err != nil {
		log.Error("failed to destroy session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	log.Info("session destroyed")
	render.JSON(w, r, map[string]any{
		"success": true,
	})
}
