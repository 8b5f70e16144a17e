// Package login implements the HTTP handler for user authentication.
//
// It defines a Request structure for the input data, decodes and
// validates the JSON body, delegates the credentials check to the auth
// Service and, on success, creates a server-side session and sets the
// session cookie. The response carries the public user record and the
// dashboard the client should route to.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/thermopolio/thermopolio/internal/config"
	"github.com/thermopolio/thermopolio/internal/http/response"
	"github.com/thermopolio/thermopolio/internal/lib/sl"
	"github.com/thermopolio/thermopolio/internal/models"
	"github.com/thermopolio/thermopolio/internal/services/auth"
)

// Request is the input structure for authentication.
type Request struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
}

// Service describes the authentication business logic the handler
// delegates to.
type Service interface {
	Login(ctx context.Context, username, password string) (*models.User, error)
}

// SessionStore creates sessions for authenticated users.
type SessionStore interface {
	Create(ctx context.Context, userUID string) (string, error)
	SaveUser(ctx context.Context, token string, user *models.User) error
}

// Handler handles HTTP login requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	sessions SessionStore
	cfg      config.SessionConfig
	validate *validator.Validate
}

// New creates a login Handler with the given logger, auth service and
// session store.
func New(log *slog.Logger, service Service, sessions SessionStore, cfg config.SessionConfig) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		sessions: sessions,
		cfg:      cfg,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary User login
// @Description Authenticates a user by username and password. Sets the session cookie on success.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "User credentials"
// @Success 200 {object} map[string]any "Authenticated"
// @Failure 400 {object} response.ErrorResponse "Invalid or incomplete body"
// @Failure 401 {object} map[string]any "Invalid credentials"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	// Incomplete credentials never reach the user store.
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	user, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log.Info("login rejected", slog.String("username", req.Username))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, map[string]any{
				"success": false,
				"message": "invalid credentials",
			})
			return
		}
		log.Error("login failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	token, err := h.sessions.Create(r.Context(), user.UID)
	if err != nil {
		log.Error("failed to create session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}
	if err = h.sessions.SaveUser(r.Context(), token, user); err != nil {
		log.Error("failed to cache user into session", sl.Err(err))
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	log.Info("login success", slog.String("username", req.Username))
	render.JSON(w, r, map[string]any{
		"success":       true,
		"user":          user.Public(),
		"dashboardType": user.DashboardType(),
	})
}
