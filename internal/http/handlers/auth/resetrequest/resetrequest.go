// Package resetrequest implements the HTTP handler starting a password
// reset: it issues a one-time reset token for the named account and
// queues the reset mail.
package resetrequest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/thermopolio/thermopolio/internal/http/response"
	"github.com/thermopolio/thermopolio/internal/lib/sl"
	"github.com/thermopolio/thermopolio/internal/services/auth"
)

// Request is the input structure for a password reset request.
type Request struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
}

// Service describes the password reset business logic.
type Service interface {
	RequestPasswordReset(ctx context.Context, username string) error
}

// Handler handles HTTP password reset requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates a resetrequest Handler with the given logger and auth
// service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Request a password reset
// @Description Issues a one-time reset token for the account and sends the reset email.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Account username"
// @Success 200 {object} map[string]any "Reset mail queued"
// @Failure 400 {object} response.ErrorResponse "Invalid body"
// @Failure 404 {object} response.ErrorResponse "Unknown account"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /auth/password-reset/request [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.resetrequest"

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

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Username); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			log.Info("reset requested for unknown account", slog.String("username", req.Username))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("account not found"))
			return
		}
		log.Error("password reset request failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("reset mail queued", slog.String("username", req.Username))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"sent": true,
	}))
}
