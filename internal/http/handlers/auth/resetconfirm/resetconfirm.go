// Package resetconfirm implements the HTTP handler finishing a
// password reset: it consumes the one-time reset token and stores the
// new password hash.
package resetconfirm

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
	"github.com/thermopolio/thermopolio/internal/lib/validate"
	"github.com/thermopolio/thermopolio/internal/services/auth"
)

// Request is the input structure for a password reset confirmation.
type Request struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// Service describes the password reset business logic.
type Service interface {
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// Handler handles HTTP password reset confirmations.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates a resetconfirm Handler with the given logger and auth
// service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Confirm a password reset
// @Description Consumes a one-time reset token and replaces the account password.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Reset token and new password"
// @Success 200 {object} map[string]any "Password replaced"
// @Failure 400 {object} response.ErrorResponse "Invalid, expired or already used token"
// @Failure 422 {object} response.ErrorResponse "Password rejected by policy"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /auth/password-reset/confirm [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.resetconfirm"

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

	if result := validate.ValidatePassword(req.NewPassword, validate.PasswordPolicy{}); !result.IsValid {
		log.Info("new password rejected by policy")
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Response{
			Status: response.StatusError,
			Error:  "validation failed",
			Fields: map[string][]string{"new_password": result.Errors},
		})
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			log.Info("reset token rejected")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid or expired token"))
			return
		}
		log.Error("password reset failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("password replaced")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"reset": true,
	}))
}
