// Package register implements the HTTP handler for account
// registration. The request body is validated against the struct tags
// and the password policy before the auth service is called.
package register

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
	"github.com/thermopolio/thermopolio/internal/models"
	"github.com/thermopolio/thermopolio/internal/services/auth"
)

// Request is the input structure for registration. The role-specific
// fields are optional and only meaningful for the matching role.
type Request struct {
	Username       string `json:"username" validate:"required,min=3,max=50"`
	Password       string `json:"password" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Name           string `json:"name" validate:"required,min=2,max=100"`
	Role           string `json:"role" validate:"required,oneof=customer tavola_calda onlus"`
	BusinessName   string `json:"businessName,omitempty"`
	BusinessType   string `json:"businessType,omitempty"`
	AssistanceType string `json:"assistanceType,omitempty"`
}

// Service describes the registration business logic.
type Service interface {
	Register(ctx context.Context, in auth.RegisterInput) (*models.PublicUser, error)
}

// Handler handles HTTP registration requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates a register Handler with the given logger and auth service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Register a new account
// @Description Creates a customer, tavola_calda or onlus account and sends a verification email.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Account data"
// @Success 201 {object} map[string]any "Account created"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Failure 409 {object} response.ErrorResponse "Username already taken"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

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
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if result := validate.ValidatePassword(req.Password, validate.PasswordPolicy{}); !result.IsValid {
		log.Info("password rejected by policy")
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Response{
			Status: response.StatusError,
			Error:  "validation failed",
			Fields: map[string][]string{"password": result.Errors},
		})
		return
	}

	user, err := h.service.Register(r.Context(), auth.RegisterInput{
		Username:       req.Username,
		Password:       req.Password,
		Email:          req.Email,
		Name:           req.Name,
		Role:           req.Role,
		BusinessName:   req.BusinessName,
		BusinessType:   req.BusinessType,
		AssistanceType: req.AssistanceType,
	})
	if err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			log.Info("username already taken", slog.String("username", req.Username))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("username already taken"))
			return
		}
		log.Error("registration failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("account registered",
		slog.String("username", user.Username),
		slog.String("role", user.Role))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user": user,
	}))
}
