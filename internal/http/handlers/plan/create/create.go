// Package create implements the HTTP handler creating a subscription
// plan. The plan owner is the authenticated session user when one is
// present; the body userId field is only honored for anonymous
// requests.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/thermopolio/thermopolio/internal/http/middlewarectx"
	"github.com/thermopolio/thermopolio/internal/http/response"
	"github.com/thermopolio/thermopolio/internal/lib/sl"
	"github.com/thermopolio/thermopolio/internal/models"
	"github.com/thermopolio/thermopolio/internal/services/catalog"
)

// Service describes the plan creation business logic.
type Service interface {
	CreatePlan(ctx context.Context, ownerUID string, dummy models.DummyPlan) (*models.Plan, error)
}

// Handler handles HTTP plan creation requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates a create Handler with the given logger and catalog
// service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Create a subscription plan
// @Description Stores a new plan under a random id. The owner is taken from the session when present.
// @Tags Catalog
// @Accept json
// @Produce json
// @Param request body models.DummyPlan true "Plan data"
// @Success 200 {object} map[string]any "Created plan"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /subscription-plans [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyPlan
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

	// The session user always wins over whatever the body claims.
	ownerUID := req.OwnerUID
	if user, ok := middlewarectx.CurrentUser(r.Context()); ok {
		ownerUID = user.UID
	}

	plan, err := h.service.CreatePlan(r.Context(), ownerUID, req)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownOwner) {
			log.Info("plan rejected, unknown owner", slog.String("owner_uid", ownerUID))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("unknown plan owner"))
			return
		}
		log.Error("failed to create plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("plan created",
		slog.String("plan_id", plan.ID),
		slog.String("owner_uid", plan.OwnerUID))
	render.JSON(w, r, map[string]any{
		"success": true,
		"plan":    plan,
	})
}
