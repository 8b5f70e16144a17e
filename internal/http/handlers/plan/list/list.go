// Package list implements the HTTP handler returning the subscription
// plan catalog.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/thermopolio/thermopolio/internal/http/response"
	"github.com/thermopolio/thermopolio/internal/lib/sl"
	"github.com/thermopolio/thermopolio/internal/models"
)

// Service describes the catalog business logic.
type Service interface {
	ListPlans(ctx context.Context) ([]models.Plan, error)
}

// Handler handles HTTP requests for the subscription plan list.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates a list Handler with the given logger and catalog service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary List subscription plans
// @Description Returns the available subscription plans in stable name order.
// @Tags Catalog
// @Produce json
// @Success 200 {object} map[string]any "Plan list"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /subscription-plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	plans, err := h.service.ListPlans(r.Context())
	if err != nil {
		log.Error("failed to list plans", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("plans listed", slog.Int("count", len(plans)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"plans": plans,
	}))
}
