// Package list implements the HTTP handler returning the restaurant
// catalog.
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
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
}

// Handler handles HTTP requests for the restaurant list.
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
// @Summary List restaurants
// @Description Returns the participating restaurants in stable name order.
// @Tags Catalog
// @Produce json
// @Success 200 {object} map[string]any "Restaurant list"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /restaurants [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.restaurant.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	restaurants, err := h.service.ListRestaurants(r.Context())
	if err != nil {
		log.Error("failed to list restaurants", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("restaurants listed", slog.Int("count", len(restaurants)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"restaurants": restaurants,
	}))
}
