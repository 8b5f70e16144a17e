// Package thermopolio registers the application routes.
package thermopolio

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/thermopolio/thermopolio/docs"
	"github.com/thermopolio/thermopolio/internal/config"
	"github.com/thermopolio/thermopolio/internal/http/handlers/auth/login"
	"github.com/thermopolio/thermopolio/internal/http/handlers/auth/logout"
	"github.com/thermopolio/thermopolio/internal/http/handlers/auth/me"
	"github.com/thermopolio/thermopolio/internal/http/handlers/auth/register"
	"github.com/thermopolio/thermopolio/internal/http/handlers/auth/resetconfirm"
	"github.com/thermopolio/thermopolio/internal/http/handlers/auth/resetrequest"
	"github.com/thermopolio/thermopolio/internal/http/handlers/auth/verifyemail"
	"github.com/thermopolio/thermopolio/internal/http/handlers/health"
	plancreate "github.com/thermopolio/thermopolio/internal/http/handlers/plan/create"
	planlist "github.com/thermopolio/thermopolio/internal/http/handlers/plan/list"
	restaurantlist "github.com/thermopolio/thermopolio/internal/http/handlers/restaurant/list"
	"github.com/thermopolio/thermopolio/internal/http/middlewarectx"
	authservice "github.com/thermopolio/thermopolio/internal/services/auth"
	catalogservice "github.com/thermopolio/thermopolio/internal/services/catalog"
	"github.com/thermopolio/thermopolio/internal/models"
	"github.com/thermopolio/thermopolio/internal/sessions"
)

// RegisterRoutes mounts every route of the application.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, authService *authservice.Service, catalogService *catalogservice.Service, sessionStore sessions.Store, users middlewarectx.UserLoader) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middlewarectx.Recovery(logger, !cfg.IsProd()),
		middleware.URLFormat,
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health.New(logger).ServeHTTP)

		// Open endpoints
		r.Post("/auth/register", register.New(logger, authService).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authService, sessionStore, cfg.SessionConfig).ServeHTTP)
		r.Post("/auth/verify-email", verifyemail.New(logger, authService).ServeHTTP)
		r.Post("/auth/password-reset/request", resetrequest.New(logger, authService).ServeHTTP)
		r.Post("/auth/password-reset/confirm", resetconfirm.New(logger, authService).ServeHTTP)
		r.Get("/restaurants", restaurantlist.New(logger, catalogService).ServeHTTP)
		r.Get("/subscription-plans", planlist.New(logger, catalogService).ServeHTTP)

		// Plan creation works anonymously, but an authenticated caller
		// must be a tavola_calda and becomes the plan owner.
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OptionalSessionMiddleware(sessionStore, users, cfg.CookieName, logger))
			r.Use(middlewarectx.RequireRoleIfAuthenticated(logger, models.RoleTavolaCalda))
			r.Post("/subscription-plans", plancreate.New(logger, catalogService).ServeHTTP)
		})

		// Session-gated group
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.SessionMiddleware(sessionStore, users, cfg.CookieName, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/auth/logout", logout.New(logger, sessionStore, cfg.SessionConfig).ServeHTTP)
			r.Get("/auth/me", me.New(logger).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
