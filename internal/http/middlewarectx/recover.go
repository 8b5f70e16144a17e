package middlewarectx

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/thermopolio/thermopolio/internal/http/response"
)

// Recovery turns handler panics into 500 envelopes. The stack trace is
// included in the body only when includeStack is set, i.e. outside prod.
func Recovery(log *slog.Logger, includeStack bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					stack := debug.Stack()
					log.Error("panic recovered",
						slog.Any("panic", rec),
						slog.String("request_id", middleware.GetReqID(r.Context())),
						slog.String("stack", string(stack)))

					w.WriteHeader(http.StatusInternalServerError)
					if includeStack {
						render.JSON(w, r, response.ErrorWithStack("internal server error", string(stack)))
						return
					}
					render.JSON(w, r, response.Error("internal server error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
